package clients

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// DefaultNodeURL is the JSON-RPC endpoint of a local hardhat node.
const DefaultNodeURL = "http://127.0.0.1:8545"

// DialNode opens a JSON-RPC connection to an Ethereum node.
func DialNode(ctx context.Context, url string) (*ethclient.Client, error) {
	if url == "" {
		url = DefaultNodeURL
	}

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial node %s", url)
	}

	return client, nil
}
