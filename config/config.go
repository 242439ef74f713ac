package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/clients"
	"github.com/vadiminshakov/roulette/internal/contracts"
	"gopkg.in/yaml.v3"
)

const (
	defaultChainID  = 31337
	defaultPort     = "3000"
	defaultRelayURL = "http://localhost:3000"
	defaultStoreDSN = "wal://./wal/bets"
	defaultCertDir  = "cert-cache"

	WalletDev      = "dev"
	WalletInjected = "injected"
)

// Config is the resolved configuration handed to the commands.
type Config struct {
	NodeURL   string
	ChainID   *big.Int
	Addresses contracts.Addresses
	GasLimit  uint64

	Signer Signer
	Relay  Relay
	Client Client
}

// Signer selects the identities the client can bet with.
type Signer struct {
	// PrivateKey is the dev fallback key. Empty means Mnemonic, then the hardhat key.
	PrivateKey    string
	Mnemonic      string
	MnemonicIndex uint32
	// ExternalURL is a clef-compatible signer standing in for an injected wallet.
	ExternalURL string
}

// Relay configures `roulette serve`.
type Relay struct {
	Addr           string
	StoreDSN       string
	AllowedOrigins []string
	TLSDomains     []string
	CertCacheDir   string
}

// Client configures `roulette play`.
type Client struct {
	RelayURL string
	// Wallet is the preferred identity: "injected" or "dev".
	Wallet string
}

// PreferInjected reports whether the external signer should be tried first.
func (c Client) PreferInjected() bool {
	return c.Wallet == WalletInjected
}

// ConfigTmp is the YAML shape of the config file.
type ConfigTmp struct {
	NodeURL       string       `yaml:"node_url,omitempty"`
	ChainID       string       `yaml:"chain_id,omitempty"`
	Contracts     ContractsTmp `yaml:"contracts,omitempty"`
	ContractsFile string       `yaml:"contracts_file,omitempty"`
	GasLimit      string       `yaml:"gas_limit,omitempty"`
	Signer        SignerTmp    `yaml:"signer,omitempty"`
	Relay         RelayTmp     `yaml:"relay,omitempty"`
	Client        ClientTmp    `yaml:"client,omitempty"`
}

type ContractsTmp struct {
	Ledger string `yaml:"ledger,omitempty"`
	Game   string `yaml:"game,omitempty"`
}

type SignerTmp struct {
	PrivateKey    string `yaml:"private_key,omitempty"`
	Mnemonic      string `yaml:"mnemonic,omitempty"`
	MnemonicIndex string `yaml:"mnemonic_index,omitempty"`
	ExternalURL   string `yaml:"external_url,omitempty"`
}

type RelayTmp struct {
	Port           string   `yaml:"port,omitempty"`
	StoreDSN       string   `yaml:"store_dsn,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
	TLSDomains     []string `yaml:"tls_domains,omitempty"`
	CertCacheDir   string   `yaml:"cert_cache_dir,omitempty"`
}

type ClientTmp struct {
	RelayURL string `yaml:"relay_url,omitempty"`
	Wallet   string `yaml:"wallet,omitempty"`
}

// Load reads .env (if present), the YAML file at path (if any), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	var tmp ConfigTmp
	if path != "" {
		f, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(f, &tmp); err != nil {
			return Config{}, errors.Wrap(err, "parse config")
		}
	}

	applyEnv(&tmp, os.Getenv)

	return tmp.Resolve()
}

// applyEnv lets the environment win over the file.
func applyEnv(tmp *ConfigTmp, getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&tmp.NodeURL, "NODE_URL")
	set(&tmp.ChainID, "CHAIN_ID")
	set(&tmp.Contracts.Ledger, "LEDGER_ADDRESS")
	set(&tmp.Contracts.Game, "GAME_ADDRESS")
	set(&tmp.ContractsFile, "CONTRACTS_FILE")
	set(&tmp.Signer.PrivateKey, "DEV_PRIVATE_KEY")
	set(&tmp.Signer.Mnemonic, "DEV_MNEMONIC")
	set(&tmp.Signer.ExternalURL, "EXTERNAL_SIGNER_URL")
	set(&tmp.Relay.Port, "PORT")
	set(&tmp.Relay.StoreDSN, "DATABASE_URL", "MONGODB_URI")
	set(&tmp.Client.RelayURL, "RELAY_URL")
}

// Resolve converts the raw config into Config, filling defaults.
func (c ConfigTmp) Resolve() (Config, error) {
	cfg := Config{
		NodeURL:  c.NodeURL,
		ChainID:  big.NewInt(defaultChainID),
		GasLimit: contracts.DefaultGasLimit,
		Signer: Signer{
			PrivateKey:  c.Signer.PrivateKey,
			Mnemonic:    strings.TrimSpace(c.Signer.Mnemonic),
			ExternalURL: c.Signer.ExternalURL,
		},
		Relay: Relay{
			StoreDSN:       c.Relay.StoreDSN,
			AllowedOrigins: c.Relay.AllowedOrigins,
			TLSDomains:     c.Relay.TLSDomains,
			CertCacheDir:   c.Relay.CertCacheDir,
		},
		Client: Client{
			RelayURL: c.Client.RelayURL,
			Wallet:   c.Client.Wallet,
		},
	}

	if cfg.NodeURL == "" {
		cfg.NodeURL = clients.DefaultNodeURL
	}

	if c.ChainID != "" {
		id, ok := new(big.Int).SetString(c.ChainID, 10)
		if !ok || id.Sign() <= 0 {
			return Config{}, fmt.Errorf("incorrect 'chain_id' param in config (must be a positive integer): %s", c.ChainID)
		}
		cfg.ChainID = id
	}

	if c.GasLimit != "" {
		gas, err := strconv.ParseUint(c.GasLimit, 10, 64)
		if err != nil || gas == 0 {
			return Config{}, fmt.Errorf("incorrect 'gas_limit' param in config (must be a positive integer): %s", c.GasLimit)
		}
		cfg.GasLimit = gas
	}

	ledger, game := c.Contracts.Ledger, c.Contracts.Game
	if c.ContractsFile != "" && (ledger == "" || game == "") {
		fromFile, err := ReadContractsFile(c.ContractsFile)
		if err != nil {
			return Config{}, err
		}
		if ledger == "" {
			ledger = fromFile.Ledger
		}
		if game == "" {
			game = fromFile.Game
		}
	}

	var err error
	if cfg.Addresses.Ledger, err = parseAddress("contracts.ledger", ledger); err != nil {
		return Config{}, err
	}
	if cfg.Addresses.Game, err = parseAddress("contracts.game", game); err != nil {
		return Config{}, err
	}

	if c.Signer.MnemonicIndex != "" {
		idx, err := strconv.ParseUint(c.Signer.MnemonicIndex, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'signer.mnemonic_index' param in config: %s", c.Signer.MnemonicIndex)
		}
		cfg.Signer.MnemonicIndex = uint32(idx)
	}

	port := c.Relay.Port
	if port == "" {
		port = defaultPort
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("incorrect 'relay.port' param in config: %s", port)
	}
	cfg.Relay.Addr = ":" + port

	if cfg.Relay.StoreDSN == "" {
		cfg.Relay.StoreDSN = defaultStoreDSN
	}
	if cfg.Relay.CertCacheDir == "" {
		cfg.Relay.CertCacheDir = defaultCertDir
	}
	if cfg.Client.RelayURL == "" {
		cfg.Client.RelayURL = defaultRelayURL
	}

	switch cfg.Client.Wallet {
	case "":
		cfg.Client.Wallet = WalletDev
		if cfg.Signer.ExternalURL != "" {
			cfg.Client.Wallet = WalletInjected
		}
	case WalletDev, WalletInjected:
	default:
		return Config{}, fmt.Errorf("incorrect 'client.wallet' param in config (dev or injected): %s", cfg.Client.Wallet)
	}

	return cfg, nil
}

// parseAddress leaves unset addresses zero; the connection manager reports them.
func parseAddress(field, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("incorrect '%s' param in config (must be a hex address): %s", field, raw)
	}
	return common.HexToAddress(raw), nil
}

// ReadContractsFile reads the addresses written by the deploy script. Both plain
// JSON and the `export const CONTRACT_ADDRESSES = {...};` module form are accepted.
func ReadContractsFile(path string) (ContractsTmp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ContractsTmp{}, errors.Wrap(err, "read contracts file")
	}

	text := string(data)
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ContractsTmp{}, fmt.Errorf("contracts file %s has no address object", path)
	}

	var addrs struct {
		Roulette       string `json:"roulette"`
		AccountManager string `json:"accountManager"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &addrs); err != nil {
		return ContractsTmp{}, errors.Wrap(err, "parse contracts file")
	}

	return ContractsTmp{Ledger: addrs.AccountManager, Game: addrs.Roulette}, nil
}

// Save writes tmp as YAML to path.
func Save(path string, tmp ConfigTmp) error {
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}
	return nil
}

// DevIdentity builds the fallback identity: the configured key, else the
// mnemonic account, else the well-known hardhat account.
func (s Signer) DevIdentity(chainID *big.Int) (*clients.Identity, error) {
	switch {
	case s.PrivateKey != "":
		return clients.NewKeyIdentity(s.PrivateKey, chainID)
	case s.Mnemonic != "":
		return clients.NewMnemonicIdentity(s.Mnemonic, s.MnemonicIndex, chainID)
	default:
		return clients.NewKeyIdentity(clients.DevPrivateKey, chainID)
	}
}
