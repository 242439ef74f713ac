// Package connection owns the active link to the chain: node client, signing identity
// and verified contract addresses.
package connection

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/clients"
	"github.com/vadiminshakov/roulette/internal/contracts"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.uber.org/zap"
)

// DefaultChainID is the chain id of a local hardhat node.
const DefaultChainID = 31337

// Backend is a node client as seen by the manager.
type Backend interface {
	contracts.Backend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// Dialer opens a node client.
type Dialer func(ctx context.Context, url string) (Backend, error)

// IdentityProvider produces a signing identity.
type IdentityProvider func() (*clients.Identity, error)

// Config describes where the node and contracts are.
type Config struct {
	NodeURL   string
	ChainID   *big.Int
	Addresses contracts.Addresses
}

// Connection is one verified session against the node.
type Connection struct {
	Backend   Backend
	Identity  *clients.Identity
	ChainID   *big.Int
	Addresses contracts.Addresses
}

// Player returns the address bets are placed from.
func (c *Connection) Player() common.Address {
	return c.Identity.Address
}

// Manager establishes connections and publishes the active one.
type Manager struct {
	cfg      Config
	dial     Dialer
	injected IdentityProvider
	dev      IdentityProvider
	current  atomic.Pointer[Connection]
	logger   *zap.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithDialer replaces the default ethclient dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		m.dial = d
	}
}

// WithInjectedIdentity sets the provider tried first when an injected wallet is preferred.
func WithInjectedIdentity(p IdentityProvider) Option {
	return func(m *Manager) {
		m.injected = p
	}
}

// NewManager creates a manager; dev provides the fallback identity.
func NewManager(cfg Config, dev IdentityProvider, logger *zap.Logger, opts ...Option) *Manager {
	if cfg.ChainID == nil {
		cfg.ChainID = big.NewInt(DefaultChainID)
	}

	m := &Manager{
		cfg:    cfg,
		dev:    dev,
		logger: logger,
		dial: func(ctx context.Context, url string) (Backend, error) {
			client, err := clients.DialNode(ctx, url)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Current returns the active connection or nil.
func (m *Manager) Current() *Connection {
	return m.current.Load()
}

// Connect builds and verifies a new connection and makes it current.
// The previous connection stays current if anything fails.
func (m *Manager) Connect(ctx context.Context, preferInjected bool) (*Connection, error) {
	identity, err := m.resolveIdentity(preferInjected)
	if err != nil {
		return nil, err
	}

	backend, err := m.dial(ctx, m.cfg.NodeURL)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrConnection, "node unreachable: %v", err)
	}

	conn := &Connection{
		Backend:   backend,
		Identity:  identity,
		ChainID:   m.cfg.ChainID,
		Addresses: m.cfg.Addresses,
	}

	if err := m.verify(ctx, conn); err != nil {
		backend.Close()
		return nil, err
	}

	if old := m.current.Swap(conn); old != nil && old.Backend != backend {
		old.Backend.Close()
	}

	m.logger.Info("connected",
		zap.String("account", identity.Address.Hex()),
		zap.String("identity", string(identity.Kind)),
		zap.String("chain_id", conn.ChainID.String()))

	return conn, nil
}

// Close drops the active connection.
func (m *Manager) Close() {
	if old := m.current.Swap(nil); old != nil {
		old.Backend.Close()
	}
}

func (m *Manager) resolveIdentity(preferInjected bool) (*clients.Identity, error) {
	if preferInjected && m.injected != nil {
		identity, err := m.injected()
		if err == nil {
			return identity, nil
		}
		m.logger.Warn("failed to connect injected wallet, using dev account", zap.Error(err))
	}

	if m.dev == nil {
		return nil, errors.Wrap(domain.ErrConnection, "no signing identity configured")
	}

	identity, err := m.dev()
	if err != nil {
		return nil, errors.Wrapf(domain.ErrConnection, "dev identity: %v", err)
	}
	return identity, nil
}

func (m *Manager) verify(ctx context.Context, conn *Connection) error {
	chainID, err := conn.Backend.ChainID(ctx)
	if err != nil {
		return errors.Wrapf(domain.ErrConnection, "read chain id: %v", err)
	}
	if chainID.Cmp(m.cfg.ChainID) != 0 {
		return errors.Wrapf(domain.ErrWrongNetwork, "node is on chain %s, expected %s", chainID, m.cfg.ChainID)
	}

	if err := conn.Addresses.Validate(); err != nil {
		return errors.Wrap(domain.ErrContractsNotDeployed, err.Error())
	}

	for name, addr := range map[string]common.Address{
		"ledger": conn.Addresses.Ledger,
		"game":   conn.Addresses.Game,
	} {
		code, err := conn.Backend.CodeAt(ctx, addr, nil)
		if err != nil {
			return errors.Wrapf(domain.ErrConnection, "read %s code: %v", name, err)
		}
		if len(code) == 0 {
			return errors.Wrapf(domain.ErrContractsNotDeployed, "no %s contract at %s", name, addr.Hex())
		}
	}

	return nil
}
