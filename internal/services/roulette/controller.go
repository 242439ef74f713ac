// Package roulette drives the bet workflow: selection, validation, submission,
// waiting for the spin and settlement.
package roulette

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/roulette/internal/contracts"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.3 --name=Ledger|Game|Recorder|Animator|Notifier --output=../../../mocks/roulette --outpkg=mocks

// Ledger is the account contract as used by the controller.
type Ledger interface {
	GetAccountInfo(ctx context.Context, user common.Address) (domain.Account, error)
	ActivateAccount(ctx context.Context) (*contracts.Pending, error)
	Deposit(ctx context.Context, wei *big.Int) (*contracts.Pending, error)
	Withdraw(ctx context.Context, wei *big.Int) (*contracts.Pending, error)
}

// Game is the roulette contract as used by the controller.
type Game interface {
	PlaceBetAndSpin(ctx context.Context, choices []uint64, wei *big.Int) (*contracts.Pending, error)
	BetCounter(ctx context.Context) (*big.Int, error)
}

// Recorder appends settled bets to the bet history.
type Recorder interface {
	Record(ctx context.Context, rec domain.BetRecord) (domain.BetRecord, error)
}

// Animator plays the wheel animation while the bet is being finalized.
// Spin returns when the animation is over or ctx is done.
type Animator interface {
	Spin(ctx context.Context) error
}

// Notifier shows messages to the player.
type Notifier interface {
	Notify(notice domain.Notice)
}

// Session is the proxy pair bound to one signing identity.
type Session struct {
	Player common.Address
	Ledger Ledger
	Game   Game
}

// Controller is the bet workflow state machine. Events are serialized; a second
// remote operation is refused while one is in flight.
type Controller struct {
	mu        sync.Mutex
	state     domain.State
	selection domain.Selection
	account   domain.Account
	session   *Session
	inFlight  bool

	recorder Recorder
	animator Animator
	notifier Notifier
	logger   *zap.Logger
}

// NewController creates an idle controller with no session attached.
func NewController(recorder Recorder, animator Animator, notifier Notifier, logger *zap.Logger) *Controller {
	return &Controller{
		state:    domain.StateIdle,
		recorder: recorder,
		animator: animator,
		notifier: notifier,
		logger:   logger,
	}
}

// State returns the current workflow state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the pending selection.
func (c *Controller) Selection() domain.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Account returns the last ledger record read for the player.
func (c *Controller) Account() domain.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// Player returns the address of the attached session, if any.
func (c *Controller) Player() (common.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return common.Address{}, false
	}
	return c.session.Player, true
}

// Attach replaces the session after an identity switch and makes sure the
// player's ledger account is active. It is refused while a bet is in flight.
func (c *Controller) Attach(ctx context.Context, session *Session) error {
	if session == nil || session.Ledger == nil || session.Game == nil {
		return errors.Wrap(domain.ErrBind, "incomplete session")
	}

	if err := c.begin(); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = session
	c.account = domain.Account{}
	c.mu.Unlock()

	err := c.ensureActive(ctx, session)
	if err == nil {
		err = c.refreshBalance(ctx, session)
	}

	c.finish(err)
	if err != nil {
		c.notify(domain.NoticeError, "Error setting up account: "+userMessage(err))
		return err
	}

	c.logger.Info("session attached", zap.String("player", session.Player.Hex()))
	return nil
}

// Dispatch handles one event.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case ToggleNumber:
		return c.updateSelection(func(s domain.Selection) (domain.Selection, error) { return s.ToggleNumber(e.N) })
	case ToggleCategory:
		return c.updateSelection(func(s domain.Selection) (domain.Selection, error) { return s.ToggleCategory(e.C) })
	case PlaceBet:
		return c.placeBet(ctx, e.Amount)
	case Deposit:
		return c.deposit(ctx, e.Amount)
	case Withdraw:
		return c.withdraw(ctx, e.Amount)
	case RefreshBalance:
		session, err := c.activeSession()
		if err != nil {
			return err
		}
		return c.refreshBalance(ctx, session)
	default:
		return errors.Errorf("unknown event %T", ev)
	}
}

func (c *Controller) updateSelection(toggle func(domain.Selection) (domain.Selection, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Busy() {
		return domain.ErrBusy
	}

	next, err := toggle(c.selection)
	if err != nil {
		return err
	}

	c.selection = next
	c.state = restingState(next)
	return nil
}

func (c *Controller) placeBet(ctx context.Context, rawAmount string) error {
	session, selection, choices, amount, err := c.claimBet(rawAmount)
	if err != nil {
		return err
	}

	err = c.runBet(ctx, session, selection, choices, amount)
	c.finish(err)
	return err
}

// claimBet snapshots the selection and enters Submitting in one step, so no
// toggle can land between the snapshot and the submission.
func (c *Controller) claimBet(rawAmount string) (*Session, domain.Selection, []uint64, decimal.Decimal, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, domain.Selection{}, nil, decimal.Zero, domain.ErrBusy
	}
	session := c.session
	selection := c.selection

	var (
		choices []uint64
		amount  decimal.Decimal
		err     error
	)
	if session == nil {
		err = errors.Wrap(domain.ErrConnection, "not connected")
	} else if choices, err = selection.Choices(); err == nil {
		amount, err = domain.ParseAmount(rawAmount)
	}
	if err == nil {
		c.inFlight = true
		c.state = domain.StateSubmitting
	}
	c.mu.Unlock()

	if err != nil {
		if !errors.Is(err, domain.ErrConnection) {
			c.notify(domain.NoticeError, userMessage(err))
		}
		return nil, domain.Selection{}, nil, decimal.Zero, err
	}
	return session, selection, choices, amount, nil
}

func (c *Controller) runBet(ctx context.Context, session *Session, selection domain.Selection, choices []uint64, amount decimal.Decimal) error {
	wei := domain.ToWei(amount)
	logger := c.logger.With(
		zap.String("player", session.Player.Hex()),
		zap.String("selection", selection.String()),
		zap.String("amount", amount.String()))

	account, err := session.Ledger.GetAccountInfo(ctx, session.Player)
	if err != nil {
		c.notify(domain.NoticeError, "Error placing bet: "+userMessage(err))
		return err
	}
	c.setAccount(account)

	if !account.Covers(wei) {
		err := domain.NewInsufficientBalanceError()
		c.notify(domain.NoticeError, userMessage(err))
		return err
	}

	pending, err := session.Game.PlaceBetAndSpin(ctx, choices, wei)
	if err != nil {
		logger.Error("place bet rejected", zap.Error(err))
		c.notify(domain.NoticeError, "Error placing bet: "+userMessage(err))
		return err
	}

	c.setState(domain.StateAwaitingResult)
	logger.Info("bet submitted", zap.String("tx", pending.Hash().Hex()))

	var receipt *types.Receipt
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if c.animator == nil {
			return nil
		}
		if err := c.animator.Spin(gctx); err != nil {
			logger.Debug("spin animation stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		receipt, err = pending.Wait(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("bet failed", zap.Error(err))
		c.notify(domain.NoticeError, "Error placing bet: "+userMessage(err))
		return err
	}

	for _, line := range contracts.DescribeLogs(receipt.Logs) {
		logger.Debug("game event", zap.String("event", line))
	}

	result, err := contracts.ParseGameResult(receipt.Logs)
	if err != nil {
		logger.Error("no game result in receipt", zap.String("tx", pending.Hash().Hex()), zap.Error(err))
		c.notify(domain.NoticeError, "Error placing bet: "+userMessage(err))
		return err
	}

	c.setState(domain.StateSettling)
	c.settle(ctx, session, selection, amount, result, logger)

	c.mu.Lock()
	c.selection = domain.Selection{}
	c.mu.Unlock()

	return nil
}

func (c *Controller) settle(ctx context.Context, session *Session, selection domain.Selection, amount decimal.Decimal, result domain.GameResult, logger *zap.Logger) {
	if err := c.refreshBalance(ctx, session); err != nil {
		logger.Warn("failed to refresh balance after bet", zap.Error(err))
	}

	if result.IsWin {
		c.notify(domain.NoticeWin, fmt.Sprintf("Result: %d. Congratulations! You bet %s ETH and won %s ETH!",
			result.Number, amount.String(), domain.FormatEther(result.WinAmount)))
	} else {
		c.notify(domain.NoticeLose, fmt.Sprintf("Result: %d. Sorry, you lost %s ETH. Better luck next time!",
			result.Number, amount.String()))
	}

	logger.Info("bet settled",
		zap.Int("result", result.Number),
		zap.Bool("win", result.IsWin),
		zap.String("win_amount", domain.FormatEther(result.WinAmount)))

	if counter, err := session.Game.BetCounter(ctx); err == nil {
		logger.Debug("bet counter", zap.String("counter", counter.String()))
	}

	if c.recorder == nil {
		return
	}
	rec := domain.NewBetRecord(session.Player.Hex(), amount.InexactFloat64(), selection.BetType(), result.Number, result.IsWin)
	if _, err := c.recorder.Record(ctx, rec); err != nil {
		logger.Warn("failed to save bet", zap.Error(err))
	}
}

func (c *Controller) deposit(ctx context.Context, rawAmount string) error {
	return c.accountOperation(ctx, rawAmount, "Deposit", func(ctx context.Context, session *Session, wei *big.Int) (*contracts.Pending, error) {
		if err := c.ensureActive(ctx, session); err != nil {
			return nil, err
		}
		return session.Ledger.Deposit(ctx, wei)
	})
}

func (c *Controller) withdraw(ctx context.Context, rawAmount string) error {
	return c.accountOperation(ctx, rawAmount, "Withdrawal", func(ctx context.Context, session *Session, wei *big.Int) (*contracts.Pending, error) {
		return session.Ledger.Withdraw(ctx, wei)
	})
}

type ledgerCall func(ctx context.Context, session *Session, wei *big.Int) (*contracts.Pending, error)

func (c *Controller) accountOperation(ctx context.Context, rawAmount, label string, call ledgerCall) error {
	session, err := c.activeSession()
	if err != nil {
		return err
	}

	amount, err := domain.ParseAmount(rawAmount)
	if err != nil {
		c.notify(domain.NoticeError, userMessage(err))
		return err
	}

	if err := c.begin(); err != nil {
		return err
	}

	err = func() error {
		pending, err := call(ctx, session, domain.ToWei(amount))
		if err != nil {
			return err
		}
		if _, err := pending.Wait(ctx); err != nil {
			return err
		}
		return c.refreshBalance(ctx, session)
	}()
	c.finish(err)

	if err != nil {
		c.logger.Error(label+" failed", zap.String("player", session.Player.Hex()), zap.Error(err))
		c.notify(domain.NoticeError, label+" failed: "+userMessage(err))
		return err
	}

	c.notify(domain.NoticeInfo, label+" successful!")
	return nil
}

func (c *Controller) ensureActive(ctx context.Context, session *Session) error {
	account, err := session.Ledger.GetAccountInfo(ctx, session.Player)
	if err != nil {
		return err
	}
	if account.IsActive {
		return nil
	}

	c.logger.Info("activating account", zap.String("player", session.Player.Hex()))
	pending, err := session.Ledger.ActivateAccount(ctx)
	if err != nil {
		return err
	}
	_, err = pending.Wait(ctx)
	return err
}

func (c *Controller) refreshBalance(ctx context.Context, session *Session) error {
	account, err := session.Ledger.GetAccountInfo(ctx, session.Player)
	if err != nil {
		return err
	}
	c.setAccount(account)
	return nil
}

func (c *Controller) activeSession() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil, errors.Wrap(domain.ErrConnection, "not connected")
	}
	return c.session, nil
}

// begin claims the controller for one remote operation.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return domain.ErrBusy
	}
	c.inFlight = true
	return nil
}

// finish releases the controller and settles the state on what the selection implies.
func (c *Controller) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.state = restingState(c.selection)
	if err != nil {
		c.logger.Debug("operation failed", zap.Stringer("state", c.state), zap.Error(err))
	}
}

func (c *Controller) setState(s domain.State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	c.logger.Debug("state changed", zap.Stringer("from", prev), zap.Stringer("to", s))
}

func (c *Controller) setAccount(account domain.Account) {
	c.mu.Lock()
	c.account = account
	c.mu.Unlock()
}

func (c *Controller) notify(kind domain.NoticeKind, message string) {
	if c.notifier != nil {
		c.notifier.Notify(domain.Notice{Kind: kind, Message: message})
	}
}

func restingState(s domain.Selection) domain.State {
	if s.IsEmpty() {
		return domain.StateIdle
	}
	return domain.StateSelecting
}

// userMessage returns the text of a validation error, or the error itself otherwise.
func userMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}
