package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/contracts"
	"github.com/vadiminshakov/roulette/internal/domain"
	"github.com/vadiminshakov/roulette/internal/services/connection"
	"github.com/vadiminshakov/roulette/internal/services/roulette"
	"go.uber.org/zap"
)

const historyLimit = 10

// Action is a main menu entry.
type Action string

const (
	ActionNumber   Action = "number"
	ActionCategory Action = "category"
	ActionBet      Action = "bet"
	ActionDeposit  Action = "deposit"
	ActionWithdraw Action = "withdraw"
	ActionRefresh  Action = "refresh"
	ActionWallet   Action = "wallet"
	ActionHistory  Action = "history"
	ActionQuit     Action = "quit"
)

// Prompter asks the player for input. ErrAborted from any method means the
// player backed out of the prompt.
type Prompter interface {
	Action(ctx context.Context, status string) (Action, error)
	Number(ctx context.Context) (int, error)
	Category(ctx context.Context) (domain.Category, error)
	Amount(ctx context.Context, title string) (string, error)
}

// ErrAborted is returned by a Prompter when the player cancels a prompt.
var ErrAborted = errors.New("prompt aborted")

type connector interface {
	Connect(ctx context.Context, preferInjected bool) (*connection.Connection, error)
}

type history interface {
	Recent(ctx context.Context, player string, limit int) ([]domain.BetRecord, error)
}

// Game wires the prompts to the controller.
type Game struct {
	controller     *roulette.Controller
	connector      connector
	history        history
	prompter       Prompter
	notifier       roulette.Notifier
	gasLimit       uint64
	preferInjected bool
	out            io.Writer
	logger         *zap.Logger
}

// GameConfig groups the Game collaborators.
type GameConfig struct {
	Controller     *roulette.Controller
	Connector      connector
	History        history
	Prompter       Prompter
	Notifier       roulette.Notifier
	GasLimit       uint64
	PreferInjected bool
	Out            io.Writer
}

func NewGame(cfg GameConfig, logger *zap.Logger) *Game {
	if cfg.GasLimit == 0 {
		cfg.GasLimit = contracts.DefaultGasLimit
	}
	return &Game{
		controller:     cfg.Controller,
		connector:      cfg.Connector,
		history:        cfg.History,
		prompter:       cfg.Prompter,
		notifier:       cfg.Notifier,
		gasLimit:       cfg.GasLimit,
		preferInjected: cfg.PreferInjected,
		out:            cfg.Out,
		logger:         logger,
	}
}

// Connect opens a connection, binds both contracts to it and hands them to the controller.
func (g *Game) Connect(ctx context.Context) error {
	conn, err := g.connector.Connect(ctx, g.preferInjected)
	if err != nil {
		return err
	}

	ledger, game, err := contracts.Bind(conn.Backend, conn.Identity.TransactOpts(), conn.Addresses, g.gasLimit)
	if err != nil {
		return err
	}

	return g.controller.Attach(ctx, &roulette.Session{
		Player: conn.Player(),
		Ledger: ledger,
		Game:   game,
	})
}

// Run shows the menu until the player quits or ctx is done.
// The game stays usable without a connection; the player can retry via the wallet entry.
func (g *Game) Run(ctx context.Context) error {
	if err := g.Connect(ctx); err != nil {
		g.logger.Warn("initial connection failed", zap.Error(err))
		g.notice(domain.NoticeError, "Error connecting: "+err.Error())
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		action, err := g.prompter.Action(ctx, g.status())
		if errors.Is(err, ErrAborted) || action == ActionQuit {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "menu")
		}

		if err := g.handle(ctx, action); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Debug("action failed", zap.String("action", string(action)), zap.Error(err))
		}
	}
}

func (g *Game) handle(ctx context.Context, action Action) error {
	switch action {
	case ActionNumber:
		n, err := g.prompter.Number(ctx)
		if err != nil {
			return ignoreAbort(err)
		}
		return g.reportAll(g.controller.Dispatch(ctx, roulette.ToggleNumber{N: n}))

	case ActionCategory:
		c, err := g.prompter.Category(ctx)
		if err != nil {
			return ignoreAbort(err)
		}
		return g.reportAll(g.controller.Dispatch(ctx, roulette.ToggleCategory{C: c}))

	case ActionBet:
		amount, err := g.prompter.Amount(ctx, "Bet amount (ETH) on "+g.controller.Selection().String())
		if err != nil {
			return ignoreAbort(err)
		}
		return g.reportUnnotified(g.controller.Dispatch(ctx, roulette.PlaceBet{Amount: amount}))

	case ActionDeposit:
		amount, err := g.prompter.Amount(ctx, "Deposit amount (ETH)")
		if err != nil {
			return ignoreAbort(err)
		}
		return g.reportUnnotified(g.controller.Dispatch(ctx, roulette.Deposit{Amount: amount}))

	case ActionWithdraw:
		amount, err := g.prompter.Amount(ctx, "Withdraw amount (ETH)")
		if err != nil {
			return ignoreAbort(err)
		}
		return g.reportUnnotified(g.controller.Dispatch(ctx, roulette.Withdraw{Amount: amount}))

	case ActionRefresh:
		return g.reportAll(g.controller.Dispatch(ctx, roulette.RefreshBalance{}))

	case ActionWallet:
		g.preferInjected = !g.preferInjected
		if err := g.Connect(ctx); err != nil {
			g.preferInjected = !g.preferInjected
			g.notice(domain.NoticeError, "Error connecting: "+err.Error())
			return err
		}
		g.notice(domain.NoticeInfo, "Switched to "+g.walletName()+" wallet")
		return nil

	case ActionHistory:
		return g.showHistory(ctx)

	default:
		return errors.Errorf("unknown action %q", action)
	}
}

// reportAll surfaces every error; selection toggles and refresh do not notify on their own.
func (g *Game) reportAll(err error) error {
	if err != nil {
		g.notice(domain.NoticeError, describe(err))
	}
	return err
}

// reportUnnotified surfaces only the errors the controller returns without a notice.
func (g *Game) reportUnnotified(err error) error {
	if errors.Is(err, domain.ErrBusy) || errors.Is(err, domain.ErrConnection) {
		g.notice(domain.NoticeError, describe(err))
	}
	return err
}

func describe(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case errors.Is(err, domain.ErrBusy):
		return "Please wait for the current operation to finish"
	case errors.Is(err, domain.ErrConnection):
		return "Wallet not connected: " + err.Error()
	default:
		return err.Error()
	}
}

func (g *Game) showHistory(ctx context.Context) error {
	player, ok := g.controller.Player()
	if !ok {
		return g.reportAll(errors.Wrap(domain.ErrConnection, "not connected"))
	}

	records, err := g.history.Recent(ctx, player.Hex(), historyLimit)
	if err != nil {
		g.notice(domain.NoticeError, "Error loading history: "+err.Error())
		return err
	}
	if len(records) == 0 {
		g.notice(domain.NoticeInfo, "No bets yet")
		return nil
	}

	fmt.Fprintln(g.out, renderHistory(records))
	return nil
}

func renderHistory(records []domain.BetRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(subtle)).
		Headers("#", "TIME", "BET", "AMOUNT", "RESULT", "OUTCOME")

	for _, r := range records {
		outcome := noticeStyles[domain.NoticeLose].Render("lose")
		if r.Win {
			outcome = noticeStyles[domain.NoticeWin].Render("win")
		}
		t.Row(
			strconv.FormatUint(r.ID, 10),
			r.Timestamp.Local().Format(time.DateTime),
			r.BetType,
			strconv.FormatFloat(r.Amount, 'f', -1, 64),
			pocket(r.Result),
			outcome,
		)
	}

	return t.Render()
}

func (g *Game) status() string {
	account := g.controller.Account()
	player, ok := g.controller.Player()

	wallet := "not connected"
	if ok {
		wallet = fmt.Sprintf("%s (%s)", player.Hex(), g.walletName())
	}

	return panelStyle.Render(fmt.Sprintf(
		"Wallet:    %s\nBalance:   %s ETH\nSelection: %s\nState:     %s",
		wallet,
		domain.FormatEther(account.Balance),
		g.controller.Selection(),
		g.controller.State(),
	))
}

func (g *Game) walletName() string {
	if g.preferInjected {
		return "injected"
	}
	return "dev"
}

func (g *Game) notice(kind domain.NoticeKind, message string) {
	if g.notifier != nil {
		g.notifier.Notify(domain.Notice{Kind: kind, Message: message})
	}
}

func ignoreAbort(err error) error {
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}
