package roulette

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	mocks "github.com/vadiminshakov/roulette/mocks/roulette"
	"github.com/vadiminshakov/roulette/internal/contracts"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.uber.org/zap"
)

var player = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type receiptBackend struct {
	receipt *types.Receipt
}

func (b receiptBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return b.receipt, nil
}

func (b receiptBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, nil
}

func minedPending(method string, nonce uint64, logs ...*types.Log) *contracts.Pending {
	tx := types.NewTx(&types.LegacyTx{Nonce: nonce, Gas: 21000, GasPrice: big.NewInt(1)})
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash(), Logs: logs}
	return contracts.NewPending(method, tx, receiptBackend{receipt: receipt})
}

func revertedPending(method string) *contracts.Pending {
	tx := types.NewTx(&types.LegacyTx{Nonce: 99, Gas: 21000, GasPrice: big.NewInt(1)})
	receipt := &types.Receipt{Status: types.ReceiptStatusFailed, TxHash: tx.Hash()}
	return contracts.NewPending(method, tx, receiptBackend{receipt: receipt})
}

func gameResultLog(t *testing.T, number int64, bet, win *big.Int, isWin bool) *types.Log {
	ev := contracts.GameDescriptor().Events["GameResult"]
	data, err := ev.Inputs.NonIndexed().Pack(big.NewInt(number), bet, win, isWin)
	require.NoError(t, err)
	return &types.Log{Topics: []common.Hash{ev.ID}, Data: data}
}

func ether(s string) *big.Int {
	return domain.ToWei(decimal.RequireFromString(s))
}

func weiEq(expected *big.Int) interface{} {
	return mock.MatchedBy(func(actual *big.Int) bool { return actual != nil && actual.Cmp(expected) == 0 })
}

func noticeOf(kind domain.NoticeKind) interface{} {
	return mock.MatchedBy(func(n domain.Notice) bool { return n.Kind == kind })
}

type fixture struct {
	ledger   *mocks.Ledger
	game     *mocks.Game
	recorder *mocks.Recorder
	animator *mocks.Animator
	notifier *mocks.Notifier
	ctrl     *Controller
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		ledger:   mocks.NewLedger(t),
		game:     mocks.NewGame(t),
		recorder: mocks.NewRecorder(t),
		animator: mocks.NewAnimator(t),
		notifier: mocks.NewNotifier(t),
	}
	f.ctrl = NewController(f.recorder, f.animator, f.notifier, zap.NewNop())
	return f
}

func (f *fixture) attach(t *testing.T, balance string) {
	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: ether(balance), IsActive: true}, nil)
	require.NoError(t, f.ctrl.Attach(context.Background(), &Session{Player: player, Ledger: f.ledger, Game: f.game}))
}

func TestController_WinningNumberBet(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: ether("1.0"), IsActive: true}, nil).Times(3)
	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: ether("18.0"), IsActive: true}, nil).Once()
	require.NoError(t, f.ctrl.Attach(context.Background(), &Session{Player: player, Ledger: f.ledger, Game: f.game}))

	require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 7}))
	assert.Equal(t, domain.StateSelecting, f.ctrl.State())

	pending := minedPending("placeBetAndSpin", 1, gameResultLog(t, 7, ether("0.5"), ether("17.5"), true))
	f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{7}, weiEq(ether("0.5"))).Return(pending, nil).Once()
	f.game.On("BetCounter", mock.Anything).Return(big.NewInt(1), nil).Once()
	f.animator.On("Spin", mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", mock.MatchedBy(func(n domain.Notice) bool {
		return n.Kind == domain.NoticeWin && strings.Contains(n.Message, "17.5") && strings.Contains(n.Message, "Result: 7")
	})).Once()

	var recorded domain.BetRecord
	f.recorder.On("Record", mock.Anything, mock.AnythingOfType("domain.BetRecord")).
		Run(func(args mock.Arguments) { recorded = args.Get(1).(domain.BetRecord) }).
		Return(domain.BetRecord{ID: 1}, nil).Once()

	err := f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.5"})
	require.NoError(t, err)

	assert.Equal(t, domain.StateIdle, f.ctrl.State())
	assert.True(t, f.ctrl.Selection().IsEmpty())
	assert.Equal(t, player.Hex(), recorded.Player)
	assert.Equal(t, "single", recorded.BetType)
	assert.Equal(t, 7, recorded.Result)
	assert.True(t, recorded.Win)
	assert.Equal(t, 0.5, recorded.Amount)
	assert.Zero(t, ether("18.0").Cmp(f.ctrl.Account().Balance), "balance is refreshed after settlement")
	f.ledger.AssertNumberOfCalls(t, "GetAccountInfo", 4)
}

func TestController_SelectionFrozenDuringSubmission(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: ether("1"), IsActive: true}, nil).Twice()
	require.NoError(t, f.ctrl.Attach(context.Background(), &Session{Player: player, Ledger: f.ledger, Game: f.game}))
	require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 17}))

	var toggles []error
	toggle := func(mock.Arguments) {
		assert.Equal(t, domain.StateSubmitting, f.ctrl.State())
		toggles = append(toggles,
			f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 3}),
			f.ctrl.Dispatch(context.Background(), ToggleCategory{C: domain.CategoryBlack}))
	}
	f.ledger.On("GetAccountInfo", mock.Anything, player).Run(toggle).
		Return(domain.Account{Balance: ether("1"), IsActive: true}, nil).Once()
	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: ether("1.2"), IsActive: true}, nil).Once()

	pending := minedPending("placeBetAndSpin", 1, gameResultLog(t, 17, ether("0.2"), ether("7"), true))
	f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{17}, weiEq(ether("0.2"))).Run(toggle).Return(pending, nil).Once()
	f.game.On("BetCounter", mock.Anything).Return(big.NewInt(1), nil).Once()
	f.animator.On("Spin", mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", noticeOf(domain.NoticeWin)).Once()
	f.recorder.On("Record", mock.Anything, mock.MatchedBy(func(r domain.BetRecord) bool {
		return r.BetType == domain.BetTypeSingle && r.Result == 17
	})).Return(domain.BetRecord{ID: 1}, nil).Once()

	require.NoError(t, f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.2"}))

	require.Len(t, toggles, 4)
	for _, err := range toggles {
		assert.ErrorIs(t, err, domain.ErrBusy)
	}
	assert.True(t, f.ctrl.Selection().IsEmpty())
	assert.Equal(t, domain.StateIdle, f.ctrl.State())
}

func TestController_LosingCategoryBet(t *testing.T) {
	f := newFixture(t)
	f.attach(t, "2")

	require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleCategory{C: domain.CategoryRed}))

	pending := minedPending("placeBetAndSpin", 1, gameResultLog(t, 2, ether("1"), big.NewInt(0), false))
	f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{37}, weiEq(ether("1"))).Return(pending, nil).Once()
	f.game.On("BetCounter", mock.Anything).Return(big.NewInt(2), nil).Once()
	f.animator.On("Spin", mock.Anything).Return(nil).Once()
	f.notifier.On("Notify", noticeOf(domain.NoticeLose)).Once()
	f.recorder.On("Record", mock.Anything, mock.MatchedBy(func(r domain.BetRecord) bool {
		return r.BetType == "red" && r.Result == 2 && !r.Win && r.Amount == 1
	})).Return(domain.BetRecord{}, errors.New("relay down")).Once()

	require.NoError(t, f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "1"}))
	assert.Equal(t, domain.StateIdle, f.ctrl.State())
}

func TestController_RejectedBeforeSubmission(t *testing.T) {
	tests := []struct {
		name     string
		balance  string
		selectN  *int
		amount   string
		wantErr  error
		wantText string
	}{
		{
			name:     "insufficient balance",
			balance:  "0.1",
			selectN:  intPtr(7),
			amount:   "0.5",
			wantErr:  domain.ErrInsufficientBalance,
			wantText: "Insufficient balance. Please deposit more funds.",
		},
		{
			name:     "no selection",
			balance:  "1",
			amount:   "0.5",
			wantErr:  domain.ErrValidation,
			wantText: "Please select a number or betting type",
		},
		{
			name:     "empty amount",
			balance:  "1",
			selectN:  intPtr(3),
			amount:   "  ",
			wantErr:  domain.ErrValidation,
			wantText: "Please enter a bet amount",
		},
		{
			name:     "malformed amount",
			balance:  "1",
			selectN:  intPtr(3),
			amount:   "abc",
			wantErr:  domain.ErrValidation,
			wantText: "Invalid bet amount. Please enter a valid number.",
		},
		{
			name:     "zero amount",
			balance:  "1",
			selectN:  intPtr(3),
			amount:   "0",
			wantErr:  domain.ErrValidation,
			wantText: "Bet amount must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.attach(t, tt.balance)

			if tt.selectN != nil {
				require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: *tt.selectN}))
			}
			f.notifier.On("Notify", domain.Notice{Kind: domain.NoticeError, Message: tt.wantText}).Once()

			err := f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: tt.amount})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)

			if tt.selectN != nil {
				assert.Equal(t, domain.StateSelecting, f.ctrl.State())
				n, ok := f.ctrl.Selection().Number()
				assert.True(t, ok)
				assert.Equal(t, *tt.selectN, n)
			} else {
				assert.Equal(t, domain.StateIdle, f.ctrl.State())
			}

			f.game.AssertNotCalled(t, "PlaceBetAndSpin", mock.Anything, mock.Anything, mock.Anything)
			f.recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		})
	}
}

func TestController_RemoteFailures(t *testing.T) {
	t.Run("submission rejected", func(t *testing.T) {
		f := newFixture(t)
		f.attach(t, "1")
		require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 0}))

		f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{0}, mock.Anything).
			Return(nil, domain.ErrRemoteCall).Once()
		f.notifier.On("Notify", noticeOf(domain.NoticeError)).Once()

		err := f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.1"})
		assert.ErrorIs(t, err, domain.ErrRemoteCall)
		assert.Equal(t, domain.StateSelecting, f.ctrl.State())
	})

	t.Run("transaction reverted", func(t *testing.T) {
		f := newFixture(t)
		f.attach(t, "1")
		require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 0}))

		f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{0}, mock.Anything).
			Return(revertedPending("placeBetAndSpin"), nil).Once()
		f.animator.On("Spin", mock.Anything).Return(context.Canceled).Once()
		f.notifier.On("Notify", noticeOf(domain.NoticeError)).Once()

		err := f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.1"})
		assert.ErrorIs(t, err, domain.ErrRemoteCall)
		assert.Equal(t, domain.StateSelecting, f.ctrl.State())
	})

	t.Run("missing result event", func(t *testing.T) {
		f := newFixture(t)
		f.attach(t, "1")
		require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleCategory{C: domain.CategoryOdd}))

		f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{40}, mock.Anything).
			Return(minedPending("placeBetAndSpin", 2), nil).Once()
		f.animator.On("Spin", mock.Anything).Return(nil).Once()
		f.notifier.On("Notify", noticeOf(domain.NoticeError)).Once()

		err := f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.1"})
		assert.ErrorIs(t, err, domain.ErrMissingResultEvent)
		assert.Equal(t, domain.StateSelecting, f.ctrl.State())
		cat, ok := f.ctrl.Selection().Category()
		assert.True(t, ok)
		assert.Equal(t, domain.CategoryOdd, cat)
	})
}

func TestController_BusyWhileAwaitingResult(t *testing.T) {
	f := newFixture(t)
	f.attach(t, "1")
	require.NoError(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 17}))

	release := make(chan struct{})
	pending := minedPending("placeBetAndSpin", 1, gameResultLog(t, 5, ether("0.2"), big.NewInt(0), false))
	f.game.On("PlaceBetAndSpin", mock.Anything, []uint64{17}, mock.Anything).Return(pending, nil).Once()
	f.game.On("BetCounter", mock.Anything).Return(nil, errors.New("unavailable")).Once()
	f.animator.On("Spin", mock.Anything).Run(func(mock.Arguments) { <-release }).Return(nil).Once()
	f.notifier.On("Notify", noticeOf(domain.NoticeLose)).Once()
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(domain.BetRecord{}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.2"}) }()

	require.Eventually(t, func() bool { return f.ctrl.State() == domain.StateAwaitingResult }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), ToggleNumber{N: 1}), domain.ErrBusy)
	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "0.2"}), domain.ErrBusy)
	assert.ErrorIs(t, f.ctrl.Attach(context.Background(), &Session{Player: player, Ledger: f.ledger, Game: f.game}), domain.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, domain.StateIdle, f.ctrl.State())
}

func TestController_AttachActivatesAccount(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: big.NewInt(0), IsActive: false}, nil).Once()
	f.ledger.On("ActivateAccount", mock.Anything).Return(minedPending("activateAccount", 1), nil).Once()
	f.ledger.On("GetAccountInfo", mock.Anything, player).
		Return(domain.Account{Balance: big.NewInt(0), IsActive: true}, nil).Once()

	require.NoError(t, f.ctrl.Attach(context.Background(), &Session{Player: player, Ledger: f.ledger, Game: f.game}))
	assert.True(t, f.ctrl.Account().IsActive)

	got, ok := f.ctrl.Player()
	assert.True(t, ok)
	assert.Equal(t, player, got)

	assert.ErrorIs(t, f.ctrl.Attach(context.Background(), &Session{Player: player}), domain.ErrBind)
}

func TestController_DepositAndWithdraw(t *testing.T) {
	f := newFixture(t)
	f.attach(t, "1")

	f.ledger.On("Deposit", mock.Anything, weiEq(ether("2.5"))).Return(minedPending("deposit", 5), nil).Once()
	f.notifier.On("Notify", domain.Notice{Kind: domain.NoticeInfo, Message: "Deposit successful!"}).Once()
	require.NoError(t, f.ctrl.Dispatch(context.Background(), Deposit{Amount: "2.5"}))

	f.ledger.On("Withdraw", mock.Anything, weiEq(ether("0.25"))).Return(revertedPending("withdraw"), nil).Once()
	f.notifier.On("Notify", mock.MatchedBy(func(n domain.Notice) bool {
		return n.Kind == domain.NoticeError && strings.HasPrefix(n.Message, "Withdrawal failed: ")
	})).Once()
	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), Withdraw{Amount: "0.25"}), domain.ErrRemoteCall)

	f.notifier.On("Notify", domain.Notice{Kind: domain.NoticeError, Message: "Please enter a bet amount"}).Once()
	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), Deposit{Amount: ""}), domain.ErrValidation)
}

func TestController_RequiresSession(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), PlaceBet{Amount: "1"}), domain.ErrConnection)
	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), RefreshBalance{}), domain.ErrConnection)
	assert.ErrorIs(t, f.ctrl.Dispatch(context.Background(), Deposit{Amount: "1"}), domain.ErrConnection)
}

func intPtr(n int) *int { return &n }
