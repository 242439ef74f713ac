package domain

import "github.com/pkg/errors"

var (
	// ErrConnection is returned when the node is unreachable or misconfigured.
	ErrConnection = errors.New("connection error")
	// ErrWrongNetwork is returned when the node reports an unexpected chain id.
	ErrWrongNetwork = errors.Wrap(ErrConnection, "wrong network")
	// ErrContractsNotDeployed is returned when a configured address has no code.
	ErrContractsNotDeployed = errors.New("contracts not deployed")
	// ErrBind is returned when proxies cannot be bound to a connection.
	ErrBind = errors.New("bind contracts")
	// ErrValidation marks input rejected before any remote call is made.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientBalance is a validation error raised after the ledger balance check.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidBetType is a programming error: a category outside the choice table.
	ErrInvalidBetType = errors.New("invalid bet type")
	// ErrRemoteCall is returned when a contract call is rejected or reverted.
	ErrRemoteCall = errors.New("remote call failed")
	// ErrMissingResultEvent is returned when a finalized bet carries no GameResult event.
	ErrMissingResultEvent = errors.New("missing GameResult event")
	// ErrStorage is returned when the bet store fails to append a record.
	ErrStorage = errors.New("storage error")
	// ErrBusy is returned when an operation needs an idle controller.
	ErrBusy = errors.New("bet in progress")
)

// ValidationError carries a message meant for the player.
type ValidationError struct {
	Reason string
	cause  error
}

// NewValidationError creates a validation error with a user-facing reason.
func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string { return e.Reason }

// Is reports every ValidationError as ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.cause }

// NewInsufficientBalanceError reports that the ledger balance cannot cover the bet.
func NewInsufficientBalanceError() error {
	return &ValidationError{
		Reason: "Insufficient balance. Please deposit more funds.",
		cause:  ErrInsufficientBalance,
	}
}
