package domain

// State is a step of the bet workflow.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateSubmitting
	StateAwaitingResult
	StateSettling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingResult:
		return "awaiting_result"
	case StateSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// Busy reports whether a bet is in flight.
func (s State) Busy() bool {
	return s == StateSubmitting || s == StateAwaitingResult || s == StateSettling
}

// NoticeKind classifies messages shown to the player.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeWin
	NoticeLose
	NoticeError
)

// Notice is a user-facing message emitted by the game controller.
type Notice struct {
	Kind    NoticeKind
	Message string
}
