package game

import "errors"

// Kind classifies expected, recoverable failures returned to callers.
type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindNotFound             Kind = "not_found"
	KindInvalidState         Kind = "invalid_state"
	KindExhaustedAttempts    Kind = "exhausted_attempts"
	KindMalformedInput       Kind = "malformed_input"
	KindRejectedByDictionary Kind = "rejected_by_dictionary"
	KindHintExhausted        Kind = "hint_exhausted"
	KindNoHintablePositions  Kind = "no_hintable_positions"
	KindOracleUnavailable    Kind = "oracle_unavailable"
	KindNoWordsAvailable     Kind = "no_words_available"
)

// Error is a typed game failure. Two Errors match under errors.Is when their
// kinds are equal, so a more specific message still matches its sentinel.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthenticated      = &Error{KindUnauthenticated, "not authenticated"}
	ErrNotFound             = &Error{KindNotFound, "session not found"}
	ErrInvalidState         = &Error{KindInvalidState, "game is not in progress"}
	ErrExhaustedAttempts    = &Error{KindExhaustedAttempts, "no attempts left"}
	ErrMalformedInput       = &Error{KindMalformedInput, "wrong word length"}
	ErrNotLetters           = &Error{KindMalformedInput, "guess must use letters a-z only"}
	ErrRejectedByDictionary = &Error{KindRejectedByDictionary, "not in dictionary"}
	ErrHintExhausted        = &Error{KindHintExhausted, "no hints left"}
	ErrNoHintablePositions  = &Error{KindNoHintablePositions, "no hintable positions left"}
	ErrOracleUnavailable    = &Error{KindOracleUnavailable, "oracle unavailable"}
	ErrNoWordsAvailable     = &Error{KindNoWordsAvailable, "no words available"}

	ErrPowerHintUsed = &Error{KindInvalidState, "power hint already used"}
)

// KindOf returns the Kind of a game error, or "" for anything else
// (persistence failures and other unexpected errors).
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
