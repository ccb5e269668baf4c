package domain

import "errors"

// The engine's failure taxonomy. All are synchronous caller errors: the
// orchestrating loop is expected to have filtered requests through
// LegalActions, so any of these reaching the engine indicates a
// contract breach upstream. Wall exhaustion is not an error; it is a
// no-contest round result.
var (
	// ErrPhaseViolation marks an operation invoked outside its legal phase.
	ErrPhaseViolation = errors.New("operation not legal in current phase")
	// ErrOwnershipViolation marks a reference to a tile or meld the
	// acting seat does not hold.
	ErrOwnershipViolation = errors.New("seat does not hold the referenced tile or meld")
	// ErrShapeViolation marks a proposed meld that breaks kind, suit or
	// consecutiveness rules.
	ErrShapeViolation = errors.New("proposed meld has an illegal shape")
	// ErrValidationFailure marks a claimed or self-drawn win that does
	// not decompose into any winning pattern.
	ErrValidationFailure = errors.New("hand is not a winning hand")
)
