package chunker

import "errors"

var (
	// ErrInvalidMaxTokens is returned when the max token budget is not positive.
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")

	// ErrInvalidOverlap is returned when the overlap token budget is negative.
	ErrInvalidOverlap = errors.New("overlap tokens must not be negative")

	// ErrOverlapTooLarge is returned when the overlap budget is not smaller
	// than the max token budget.
	ErrOverlapTooLarge = errors.New("overlap tokens must be smaller than max tokens")

	// ErrInvalidMaxChunks is returned when the per-document chunk cap is not positive.
	ErrInvalidMaxChunks = errors.New("max chunks must be positive")

	// ErrTokenCounterRequired is returned when a nil token counter is provided.
	ErrTokenCounterRequired = errors.New("token counter required")
)
