package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the root of all argument-validation failures.
// Validation happens before any work is performed, so a call that returns
// an ErrInvalidArgument has had no effect.
var ErrInvalidArgument = errors.New("engine: invalid argument")

// Specific validation failures, all wrapping ErrInvalidArgument.
var (
	ErrInvalidRatio     = fmt.Errorf("%w: ratio must be in (0, 1]", ErrInvalidArgument)
	ErrInvalidThreshold = fmt.Errorf("%w: threshold must be in [0, 1]", ErrInvalidArgument)
	ErrInvalidMaxTokens = fmt.Errorf("%w: max tokens must be positive", ErrInvalidArgument)
)

// ValidateRatio checks that a compression ratio lies in (0, 1].
func ValidateRatio(ratio float64) error {
	if ratio <= 0 || ratio > 1 {
		return fmt.Errorf("%w, got %g", ErrInvalidRatio, ratio)
	}
	return nil
}

// ValidateThreshold checks that a suggestion threshold lies in [0, 1].
func ValidateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w, got %g", ErrInvalidThreshold, threshold)
	}
	return nil
}

// ValidateMaxTokens checks that a token budget is positive.
func ValidateMaxTokens(maxTokens int) error {
	if maxTokens <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidMaxTokens, maxTokens)
	}
	return nil
}
