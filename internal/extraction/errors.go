// Package extraction turns one page snapshot into founder candidates using a
// fixed, ordered set of independent strategies.
package extraction

import (
	"fmt"

	"github.com/jonathan/founder-scout/internal/types"
)

// StrategyError reports that one strategy failed or panicked. It never escapes
// the Extractor; it is collected in Result.Failures.
type StrategyError struct {
	Strategy types.Strategy
	Cause    error
	Panic    bool
}

func (e *StrategyError) Error() string {
	if e.Panic {
		return fmt.Sprintf("extraction strategy %s panicked: %v", e.Strategy, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("extraction strategy %s failed: %v", e.Strategy, e.Cause)
	}
	return fmt.Sprintf("extraction strategy %s failed", e.Strategy)
}

func (e *StrategyError) Unwrap() error {
	return e.Cause
}

// RulesError reports an extraction config that cannot be compiled.
type RulesError struct {
	Message string
	Cause   error
}

func (e *RulesError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction rules error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction rules error: %s", e.Message)
}

func (e *RulesError) Unwrap() error {
	return e.Cause
}
