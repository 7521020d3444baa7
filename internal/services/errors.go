package services

import "fmt"

// GenerationError wraps any failure of the generative-model call: transport
// errors, quota exhaustion, or an unusable response. The scheduler treats it
// as "skip this tick and log", never as fatal.
type GenerationError struct {
	Op  string // "generate" or "evaluate"
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm %s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ErrPostingDisabled is returned by the poster when no social API token is
// configured.
var ErrPostingDisabled = fmt.Errorf("social posting is not configured")
