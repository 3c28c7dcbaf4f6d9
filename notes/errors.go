package notes

import "fmt"

// GenerationError reports a failed or unusable response from the generation
// endpoint: transport errors, non-success statuses, empty response text, or
// text that is not valid JSON. It is always recoverable; callers substitute
// deterministic fallback content instead of failing the stage.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation failed during %s", e.Op)
	}
	return fmt.Sprintf("generation failed during %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
