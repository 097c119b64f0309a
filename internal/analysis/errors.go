package analysis

import "fmt"

// RetrievalError wraps a transport failure in the grounded retrieval stage.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("market retrieval: %v", e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }

// FormatError indicates the reasoning stage returned text that is not the
// expected JSON object even after code-fence stripping. No repair heuristic
// is attempted; a malformed payload is never partially trusted.
type FormatError struct {
	Err error
	Raw string
}

func (e *FormatError) Error() string { return fmt.Sprintf("reasoning payload: %v", e.Err) }
func (e *FormatError) Unwrap() error { return e.Err }
