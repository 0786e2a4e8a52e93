package form

import "errors"

var (
	// ErrUnknownField rejects paths that do not resolve to a defined field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrValidation reports a submit aborted by failing validation.
	ErrValidation = errors.New("form: validation failed")
	// ErrSubmitInProgress reports a second submit while the handler runs.
	ErrSubmitInProgress = errors.New("form: submit already in progress")
	// ErrNotArray is returned by item operations on non-array paths.
	ErrNotArray = errors.New("form: field is not an array")
	// ErrItemIndex reports an array index outside the current items.
	ErrItemIndex = errors.New("form: array index out of range")
	// ErrInvalidValue reports a value whose shape cannot be stored at a path.
	ErrInvalidValue = errors.New("form: invalid value")
)

// FieldErrorer is implemented by submit handler errors that carry
// server-side validation messages keyed by field path.
type FieldErrorer interface {
	error
	FieldErrors() map[string][]string
}

// ServerError is a FieldErrorer handlers can return directly.
type ServerError struct {
	Message string
	Fields  map[string][]string
}

func (e *ServerError) Error() string {
	if e == nil || e.Message == "" {
		return "form: server rejected submission"
	}
	return e.Message
}

// FieldErrors implements FieldErrorer.
func (e *ServerError) FieldErrors() map[string][]string {
	if e == nil {
		return nil
	}
	return e.Fields
}
