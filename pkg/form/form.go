package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formscreen/pkg/i18n"
	"github.com/goliatone/go-formscreen/pkg/model"
	"github.com/goliatone/go-formscreen/pkg/validation"
)

// Form is one runtime instance of a FormDefinition. Methods are safe for
// concurrent use; the submit handler runs without holding the form lock.
type Form struct {
	def        model.FormDefinition
	onSubmit   SubmitFunc
	validator  FieldValidator
	translator i18n.Translator
	logger     *slog.Logger
	policy     SubmitErrorPolicy
	locale     string

	mu         sync.RWMutex
	values     map[string]any
	errors     map[string]string
	formErrors []string
	submitted  bool
	submitting bool
	submitErr  error
}

// New validates def and seeds a form with defaults. onSubmit may be nil.
func New(def model.FormDefinition, onSubmit SubmitFunc, options ...Option) (*Form, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	f := &Form{
		def:      def,
		onSubmit: onSubmit,
		logger:   slog.Default(),
		policy:   SubmitErrorSurface,
		locale:   i18n.DefaultLocale,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.locale == "" {
		f.locale = i18n.DefaultLocale
	}
	if f.validator == nil {
		f.validator = validation.New(validation.WithTranslator(f.translator))
	}

	f.resetLocked()
	return f, nil
}

// Definition returns the definition the form was built from.
func (f *Form) Definition() model.FormDefinition {
	return f.def
}

// Locale reports the locale used for messages.
func (f *Form) Locale() string {
	return f.locale
}

// Translator returns the configured translator, if any.
func (f *Form) Translator() i18n.Translator {
	return f.translator
}

// SetFieldValue stores value at path. Unknown paths are rejected and never
// retained. After a submit attempt the path is re-validated immediately.
func (f *Form) SetFieldValue(path string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := resolve(f.def.Fields, f.values, path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, path)
	}

	var err error
	switch n.kind {
	case itemNode:
		err = assignMap(n.childFields(), n.childContainer(), value)
	default:
		err = assign(n.field, n.container, value)
	}
	if err != nil {
		return fmt.Errorf("form: set %q: %w", path, err)
	}

	if f.submitted {
		f.validateNodeLocked(n)
	}
	return nil
}

// ValidateField validates path and updates its error state. Groups validate
// their children; arrays validate their own required check and every item.
// Unknown paths report false.
func (f *Form) ValidateField(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := resolve(f.def.Fields, f.values, path)
	if !ok {
		return false
	}
	return f.validateNodeLocked(n)
}

// ValidateAll validates every field and replaces the error state.
func (f *Form) ValidateAll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateAllLocked()
}

// Submit marks the form submitted and, when valid, passes a copy of the flat
// result to the handler exactly once. The returned map is the result that was
// submitted.
func (f *Form) Submit(ctx context.Context) (map[string]any, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.submitted = true
	f.submitErr = nil
	f.formErrors = nil

	if !f.validateAllLocked() {
		count := len(f.errors)
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %d field error(s)", ErrValidation, count)
	}

	result := cloneValues(f.values)
	f.submitting = true
	f.mu.Unlock()

	var err error
	if f.onSubmit != nil {
		err = f.callHandler(ctx, cloneValues(result))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err == nil {
		return result, nil
	}

	f.logger.ErrorContext(ctx, "form submit handler failed",
		"form", f.def.ID,
		"policy", f.policy.String(),
		"error", err,
	)

	var fieldErrs FieldErrorer
	if errors.As(err, &fieldErrs) {
		f.applyErrorsLocked(fieldErrs.FieldErrors())
	}

	if f.policy == SubmitErrorLog {
		return result, nil
	}
	f.submitErr = err
	return result, fmt.Errorf("form: submit handler: %w", err)
}

func (f *Form) callHandler(ctx context.Context, result map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("form: submit handler panic: %v", r)
		}
	}()
	return f.onSubmit(ctx, result)
}

// Reset restores defaults and clears errors, the submitted flag and the last
// submit error. Calling it twice equals calling it once.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
}

func (f *Form) resetLocked() {
	values := make(map[string]any)
	seed(f.def.Fields, values)
	f.values = values
	f.errors = make(map[string]string)
	f.formErrors = nil
	f.submitted = false
	f.submitErr = nil
}

// AddItem appends a default-filled repetition to the array at path and
// returns its index.
func (f *Form) AddItem(path string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.arrayNodeLocked(path)
	if err != nil {
		return -1, err
	}
	items, _ := n.container[n.field.Key].([]any)
	items = append(items, newItem(n.field))
	n.container[n.field.Key] = items

	if f.submitted {
		f.validateNodeLocked(n)
	}
	return len(items) - 1, nil
}

// RemoveItem deletes repetition index from the array at path.
func (f *Form) RemoveItem(path string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, err := f.arrayNodeLocked(path)
	if err != nil {
		return err
	}
	items, _ := n.container[n.field.Key].([]any)
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %s[%d]", ErrItemIndex, path, index)
	}
	next := make([]any, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	n.container[n.field.Key] = next

	f.clearErrorsUnderLocked(n.path + ".")
	if f.submitted {
		f.validateNodeLocked(n)
	}
	return nil
}

// ItemCount reports the repetitions of the array at path, or 0.
func (f *Form) ItemCount(path string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n, err := f.arrayNodeLocked(path)
	if err != nil {
		return 0
	}
	items, _ := n.container[n.field.Key].([]any)
	return len(items)
}

func (f *Form) arrayNodeLocked(path string) (node, error) {
	n, ok := resolve(f.def.Fields, f.values, path)
	if !ok {
		return node{}, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	if n.kind != arrayNode {
		return node{}, fmt.Errorf("%w: %q", ErrNotArray, path)
	}
	return n, nil
}

// Value returns a copy of the value at path. Group paths yield an object of
// their children.
func (f *Form) Value(path string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n, ok := resolve(f.def.Fields, f.values, path)
	if !ok {
		return nil, false
	}
	switch n.kind {
	case groupNode:
		out := make(map[string]any)
		for _, child := range model.Flatten(n.field.Fields) {
			out[child.Key] = deepCopy(n.container[child.Key])
		}
		return out, true
	case itemNode:
		return deepCopy(n.childContainer()), true
	default:
		return deepCopy(n.container[n.field.Key]), true
	}
}

// Values returns a deep copy of the flat result.
func (f *Form) Values() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneValues(f.values)
}

// Error returns the current error at path.
func (f *Form) Error(path string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.errors[path]
}

// Errors returns a copy of every field error keyed by path.
func (f *Form) Errors() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// ErrorPaths returns the paths with errors in sorted order.
func (f *Form) ErrorPaths() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	paths := make([]string, 0, len(f.errors))
	for p := range f.errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FormErrors returns messages not tied to a field.
func (f *Form) FormErrors() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.formErrors...)
}

// ApplyErrors maps a server-side error payload onto field paths. Unknown
// paths become form-level errors.
func (f *Form) ApplyErrors(payload map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyErrorsLocked(payload)
}

func (f *Form) applyErrorsLocked(payload map[string][]string) {
	mapping := MapErrorPayload(f.def, f.values, payload)
	for path, messages := range mapping.Fields {
		if len(messages) > 0 {
			f.errors[path] = messages[0]
		}
	}
	f.formErrors = MergeFormErrors(f.formErrors, mapping.Form...)
}

// Submitted reports whether a submit has been attempted since the last reset.
func (f *Form) Submitted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitted
}

// Submitting reports whether the submit handler is running.
func (f *Form) Submitting() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitting
}

// SubmitError returns the last surfaced handler failure.
func (f *Form) SubmitError() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitErr
}

func (f *Form) validateAllLocked() bool {
	f.errors = make(map[string]string)
	return f.validateFieldsLocked(f.def.Fields, "", f.values)
}

func (f *Form) validateNodeLocked(n node) bool {
	switch n.kind {
	case groupNode:
		return f.validateFieldsLocked(n.field.Fields, n.prefix, n.container)
	case arrayNode:
		return f.validateArrayLocked(n.field, n.path, n.container)
	case itemNode:
		f.clearErrorsUnderLocked(n.path + ".")
		return f.validateFieldsLocked(n.childFields(), n.childPrefix(), n.childContainer())
	default:
		return f.validateLeafLocked(n.field, n.path, n.container[n.field.Key])
	}
}

func (f *Form) validateFieldsLocked(fields []model.FieldDefinition, prefix string, container map[string]any) bool {
	valid := true
	for _, field := range model.Flatten(fields) {
		path := prefix + field.Key
		if field.Type == model.FieldTypeArray {
			if !f.validateArrayLocked(field, path, container) {
				valid = false
			}
			continue
		}
		if !f.validateLeafLocked(field, path, container[field.Key]) {
			valid = false
		}
	}
	return valid
}

func (f *Form) validateArrayLocked(field model.FieldDefinition, path string, container map[string]any) bool {
	f.clearErrorsUnderLocked(path + ".")
	items, _ := container[field.Key].([]any)

	valid := f.validateLeafLocked(field, path, items)
	for idx, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if !f.validateFieldsLocked(field.Fields, fmt.Sprintf("%s.%d.", path, idx), item) {
			valid = false
		}
	}
	return valid
}

func (f *Form) validateLeafLocked(field model.FieldDefinition, path string, value any) bool {
	if msg := f.validator.Validate(f.locale, field, value); msg != "" {
		f.errors[path] = msg
		return false
	}
	delete(f.errors, path)
	return true
}

func (f *Form) clearErrorsUnderLocked(prefix string) {
	for path := range f.errors {
		if strings.HasPrefix(path, prefix) {
			delete(f.errors, path)
		}
	}
}
