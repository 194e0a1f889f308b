package submission

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldValidator checks one field value and returns a user-facing error.
type FieldValidator func(value string) error

var validate = validator.New()

// Required fails with a RequiredFieldError when value is empty or whitespace only.
func Required(field, message string) FieldValidator {
	return func(value string) error {
		if err := validate.Var(strings.TrimSpace(value), "required"); err != nil {
			return &RequiredFieldError{Field: field, Message: message}
		}
		return nil
	}
}

// MaxLength fails when the trimmed value is longer than n characters.
func MaxLength(field string, n int) FieldValidator {
	tag := fmt.Sprintf("max=%d", n)
	return func(value string) error {
		if err := validate.Var(strings.TrimSpace(value), tag); err != nil {
			return fmt.Errorf("%s must be at most %d characters", field, n)
		}
		return nil
	}
}

// OneOf fails when value is set but not among allowed.
func OneOf(field string, allowed ...string) FieldValidator {
	return func(value string) error {
		if value == "" {
			return nil
		}
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %s", field, strings.Join(allowed, ", "))
	}
}

type formField struct {
	value      string
	validators []FieldValidator
	err        error
}

// Form owns field values and their validation results.
type Form struct {
	mu     sync.Mutex
	fields map[string]*formField
	order  []string
}

func NewForm() *Form {
	return &Form{fields: make(map[string]*formField)}
}

// Register adds a field. Registering an existing name appends validators.
func (f *Form) Register(name string, validators ...FieldValidator) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fld, ok := f.fields[name]; ok {
		fld.validators = append(fld.validators, validators...)
		return
	}
	f.fields[name] = &formField{validators: validators}
	f.order = append(f.order, name)
}

// Set stores a value. A field showing an error is re-validated so the error clears once it passes.
func (f *Form) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fld, ok := f.fields[name]
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	fld.value = value
	if fld.err != nil {
		fld.err = runValidators(fld)
	}
	return nil
}

func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fld, ok := f.fields[name]; ok {
		return fld.value
	}
	return ""
}

// Values snapshots every registered field.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valuesLocked()
}

// FieldError returns the inline error currently attached to name.
func (f *Form) FieldError(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fld, ok := f.fields[name]; ok {
		return fld.err
	}
	return nil
}

// Errors returns every field currently showing an error.
func (f *Form) Errors() map[string]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]error)
	for name, fld := range f.fields {
		if fld.err != nil {
			out[name] = fld.err
		}
	}
	return out
}

// Submit validates every field and calls handler with the values only when all pass.
func (f *Form) Submit(handler func(values map[string]string) error) error {
	f.mu.Lock()
	failed := make(map[string]error)
	for _, name := range f.order {
		fld := f.fields[name]
		fld.err = runValidators(fld)
		if fld.err != nil {
			failed[name] = fld.err
		}
	}
	values := f.valuesLocked()
	f.mu.Unlock()

	if len(failed) > 0 {
		return &ValidationError{Fields: failed}
	}
	return handler(values)
}

func (f *Form) valuesLocked() map[string]string {
	out := make(map[string]string, len(f.fields))
	for name, fld := range f.fields {
		out[name] = fld.value
	}
	return out
}

func runValidators(fld *formField) error {
	for _, v := range fld.validators {
		if err := v(fld.value); err != nil {
			return err
		}
	}
	return nil
}
