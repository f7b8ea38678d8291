package checkout

import (
	"errors"
	"strings"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrAlreadyProcessing = errors.New("checkout is already processing")
	ErrSessionCompleted  = errors.New("checkout session is completed")
	ErrSessionClosed     = errors.New("checkout session is closed")
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrIllegalTransition = errors.New("illegal transition of checkout step")
	ErrWrongStep         = errors.New("draft section is not editable at the current step")
	ErrProcessingFailed  = errors.New("order processing failed")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that blocked leaving Step.
type ValidationError struct {
	Step   Step         `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed at " + string(e.Step) + ": " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil keeps a typed nil out of the error interface.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
