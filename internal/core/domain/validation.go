package domain

import "strings"

// FieldError is a single violated constraint on an input field.
type FieldError struct {
	Field   string
	Message string
}

// FullMessage renders the error the way clients see it, e.g. "Due date cannot be in the past".
func (fe FieldError) FullMessage() string {
	name := strings.ReplaceAll(fe.Field, "_", " ")
	if name == "" {
		return fe.Message
	}
	return strings.ToUpper(name[:1]) + name[1:] + " " + fe.Message
}

// ValidationError collects field errors for a create or update operation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether any error was recorded for field.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Messages returns the full messages in the order they were added.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		out = append(out, fe.FullMessage())
	}
	return out
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), ", ")
}

// OrNil returns nil when no field errors were recorded, so callers can
// return it directly as an error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
