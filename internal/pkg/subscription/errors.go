package subscription

import "fmt"

// NotFoundError identifies which entity could not be resolved while applying
// a webhook event. The webhook controller maps it to a 404 response.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Ref)
}

// ValidationError signals a payload or record precondition failure that the
// webhook controller maps to a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
