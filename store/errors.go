package store

import "fmt"

// NotFoundError reports a record that could not be produced: either nothing
// is stored under ID, or the backend failed while looking (Err is set).
type NotFoundError struct {
	Collection Collection
	ID         string
	Err        error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not load %s %s: %s", e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("%s was not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
