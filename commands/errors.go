package commands

import (
	"fmt"
	"runtime/debug"
)

type DuplicateCommandError struct {
	Name string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.Name)
}

// ArityError is returned by handlers given the wrong number of arguments.
type ArityError struct {
	Min, Max int
	Got      int
}

func (e *ArityError) Error() string {

	switch {
	case e.Min == e.Max:
		return fmt.Sprintf("expected %s, got %d", plural(e.Min), e.Got)
	case e.Got < e.Min:
		return fmt.Sprintf("expected at least %s, got %d", plural(e.Min), e.Got)
	}

	return fmt.Sprintf("expected at most %s, got %d", plural(e.Max), e.Got)
}

func plural(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}

// RequireArgs checks min <= len(args) <= max. A negative max means no upper
// bound.
func RequireArgs(args []string, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return &ArityError{Min: min, Max: max, Got: len(args)}
	}
	return nil
}

// PanicError carries a recovered handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Format prints the stack as well with %+v.
func (e *PanicError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "panic: %s\n%s", e.Error(), e.Stack)
		return
	}
	fmt.Fprint(s, e.Error())
}
