package engine

import (
	"errors"
	"fmt"

	"github.com/piwi3910/FrameCalc/internal/model"
)

var (
	// ErrLookup marks a selection that does not resolve against the catalog.
	ErrLookup = errors.New("catalog lookup failed")
	// ErrMissingAttribute marks a resolved entry that lacks a numeric attribute the calculation needs.
	ErrMissingAttribute = errors.New("catalog entry missing attribute")
	// ErrInvalidDimension marks a frame length or width that is not a positive finite number.
	ErrInvalidDimension = errors.New("invalid frame dimension")
)

// LookupError describes which catalog entry could not be used.
type LookupError struct {
	Type model.ObjectType
	Name string // Name or key that was looked up
	Attr string // Empty unless Err is ErrMissingAttribute
	Err  error
}

func (e *LookupError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%s %q: %v: %s", e.Type, e.Name, e.Err, e.Attr)
	}
	return fmt.Sprintf("%s %q: %v", e.Type, e.Name, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func notFound(t model.ObjectType, name string) error {
	return &LookupError{Type: t, Name: name, Err: ErrLookup}
}

func missing(t model.ObjectType, name, attr string) error {
	return &LookupError{Type: t, Name: name, Attr: attr, Err: ErrMissingAttribute}
}
