package checklist

import (
	"errors"
	"fmt"
)

// Definition validation errors.
// Construction wraps one of these in a *DefinitionError so callers can
// use errors.Is for the kind and errors.As for the location.
var (
	// ErrDuplicateItemID is returned when two items share an identifier.
	ErrDuplicateItemID = errors.New("duplicate item id")

	// ErrEmptyItemID is returned when an item has no identifier.
	ErrEmptyItemID = errors.New("item id is empty")

	// ErrEmptyItemTitle is returned when an item has no title.
	ErrEmptyItemTitle = errors.New("item title is empty")

	// ErrNoItems is returned when a checklist has no items at all.
	ErrNoItems = errors.New("checklist has no items")

	// ErrEmptyName is returned when a checklist has no name.
	ErrEmptyName = errors.New("checklist name is empty")

	// ErrDuplicateName is returned when two checklists share a name.
	ErrDuplicateName = errors.New("duplicate checklist name")
)

// DefinitionError reports a malformed checklist definition.
type DefinitionError struct {
	// Checklist is the name of the offending checklist, if known.
	Checklist string

	// ItemID is the offending item identifier, if the error concerns one.
	ItemID string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	switch {
	case e.Checklist != "" && e.ItemID != "":
		return fmt.Sprintf("checklist %q: item %q: %v", e.Checklist, e.ItemID, e.Err)
	case e.Checklist != "":
		return fmt.Sprintf("checklist %q: %v", e.Checklist, e.Err)
	default:
		return fmt.Sprintf("checklist: %v", e.Err)
	}
}

// Unwrap returns the underlying sentinel error.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}
