// Package collector holds the responses entered for a checklist.
//
// A Collector is bound to one checklist definition and maps each item id
// to its current response. It replaces the widget-keyed session state of
// a UI toolkit with an explicit value that the form layer fills in and
// the record builder reads.
package collector

import (
	"errors"
	"fmt"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/model"
)

// ErrUnknownItem is matched by every *UnknownItemError.
var ErrUnknownItem = errors.New("unknown checklist item")

// UnknownItemError is returned when a response refers to an item id that
// is not part of the bound checklist.
type UnknownItemError struct {
	Checklist string
	ItemID    string
}

// Error implements the error interface.
func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("checklist %q has no item %q", e.Checklist, e.ItemID)
}

// Is reports whether target is ErrUnknownItem.
func (e *UnknownItemError) Is(target error) bool {
	return target == ErrUnknownItem
}

// Collector maps item ids of one checklist to their responses.
// It is not safe for concurrent use; the form layer owns it for the
// duration of one audit session.
type Collector struct {
	def       *checklist.Definition
	responses map[string]model.Response
}

// New creates an empty Collector bound to def.
func New(def *checklist.Definition) *Collector {
	return &Collector{
		def:       def,
		responses: make(map[string]model.Response, def.Len()),
	}
}

// Definition returns the bound checklist.
func (c *Collector) Definition() *checklist.Definition {
	return c.def
}

// Get returns the current response for id, or the default response
// (unset status, empty comment) if none has been recorded.
func (c *Collector) Get(id string) model.Response {
	if r, ok := c.responses[id]; ok {
		return r
	}
	return model.NewResponse(id)
}

// Set overwrites the response for id.
// If id is not an item of the bound checklist it returns an
// *UnknownItemError and the collector is left unchanged.
func (c *Collector) Set(id string, status model.Status, comment string) error {
	if !c.def.Has(id) {
		return &UnknownItemError{Checklist: c.def.Name(), ItemID: id}
	}
	c.responses[id] = model.Response{ItemID: id, Status: status, Comment: comment}
	return nil
}

// SetStatus changes only the status of id, keeping its comment.
func (c *Collector) SetStatus(id string, status model.Status) error {
	return c.Set(id, status, c.Get(id).Comment)
}

// SetComment changes only the comment of id, keeping its status.
func (c *Collector) SetComment(id, comment string) error {
	return c.Set(id, c.Get(id).Status, comment)
}

// All returns one response per checklist item. Items without a recorded
// response get the default response, so the map always has exactly
// Definition().Len() entries.
func (c *Collector) All() map[string]model.Response {
	out := make(map[string]model.Response, c.def.Len())
	for _, e := range c.def.Entries() {
		out[e.Item.ID] = c.Get(e.Item.ID)
	}
	return out
}

// Answered returns the number of items with a set status.
func (c *Collector) Answered() int {
	n := 0
	for _, r := range c.responses {
		if r.Status.IsSet() {
			n++
		}
	}
	return n
}
