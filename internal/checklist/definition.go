package checklist

import (
	"strings"

	"github.com/nao1215/auditsheet/internal/model"
)

// DefaultPrefix is the output file name prefix used when a checklist does
// not set one.
const DefaultPrefix = "audit"

// CheckboxStatuses are the choices offered for checklists that record a
// simple checked/unchecked state per item.
var CheckboxStatuses = []model.Status{model.StatusTrue, model.StatusFalse}

// Item is one auditable statement.
type Item struct {
	// ID identifies the item within its checklist. Responses are keyed by it.
	ID string `json:"id"`

	// Title is the statement shown to the auditor.
	Title string `json:"title"`

	// Description is optional supporting text.
	Description string `json:"description,omitempty"`
}

// Category groups items under a heading.
// Flat checklists use a single category with an empty name.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Entry pairs an item with the name of the category it belongs to.
type Entry struct {
	Category string
	Item     Item
}

// Definition is an immutable, ordered checklist.
//
// Design decision: All fields are unexported and accessors return copies,
// so a Definition can be shared by the collector, the record builder and
// the form without any of them being able to change item identity.
type Definition struct {
	name       string
	title      string
	prefix     string
	statuses   []model.Status
	categories []Category
	entries    []Entry
	index      map[string]int
}

// Option configures a Definition during construction.
type Option func(*Definition)

// WithPrefix sets the output file name prefix.
func WithPrefix(prefix string) Option {
	return func(d *Definition) {
		if strings.TrimSpace(prefix) != "" {
			d.prefix = prefix
		}
	}
}

// WithStatuses sets the status choices offered to the auditor.
// If not set, CheckboxStatuses are used.
func WithStatuses(statuses ...model.Status) Option {
	return func(d *Definition) {
		if len(statuses) > 0 {
			d.statuses = append([]model.Status(nil), statuses...)
		}
	}
}

// New builds a Definition from ordered categories.
// It fails with a *DefinitionError if the name is empty, the checklist has
// no items, an item has an empty id or title, or an id is used twice.
func New(name, title string, categories []Category, opts ...Option) (*Definition, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &DefinitionError{Err: ErrEmptyName}
	}

	d := &Definition{
		name:     name,
		title:    title,
		prefix:   DefaultPrefix,
		statuses: append([]model.Status(nil), CheckboxStatuses...),
		index:    make(map[string]int),
	}
	if d.title == "" {
		d.title = name
	}

	for _, opt := range opts {
		opt(d)
	}

	for _, cat := range categories {
		copied := Category{Name: cat.Name, Items: make([]Item, 0, len(cat.Items))}
		for _, item := range cat.Items {
			if strings.TrimSpace(item.ID) == "" {
				return nil, &DefinitionError{Checklist: name, Err: ErrEmptyItemID}
			}
			if strings.TrimSpace(item.Title) == "" {
				return nil, &DefinitionError{Checklist: name, ItemID: item.ID, Err: ErrEmptyItemTitle}
			}
			if _, dup := d.index[item.ID]; dup {
				return nil, &DefinitionError{Checklist: name, ItemID: item.ID, Err: ErrDuplicateItemID}
			}
			d.index[item.ID] = len(d.entries)
			d.entries = append(d.entries, Entry{Category: cat.Name, Item: item})
			copied.Items = append(copied.Items, item)
		}
		d.categories = append(d.categories, copied)
	}

	if len(d.entries) == 0 {
		return nil, &DefinitionError{Checklist: name, Err: ErrNoItems}
	}

	return d, nil
}

// Name returns the checklist's identifier, e.g. "cro-internal".
func (d *Definition) Name() string {
	return d.name
}

// Title returns the human-readable checklist title.
func (d *Definition) Title() string {
	return d.title
}

// Prefix returns the output file name prefix.
func (d *Definition) Prefix() string {
	return d.prefix
}

// Statuses returns the status choices offered for each item.
func (d *Definition) Statuses() []model.Status {
	return append([]model.Status(nil), d.statuses...)
}

// Entries returns every item with its category, in definition order.
func (d *Definition) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Categories returns a copy of the ordered categories.
func (d *Definition) Categories() []Category {
	out := make([]Category, len(d.categories))
	for i, c := range d.categories {
		out[i] = Category{Name: c.Name, Items: append([]Item(nil), c.Items...)}
	}
	return out
}

// Item looks up an item by id.
func (d *Definition) Item(id string) (Item, bool) {
	i, ok := d.index[id]
	if !ok {
		return Item{}, false
	}
	return d.entries[i].Item, true
}

// Has reports whether the checklist contains an item with the given id.
func (d *Definition) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Len returns the number of items.
func (d *Definition) Len() int {
	return len(d.entries)
}
