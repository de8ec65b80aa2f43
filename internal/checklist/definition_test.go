package checklist

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/auditsheet/internal/model"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("keeps category and item order", func(t *testing.T) {
		t.Parallel()

		d, err := New("docs", "Documentation", []Category{
			{Name: "Docs", Items: []Item{{ID: "a1", Title: "Backup policy"}, {ID: "a2", Title: "Retention"}}},
			{Name: "Systems", Items: []Item{{ID: "b1", Title: "Access control"}}},
		})
		require.NoError(t, err)

		entries := d.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, Entry{Category: "Docs", Item: Item{ID: "a1", Title: "Backup policy"}}, entries[0])
		assert.Equal(t, "a2", entries[1].Item.ID)
		assert.Equal(t, "Systems", entries[2].Category)
		assert.Equal(t, 3, d.Len())
		assert.Equal(t, DefaultPrefix, d.Prefix())
		assert.Equal(t, CheckboxStatuses, d.Statuses())
	})

	t.Run("rejects duplicate ids across categories", func(t *testing.T) {
		t.Parallel()

		_, err := New("dup", "", []Category{
			{Name: "A", Items: []Item{{ID: "x", Title: "one"}}},
			{Name: "B", Items: []Item{{ID: "x", Title: "two"}}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDuplicateItemID)

		var defErr *DefinitionError
		require.True(t, errors.As(err, &defErr))
		assert.Equal(t, "dup", defErr.Checklist)
		assert.Equal(t, "x", defErr.ItemID)
	})

	tests := []struct {
		name       string
		checklist  string
		categories []Category
		wantErr    error
	}{
		{
			name:       "empty name",
			checklist:  " ",
			categories: []Category{{Items: []Item{{ID: "a", Title: "t"}}}},
			wantErr:    ErrEmptyName,
		},
		{
			name:       "no items",
			checklist:  "empty",
			categories: []Category{{Name: "A"}},
			wantErr:    ErrNoItems,
		},
		{
			name:       "empty item id",
			checklist:  "c",
			categories: []Category{{Items: []Item{{ID: "", Title: "t"}}}},
			wantErr:    ErrEmptyItemID,
		},
		{
			name:       "empty item title",
			checklist:  "c",
			categories: []Category{{Items: []Item{{ID: "a", Title: ""}}}},
			wantErr:    ErrEmptyItemTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.checklist, "", tt.categories)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefinitionIsImmutable(t *testing.T) {
	t.Parallel()

	items := []Item{{ID: "a1", Title: "Backup policy"}}
	d, err := New("docs", "", []Category{{Name: "Docs", Items: items}},
		WithStatuses("confirmed", "finding"))
	require.NoError(t, err)

	items[0].Title = "changed by caller"
	entries := d.Entries()
	entries[0].Item.Title = "changed via entries"
	cats := d.Categories()
	cats[0].Items[0].Title = "changed via categories"
	statuses := d.Statuses()
	statuses[0] = "tampered"

	item, ok := d.Item("a1")
	require.True(t, ok)
	assert.Equal(t, "Backup policy", item.Title)
	assert.Equal(t, []model.Status{"confirmed", "finding"}, d.Statuses())
	assert.Equal(t, "docs", d.Title(), "title defaults to name")
}

func TestBuiltin(t *testing.T) {
	t.Parallel()

	defs := Builtin()
	require.Len(t, defs, 2)

	internal := defs[0]
	assert.Equal(t, CROInternal, internal.Name())
	assert.Equal(t, 18, internal.Len())
	assert.Len(t, internal.Categories(), 6)
	assert.True(t, internal.Has("2.3"))

	vendor := defs[1]
	assert.Equal(t, CROVendor, vendor.Name())
	assert.Equal(t, "vendor_audit", vendor.Prefix())
	assert.Equal(t, []model.Status{StatusConfirmed, StatusFinding, StatusNotApplicable}, vendor.Statuses())
	for _, e := range vendor.Entries() {
		assert.Empty(t, e.Category, "flat checklist uses an unnamed category")
		assert.NotEmpty(t, e.Item.Description)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("lookup", func(t *testing.T) {
		t.Parallel()

		r, err := DefaultRegistry()
		require.NoError(t, err)

		d, err := r.Lookup(CROVendor)
		require.NoError(t, err)
		assert.Equal(t, CROVendor, d.Name())

		_, err = r.Lookup("nope")
		assert.ErrorContains(t, err, "unknown checklist")
		assert.Len(t, r.All(), 2)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		t.Parallel()

		extra, err := New(CROInternal, "", []Category{{Items: []Item{{ID: "a", Title: "t"}}}})
		require.NoError(t, err)

		_, err = DefaultRegistry(extra)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}
