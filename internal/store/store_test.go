package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type doc struct{ id string }

func TestOrderByIDs(t *testing.T) {
	docs := []doc{{"b"}, {"c"}, {"a"}}
	got := OrderByIDs([]string{"a", "missing", "b", "c"}, docs, func(d *doc) string { return d.id })
	assert.Equal(t, []doc{{"a"}, {"b"}, {"c"}}, got)
}

func TestRefHelpers(t *testing.T) {
	refs := AddRef(nil, "1")
	refs = AddRef(refs, "2")
	refs = AddRef(refs, "1")
	assert.Equal(t, []string{"1", "2"}, refs)

	refs = RemoveRef(refs, "1")
	assert.Equal(t, []string{"2"}, refs)
	assert.Empty(t, RemoveRef(refs, "2"))
}

func TestQueryBuilderDoesNotAlias(t *testing.T) {
	base := Q().Where("status", "approved")
	a := base.Where("owner_id", "a")
	b := base.Where("owner_id", "b")

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "a", a.Filters[1].Value)
	assert.Equal(t, "b", b.Filters[1].Value)
}
