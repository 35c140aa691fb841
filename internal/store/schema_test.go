package store

import (
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/stretchr/testify/assert"

	entschema "github.com/AMANN-N/smart-practice/ent/schema"
)

func TestTablesMatchEntSchema(t *testing.T) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range (entschema.RequestEvent{}).Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, entschema.RequestEvent{}.Fields()...)
	indexes = append(indexes, entschema.RequestEvent{}.Indexes()...)

	// The id column is implicit in ent.
	cols := RequestEventsColumns[1:]
	if assert.Len(t, cols, len(fields)) {
		for i, f := range fields {
			d := f.Descriptor()
			assert.Equal(t, d.Name, cols[i].Name)
			assert.Equal(t, d.Info.Type, cols[i].Type, d.Name)
			assert.Equal(t, d.Unique, cols[i].Unique, d.Name)
		}
	}
	assert.Equal(t, requestEventColumns[1:], columnNames(cols))

	var want, got []string
	for _, idx := range indexes {
		want = append(want, idx.Descriptor().Fields...)
	}
	for _, idx := range RequestEventsTable.Indexes {
		got = append(got, idx.Columns[0].Name)
	}
	assert.ElementsMatch(t, want, got)
}

func columnNames(cols []*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
