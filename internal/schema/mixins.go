package schema

import (
	"entgo.io/ent/dialect"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// idColumn is the UUIDv7 primary key every table starts with. Values are
// generated by the store, so time order and insertion order agree.
func idColumn() *entschema.Column {
	return &entschema.Column{Name: "id", Type: field.TypeUUID}
}

// timestampColumns are created_at and updated_at, both set by the store.
func timestampColumns() []*entschema.Column {
	return []*entschema.Column{
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
}

// moneyColumn holds an exact decimal: numeric on postgres, text on sqlite so
// that no float affinity ever touches the value.
func moneyColumn(name string) *entschema.Column {
	return &entschema.Column{
		Name: name,
		Type: field.TypeOther,
		SchemaType: map[string]string{
			dialect.Postgres: "numeric(10,2)",
			dialect.SQLite:   "text",
		},
	}
}

// enumColumn stores enum values as strings. An empty def means no default.
func enumColumn(name string, values []string, def string) *entschema.Column {
	c := &entschema.Column{Name: name, Type: field.TypeEnum, Enums: values}
	if def != "" {
		c.Default = def
	}
	return c
}

func fkColumn(name string) *entschema.Column {
	return &entschema.Column{Name: name, Type: field.TypeUUID}
}

func withTimestamps(cols ...*entschema.Column) []*entschema.Column {
	return append(cols, timestampColumns()...)
}

func columnByName(t *entschema.Table, name string) *entschema.Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	panic("schema: table " + t.Name + " has no column " + name)
}

// cascade builds an ON DELETE CASCADE foreign key from t.col to ref.id.
func cascade(t *entschema.Table, col string, ref *entschema.Table) *entschema.ForeignKey {
	return &entschema.ForeignKey{
		Symbol:     t.Name + "_" + ref.Name + "_" + col,
		Columns:    []*entschema.Column{columnByName(t, col)},
		RefTable:   ref,
		RefColumns: []*entschema.Column{columnByName(ref, "id")},
		OnDelete:   entschema.Cascade,
	}
}
