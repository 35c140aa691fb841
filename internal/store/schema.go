package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// RequestEventsColumns holds the columns for the "request_events" table.
	RequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "recorded_at", Type: field.TypeInt64},
		{Name: "request_id", Type: field.TypeString},
		{Name: "operation", Type: field.TypeString},
		{Name: "method", Type: field.TypeString},
		{Name: "path", Type: field.TypeString},
		{Name: "status_code", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	// RequestEventsTable holds the schema information for the "request_events" table.
	RequestEventsTable = &schema.Table{
		Name:       "request_events",
		Columns:    RequestEventsColumns,
		PrimaryKey: []*schema.Column{RequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "requestevent_recorded_at",
				Unique:  false,
				Columns: []*schema.Column{RequestEventsColumns[2]},
			},
			{
				Name:    "requestevent_operation",
				Unique:  false,
				Columns: []*schema.Column{RequestEventsColumns[4]},
			},
			{
				Name:    "requestevent_success",
				Unique:  false,
				Columns: []*schema.Column{RequestEventsColumns[9]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		RequestEventsTable,
	}
)
