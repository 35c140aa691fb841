package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RequestEvent records one call to the practice service.
type RequestEvent struct {
	ent.Schema
}

func (RequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (RequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("request_id").
			Comment("X-Request-ID sent with the call"),
		field.String("operation").
			Comment("Service operation: list-topics, start-session, submit-answer, ..."),
		field.String("method"),
		field.String("path"),
		field.Int("status_code").
			Default(0).
			Comment("HTTP status, zero when no response arrived"),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
	}
}

func (RequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("operation"),
		index.Fields("success"),
	}
}
