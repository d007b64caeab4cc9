package models

// All lists every model managed by AutoMigrate, parents before children.
func All() []any {
	return []any{
		&Quote{},
		&QuoteLine{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
