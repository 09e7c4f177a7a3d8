package models

// All lists every persisted model, in dependency order, for AutoMigrate in
// tests. Production schemas come from the goose migrations.
func All() []any {
	return []any{
		&Product{},
		&UserCart{},
		&Order{},
		&Visit{},
		&VisitSlot{},
		&OutboxEvent{},
	}
}
