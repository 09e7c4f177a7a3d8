package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Diagnostics is the log-only view of a failure. It is never rendered to
// clients.
type Diagnostics struct {
	Message string
	Code    Code
	Chain   []string

	Postgres *PostgresDiagnostics
}

// PostgresDiagnostics carries the server-side fields of a driver error,
// whichever driver produced it.
type PostgresDiagnostics struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
}

// Describe walks the wrap chain of err. Both pgx and lib/pq errors are
// recognised since gorm's postgres driver and goose use different drivers.
func Describe(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}

	diag := Diagnostics{Message: err.Error(), Code: CodeInternal}
	if typed := As(err); typed != nil {
		diag.Code = typed.Code()
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		diag.Chain = append(diag.Chain, fmt.Sprintf("%T: %v", cur, cur))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		diag.Postgres = &PostgresDiagnostics{
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
		}
	case errors.As(err, &pqErr):
		diag.Postgres = &PostgresDiagnostics{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
		}
	}
	return diag
}

// Fields flattens the diagnostics into structured log fields.
func (d Diagnostics) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if pg := d.Postgres; pg != nil {
		fields["pg_sqlstate"] = pg.SQLState
		fields["pg_constraint"] = pg.Constraint
		fields["pg_table"] = pg.Table
		fields["pg_column"] = pg.Column
		fields["pg_detail"] = pg.Detail
	}
	return fields
}
