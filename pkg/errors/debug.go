package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorReport is the loggable breakdown of a failed request. Postgres
// driver details are pulled out so schema violations (duplicate SKU,
// missing categoria FK) can be read straight from the log line.
type ErrorReport struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Describe walks the wrap chain of err and builds its report.
func Describe(err error) ErrorReport {
	if err == nil {
		return ErrorReport{}
	}

	report := ErrorReport{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		report.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		report.Chain = append(report.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	report.attachPostgres(err)
	return report
}

// LogFields flattens the report for the structured logger.
func (r ErrorReport) LogFields() map[string]any {
	return map[string]any{
		"error":         r.TopMessage,
		"error_code":    r.Code,
		"error_chain":   r.Chain,
		"pg_code":       r.PGCode,
		"pg_detail":     r.PGDetail,
		"pg_message":    r.PGMessage,
		"pg_table":      r.PGTable,
		"pg_column":     r.PGColumn,
		"pg_constraint": r.PGConstraint,
	}
}

// Both drivers can surface depending on the code path: gorm rides pgx
// while goose migrations ride lib/pq.
func (r *ErrorReport) attachPostgres(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		r.PGCode = pgxErr.Code
		r.PGConstraint = pgxErr.ConstraintName
		r.PGTable = pgxErr.TableName
		r.PGColumn = pgxErr.ColumnName
		r.PGDetail = pgxErr.Detail
		r.PGMessage = pgxErr.Message
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		r.PGCode = string(pqErr.Code)
		r.PGConstraint = pqErr.Constraint
		r.PGTable = pqErr.Table
		r.PGColumn = pqErr.Column
		r.PGDetail = pqErr.Detail
		r.PGMessage = pqErr.Message
	}
}
