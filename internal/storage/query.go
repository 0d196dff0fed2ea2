// ABOUTME: Sorted and full-text record queries returning lazy, restartable sequences.
// ABOUTME: Nothing touches the database until a sequence is iterated.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"
	"unicode"

	"github.com/harperreed/fitlog/internal/models"
)

// SortOrder is the direction of a FindMany result.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder maps user input to a SortOrder. Empty and "desc" are
// descending; anything else is ascending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc
	}
	return SortAsc
}

// DefaultSortField is used when a query names no sort field or an unknown one.
const DefaultSortField = "created_at"

// sortColumns maps accepted sort_by values to SQL expressions.
// Macros are numeric text and sort numerically.
var sortColumns = map[string]string{
	"created_at":          "r.created_at",
	"date":                "r.occurred_at",
	"occurred_at":         "r.occurred_at",
	"meal_name":           "r.meal_name",
	"description":         "r.description",
	"workout_description": "r.description",
	"workout_type":        "r.workout_type",
	"calories":            "CAST(r.calories AS REAL)",
	"protein":             "CAST(r.protein AS REAL)",
	"carbohydrates":       "CAST(r.carbohydrates AS REAL)",
	"fat":                 "CAST(r.fat AS REAL)",
}

// Query selects records for FindMany.
type Query struct {
	Kind   models.Kind // empty selects every kind
	Owner  string
	Text   string // full-text search over description and meal_name
	SortBy string
	Order  SortOrder

	// From and To bound occurred_at to [From, To). Zero values leave that side open.
	From time.Time
	To   time.Time
}

// Records is a lazy, finite, restartable sequence of query results.
// Every iteration runs the query again.
type Records struct {
	db    *DB
	query string
	args  []any
	empty bool
}

// FindMany returns the owner's records of q.Kind, optionally restricted by a
// full-text match, ordered by q.SortBy in q.Order.
func (d *DB) FindMany(q Query) *Records {
	where := []string{"r.owner = ?"}
	args := []any{q.Owner}

	if q.Kind != "" {
		where = append(where, "r.kind = ?")
		args = append(args, string(q.Kind))
	}

	if !q.From.IsZero() {
		where = append(where, "r.occurred_at >= ?")
		args = append(args, formatTime(q.From))
	}
	if !q.To.IsZero() {
		where = append(where, "r.occurred_at < ?")
		args = append(args, formatTime(q.To))
	}

	if strings.TrimSpace(q.Text) != "" {
		match := matchExpression(q.Text)
		if match == "" {
			return &Records{db: d, empty: true}
		}
		where = append(where, "r.seq IN (SELECT rowid FROM records_fts WHERE records_fts MATCH ?)")
		args = append(args, match)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[DefaultSortField]
	}
	dir := "DESC"
	if q.Order == SortAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM records r WHERE %s ORDER BY %s %s, r.seq %s`,
		recordColumns, strings.Join(where, " AND "), column, dir, dir)

	return &Records{db: d, query: query, args: args}
}

// ListAll returns every record the owner has, newest first.
func (d *DB) ListAll(owner string) *Records {
	return d.FindMany(Query{Owner: owner, SortBy: DefaultSortField, Order: SortDesc})
}

// matchExpression turns free text into an FTS5 query that ORs each quoted term.
func matchExpression(text string) string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, t := range terms {
		terms[i] = `"` + t + `"`
	}
	return strings.Join(terms, " OR ")
}

// Cursor opens the query and returns a cursor over its rows.
func (rs *Records) Cursor(ctx context.Context) (*Cursor, error) {
	if rs.empty {
		return &Cursor{}, nil
	}
	rows, err := rs.db.db.QueryContext(ctx, rs.query, rs.args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return &Cursor{rows: rows}, nil
}

// All iterates the sequence. A failure is yielded once as a non-nil error.
func (rs *Records) All(ctx context.Context) iter.Seq2[*models.Record, error] {
	return func(yield func(*models.Record, error) bool) {
		c, err := rs.Cursor(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		defer c.Close()

		for c.Next() {
			if !yield(c.Record(), nil) {
				return
			}
		}
		if err := c.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Collect materializes the sequence.
func (rs *Records) Collect(ctx context.Context) ([]*models.Record, error) {
	var out []*models.Record
	for rec, err := range rs.All(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Cursor walks query results one record at a time.
type Cursor struct {
	rows *sql.Rows
	cur  *models.Record
	err  error
}

// Next advances to the next record, reporting false at the end or on error.
func (c *Cursor) Next() bool {
	if c.rows == nil || c.err != nil {
		return false
	}
	if !c.rows.Next() {
		return false
	}
	rec, err := scanRecord(c.rows)
	if err != nil {
		c.err = err
		return false
	}
	c.cur = rec
	return true
}

// Record returns the record Next moved to.
func (c *Cursor) Record() *models.Record {
	return c.cur
}

// Err returns the first error met while iterating.
func (c *Cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if c.rows == nil {
		return nil
	}
	return c.rows.Err()
}

// Close releases the underlying rows.
func (c *Cursor) Close() error {
	if c.rows == nil {
		return nil
	}
	return c.rows.Close()
}
