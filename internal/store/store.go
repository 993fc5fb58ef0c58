// Package store is the Postgres-backed record store for sales.
//
// The sales table carries a composite uniqueness constraint on
// (order_id, customer_name, product, date). Inserts are idempotent:
// a duplicate submission is detected and skipped, never overwritten
// and never treated as a failure.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salesrecords/salesd/internal/sale"
)

// ErrNotFound is returned when no sale exists for a requested id.
var ErrNotFound = errors.New("sale not found")

// SearchLimit caps the number of rows returned by Search and List.
const SearchLimit = 100

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// Store provides sale record persistence on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store using the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertOrSkip inserts a record unless a row with the same uniqueness
// key already exists. Returns true when a row was created, false when
// the record was a duplicate. Duplicates are an expected outcome, not
// an error.
func (s *Store) InsertOrSkip(ctx context.Context, rec sale.Record) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO sales (order_id, customer_name, product, quantity, price, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT uniq_sale DO NOTHING`,
		rec.OrderID, rec.CustomerName, rec.Product, rec.Quantity, rec.Price, rec.Date,
	)
	if err != nil {
		// A concurrent writer can still race the ON CONFLICT clause in
		// odd isolation setups; fold it into the duplicate outcome.
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert sale: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const searchSQL = `
	SELECT id, order_id, customer_name, product, quantity, price, date
	FROM sales
	WHERE order_id ILIKE $1 OR customer_name ILIKE $1 OR product ILIKE $1
	ORDER BY date DESC, order_id ASC
	LIMIT $2`

const listSQL = `
	SELECT id, order_id, customer_name, product, quantity, price, date
	FROM sales
	ORDER BY date DESC, order_id ASC`

// Search returns records whose order_id, customer_name, or product
// contains the query as a case-insensitive substring. An empty query
// matches every record. Results are ordered by date descending then
// order_id ascending and capped at SearchLimit.
func (s *Store) Search(ctx context.Context, query string) ([]sale.Record, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	rows, err := s.pool.Query(ctx, searchSQL, pattern, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search sales: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// List returns every record in the store's default ordering. The cap
// belongs to the search endpoint only; the listing is uncapped.
func (s *Store) List(ctx context.Context) ([]sale.Record, error) {
	rows, err := s.pool.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Update applies a partial update to the sale with the given id. Only
// fields present in the mapping are touched, and each present field is
// validated with the strict submission-time rules. If any field fails,
// nothing is persisted and all collected errors are returned together.
// A uniqueness conflict surfaced by the write is rolled back and
// reported as a single non-field error.
//
// The returned FieldErrors is nil when the update was persisted.
func (s *Store) Update(ctx context.Context, id int64, fields map[string]string) (sale.FieldErrors, error) {
	sets, args, ferrs := buildUpdate(fields)
	if !ferrs.Empty() {
		return ferrs, nil
	}
	if len(sets) == 0 {
		// Nothing to apply; still distinguish a missing row.
		return nil, s.exists(ctx, id)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE sales SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			ferrs = sale.FieldErrors{}
			ferrs.Add(sale.NonFieldKey, "a sale with these values already exists")
			return ferrs, nil
		}
		return nil, fmt.Errorf("update sale %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return nil, nil
}

// Delete removes the sale with the given id. Deleting a missing id
// reports ErrNotFound, not a silent success.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, id int64) error {
	var found int64
	err := s.pool.QueryRow(ctx, `SELECT id FROM sales WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup sale %d: %w", id, err)
	}
	return nil
}

// buildUpdate validates the supplied fields and produces SET clauses
// with positional args. All errors are collected so the caller can
// report them exhaustively.
func buildUpdate(fields map[string]string) ([]string, []any, sale.FieldErrors) {
	ferrs := sale.FieldErrors{}
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	for _, field := range []string{"order_id", "customer_name", "product"} {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		v, err := sale.RequireText(raw)
		if err != nil {
			ferrs.Add(field, err.Error())
			continue
		}
		add(field, v)
	}

	if raw, ok := fields["quantity"]; ok {
		if q, err := sale.ParseQuantity(raw); err != nil {
			ferrs.Add("quantity", err.Error())
		} else {
			add("quantity", q)
		}
	}
	if raw, ok := fields["price"]; ok {
		if p, err := sale.ParsePrice(raw); err != nil {
			ferrs.Add("price", err.Error())
		} else {
			add("price", p)
		}
	}
	if raw, ok := fields["date"]; ok {
		if d, err := sale.ParseDate(raw); err != nil {
			ferrs.Add("date", err.Error())
		} else {
			add("date", d)
		}
	}

	if !ferrs.Empty() {
		return nil, nil, ferrs
	}
	return sets, args, ferrs
}

func scanRecords(rows pgx.Rows) ([]sale.Record, error) {
	var records []sale.Record
	for rows.Next() {
		var r sale.Record
		if err := rows.Scan(&r.ID, &r.OrderID, &r.CustomerName, &r.Product, &r.Quantity, &r.Price, &r.Date); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// escapeLike neutralizes LIKE wildcards in user input so the query is
// matched as a literal substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
