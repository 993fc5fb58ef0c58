package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sales (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    order_id TEXT NOT NULL,
    customer_name TEXT NOT NULL,
    product TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity >= 1),
    price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
    date DATE NOT NULL,
    CONSTRAINT uniq_sale UNIQUE (order_id, customer_name, product, date)
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date DESC, order_id ASC);
`

// InitSchema creates the sales table and its indexes if they do not
// exist. Called once at startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
