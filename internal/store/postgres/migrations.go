package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/tenantschema/internal/schema"
)

// Connector adapts a pgx pool to schema.Connector.
type Connector struct {
	pool *pgxpool.Pool
}

// NewConnector creates a connector that draws connections from pool.
func NewConnector(pool *pgxpool.Pool) *Connector {
	return &Connector{pool: pool}
}

// Acquire takes a dedicated connection out of the pool.
func (c *Connector) Acquire(ctx context.Context) (schema.Conn, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &poolConn{conn: conn}, nil
}

type poolConn struct {
	conn *pgxpool.Conn
}

func (c *poolConn) Exec(ctx context.Context, sql string) error {
	_, err := c.conn.Exec(ctx, sql)
	return err
}

func (c *poolConn) Release() {
	c.conn.Release()
}

// Migrate applies the default schema plan using a connection from pool.
// Statements are CREATE TABLE IF NOT EXISTS, so no migration history is kept.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (*schema.Report, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}

	b := schema.New(NewConnector(pool),
		schema.WithLogger(logger),
		schema.WithClassifier(ClassifyError),
	)

	return b.Run(ctx)
}
