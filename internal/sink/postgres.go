package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/cimflat/internal/retry"
	"github.com/vvka-141/cimflat/internal/table"
	"github.com/vvka-141/cimflat/pkg/cimflat"
)

// ErrNotOpen is returned by PostgresSink.Write before Open succeeded.
var ErrNotOpen = errors.New("postgres sink is not open")

// PostgresSink loads each table into <schema>."<Class>" with one text column
// per table column. A table is replaced as a whole inside one transaction;
// absent cells are NULL. Transient failures are retried.
type PostgresSink struct {
	connector cimflat.Connector
	schema    string
	logger    cimflat.Logger
	executor  *retry.Executor

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgres creates a sink that connects through connector on Open.
func NewPostgres(connector cimflat.Connector, schema string, logger cimflat.Logger) *PostgresSink {
	executor := retry.NewPostgreSQLExecutor().WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("postgres: attempt %d failed, retrying in %v: %v", attempt+1, delay, err)
	})
	return &PostgresSink{
		connector: connector,
		schema:    schema,
		logger:    logger,
		executor:  executor,
	}
}

func (s *PostgresSink) Name() string { return "postgres" }

// Open connects and creates the schema when missing.
func (s *PostgresSink) Open(ctx context.Context) error {
	pool, err := s.connector.Connect(ctx)
	if err != nil {
		return err
	}

	err = s.executor.Execute(ctx, func(ctx context.Context) error {
		_, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{s.schema}.Sanitize())
		return err
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("create schema %s: %w", s.schema, err)
	}

	s.mu.Lock()
	s.pool = pool
	s.mu.Unlock()
	return nil
}

// Close releases the pool and, for connectors holding resources, the connector.
func (s *PostgresSink) Close() error {
	s.mu.Lock()
	pool := s.pool
	s.pool = nil
	s.mu.Unlock()

	if pool != nil {
		pool.Close()
	}
	if c, ok := s.connector.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, t *table.Table) (Report, error) {
	s.mu.Lock()
	pool := s.pool
	s.mu.Unlock()
	if pool == nil {
		return Report{}, ErrNotOpen
	}

	name := Identifier(t.Name)
	columns, shortened := Identifiers(t.Columns)
	if shortened || name != t.Name {
		s.logger.Verbose("postgres: shortened identifiers of %s to %d bytes", t.Name, cimflat.MaxIdentifierLength)
	}
	if err := checkUnique(columns); err != nil {
		return Report{}, fmt.Errorf("table %s: %w", t.Name, err)
	}

	target := pgx.Identifier{s.schema, name}
	var copied int64
	err := s.executor.Execute(ctx, func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+target.Sanitize()); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, createTableSQL(target, columns)); err != nil {
				return err
			}
			n, err := tx.CopyFrom(ctx, target, columns, pgx.CopyFromSlice(t.Len(), func(i int) ([]any, error) {
				return t.Values(i), nil
			}))
			copied = n
			return err
		})
	})
	if err != nil {
		return Report{}, fmt.Errorf("load %s: %w", target.Sanitize(), err)
	}

	return Report{Sink: s.Name(), Table: t.Name, Rows: int(copied), Location: target.Sanitize()}, nil
}

func createTableSQL(target pgx.Identifier, columns []string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(target.Sanitize())
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c}.Sanitize())
		b.WriteString(" text")
	}
	b.WriteString(")")
	return b.String()
}

func checkUnique(columns []string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("duplicate column %q after shortening", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
