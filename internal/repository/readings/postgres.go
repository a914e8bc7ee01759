package readings

import (
	"context"
	"database/sql"
	"fmt"

	// Register the postgres driver.
	_ "github.com/lib/pq"

	"github.com/oshokin/greenhouse-monitor/internal/domain/greenhouse"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS greenhouse_readings (
			id          BIGSERIAL PRIMARY KEY,
			unit        TEXT             NOT NULL,
			recorded_at TIMESTAMPTZ      NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity    DOUBLE PRECISION NOT NULL,
			pressure    DOUBLE PRECISION NOT NULL
		)`

	insertReadingQuery = `
		INSERT INTO greenhouse_readings (unit, recorded_at, temperature, humidity, pressure)
		VALUES ($1, $2, $3, $4, $5)`

	maxOpenConns = 4
	maxIdleConns = 2
)

// Postgres inserts readings into the greenhouse_readings table.
type Postgres struct {
	db   *sql.DB
	unit string
}

// ConnectPostgres opens the database, checks connectivity and creates the
// table if needed.
func ConnectPostgres(ctx context.Context, dsn, unit string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)

	if _, err = db.ExecContext(ctx, createTableQuery); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create readings table: %w", err)
	}

	return &Postgres{db: db, unit: unit}, nil
}

// Append inserts one reading.
func (p *Postgres) Append(ctx context.Context, reading greenhouse.Reading) error {
	_, err := p.db.ExecContext(ctx, insertReadingQuery,
		p.unit,
		reading.Timestamp.UTC(),
		reading.Temperature,
		reading.Humidity,
		reading.Pressure,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
