package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresJournal implements Journal using PostgreSQL.
type PostgresJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresJournal creates a new PostgreSQL journal.
func NewPostgresJournal(cfg *PostgresConfig) (*PostgresJournal, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-journal-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresJournal{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// RecordUpdate inserts one reconciliation record.
func (p *PostgresJournal) RecordUpdate(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO inventory_updates (
			id, product_id, variant_id, price, quantity,
			created_count, updated_count, deleted_count, failed_count,
			errors, recorded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		record.ID,
		record.ProductID,
		record.VariantID,
		record.Price,
		record.Quantity,
		record.Created,
		record.Updated,
		record.Deleted,
		record.Failed,
		record.Errors,
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert update record: %w", err)
	}

	p.logger.Debug("update-recorded",
		zap.String("record-id", record.ID),
		zap.String("variant-id", record.VariantID))

	return nil
}

// Close closes the database connection.
func (p *PostgresJournal) Close() error {
	p.logger.Info("closing-postgres-journal")
	return p.db.Close()
}
