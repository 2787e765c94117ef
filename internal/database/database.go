package database

import (
	"fmt"
	"log"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.Transfer{},
		&models.IdempotencyRecord{},
		&models.FixedDeposit{},
		&models.CreditCard{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_number ON accounts(number)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_status ON accounts(status)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_kind ON accounts(kind)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_closed_at ON accounts(closed_at) WHERE closed_at IS NOT NULL",
		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(reference)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)",
		// Transfer indexes
		"CREATE INDEX IF NOT EXISTS idx_transfers_from_account_id ON transfers(from_account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_to_account_id ON transfers(to_account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_reference ON transfers(reference)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers(created_at)",
		// Idempotency indexes
		"CREATE INDEX IF NOT EXISTS idx_idempotency_records_created_at ON idempotency_records(created_at)",
		// Fixed deposit indexes
		"CREATE INDEX IF NOT EXISTS idx_fixed_deposits_user_id ON fixed_deposits(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_fixed_deposits_status ON fixed_deposits(status)",
		"CREATE INDEX IF NOT EXISTS idx_fixed_deposits_maturity_date ON fixed_deposits(maturity_date)",
		// Credit card indexes
		"CREATE INDEX IF NOT EXISTS idx_credit_cards_user_id ON credit_cards(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_credit_cards_account_id ON credit_cards(account_id)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// CleanupIdempotencyRecords deletes receipts older than the retention window.
// Replays older than the window re-execute, which is safe because the ledger
// entries they would duplicate still carry the original reference.
func (db *DB) CleanupIdempotencyRecords(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	if err := db.DB.Where("created_at < ?", cutoff).
		Delete(&models.IdempotencyRecord{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup idempotency records: %w", err)
	}
	return nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Get the underlying sql.DB for migration runner
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Run SQL-based migrations using golang-migrate if enabled
	if err := RunMigrationsIfEnabled(sqlDB); err != nil {
		log.Printf("Warning: migration runner failed: %v", err)
		log.Println("Falling back to GORM AutoMigrate...")

		// Fallback to GORM AutoMigrate
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	log.Println("Database initialized successfully")

	return db.DB, nil
}
