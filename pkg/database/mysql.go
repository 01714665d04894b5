package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Infof("Connected to MySQL database")
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	execution_id CHAR(36) NOT NULL,
	item_index INT NOT NULL,
	operation VARCHAR(20) NOT NULL,
	success BOOLEAN NOT NULL,
	message_id VARCHAR(100),
	attempts INT NOT NULL DEFAULT 0,
	error TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_executions_execution_id (execution_id),
	INDEX idx_executions_created_at (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`

func RunMigrations(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infof("Database migrations completed")

	return nil
}
