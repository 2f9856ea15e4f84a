package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// RetryDelay is the pause between attempts of a failed statement.
var RetryDelay = 1 * time.Second

// {{id}} is replaced with the dialect's auto-increment primary key.
var tables = []struct {
	name  string
	query string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id {{id}},
			name VARCHAR(255),
			email VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_users_email UNIQUE (email)
		)`},
	{"templates", `
		CREATE TABLE IF NOT EXISTS templates (
			id {{id}},
			title VARCHAR(255),
			description TEXT,
			price DECIMAL(10,2),
			category VARCHAR(100),
			type VARCHAR(100),
			style VARCHAR(100),
			image_url VARCHAR(500),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`},
	{"template_features", `
		CREATE TABLE IF NOT EXISTS template_features (
			id {{id}},
			template_id INTEGER NOT NULL,
			feature_name VARCHAR(255) NOT NULL,
			FOREIGN KEY (template_id) REFERENCES templates(id)
		)`},
	{"template_tech_stack", `
		CREATE TABLE IF NOT EXISTS template_tech_stack (
			id {{id}},
			template_id INTEGER NOT NULL,
			tech_name VARCHAR(255) NOT NULL,
			FOREIGN KEY (template_id) REFERENCES templates(id)
		)`},
	{"purchases", `
		CREATE TABLE IF NOT EXISTS purchases (
			id {{id}},
			user_id INTEGER NOT NULL,
			template_id INTEGER NOT NULL,
			purchased_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_purchases_user_template UNIQUE (user_id, template_id),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (template_id) REFERENCES templates(id)
		)`},
	{"bank_info", `
		CREATE TABLE IF NOT EXISTS bank_info (
			id {{id}},
			bank_name VARCHAR(255),
			account_number VARCHAR(100),
			account_name VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`},
}

func primaryKey(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "INT AUTO_INCREMENT PRIMARY KEY", nil
	case "sqlite":
		return "INTEGER PRIMARY KEY AUTOINCREMENT", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// AutoMigrate creates every table that does not exist yet, in foreign key order.
func AutoMigrate(ctx context.Context, db *sql.DB, driver string, retries int) error {
	pk, err := primaryKey(driver)
	if err != nil {
		return err
	}

	for _, table := range tables {
		query := strings.ReplaceAll(table.query, "{{id}}", pk)
		_, err := db.ExecContext(ctx, query)
		// Retry creating the table
		for i := 0; err != nil && i < retries; i++ {
			time.Sleep(RetryDelay)
			_, err = db.ExecContext(ctx, query)
		}
		if err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", table.name, err)
		}
	}
	return nil
}
