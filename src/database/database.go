package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/dealfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateDealsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS deals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		view TEXT NOT NULL,
		owner TEXT NOT NULL,
		company TEXT,
		stage TEXT NOT NULL,
		source_type TEXT,
		pipeline_value REAL,
		discovery_date TEXT,
		input_string TEXT,
		hash_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(view, hash_id)
	);

	CREATE INDEX IF NOT EXISTS idx_deals_view ON deals(view);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateDealsTable adds columns introduced after the first release to an
// existing deals table.
func migrateDealsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='deals'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			return // table will be created with the full schema
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'deals' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'deals' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(deals)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'deals'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'deals': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'deals'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'deals': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'deals'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'deals': %v", err)
		}
		return
	}

	if _, ok := columnExists["company"]; !ok {
		if _, err := DB.Exec("ALTER TABLE deals ADD COLUMN company TEXT"); err != nil {
			logger.L.Error("Error adding 'company' column to 'deals' table", "error", err)
		} else {
			logger.L.Info("Added 'company' column to 'deals' table")
		}
	}
	if _, ok := columnExists["input_string"]; !ok {
		if _, err := DB.Exec("ALTER TABLE deals ADD COLUMN input_string TEXT"); err != nil {
			logger.L.Error("Error adding 'input_string' column to 'deals' table", "error", err)
		} else {
			logger.L.Info("Added 'input_string' column to 'deals' table")
		}
	}
}
