package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// OpenMemory opens a private in-memory sqlite database. Its contents live as
// long as the returned handle; each call gets a distinct database.
func OpenMemory() (*sql.DB, error) {
	name := "jasktodo-" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// the database disappears when its last connection closes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMigrated opens an in-memory database with the task schema applied.
func OpenMigrated() (*sql.DB, error) {
	db, err := OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
