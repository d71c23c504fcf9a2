package store

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/user/tootube/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestBackend connects to a local MySQL if one is reachable, skipping
// the test otherwise.
func setupTestBackend(t *testing.T) (*MySQLBackend, func()) {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		host = "localhost"
	}
	user := os.Getenv("TEST_DB_USER")
	if user == "" {
		user = "root"
	}
	password := os.Getenv("TEST_DB_PASSWORD")
	if password == "" {
		password = "root"
	}
	database := os.Getenv("TEST_DB_NAME")
	if database == "" {
		database = "tootube_test"
	}

	cfg := &config.DBConfig{
		Host:     host,
		Port:     3306,
		User:     user,
		Password: password,
		Database: database,
		MaxConns: 5,
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping test: cannot connect to MySQL: %v", err)
	}
	db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database))
	sqlDB, _ := db.DB()
	sqlDB.Close()

	backend, err := NewMySQLBackend(cfg, "test-doc")
	if err != nil {
		t.Skipf("Skipping test: cannot create backend: %v", err)
	}

	cleanup := func() {
		backend.db.Exec("DELETE FROM snapshot_documents")
		backend.Close()
	}
	return backend, cleanup
}

func TestMySQLBackend_LoadMissingDocument(t *testing.T) {
	backend, cleanup := setupTestBackend(t)
	defer cleanup()

	raw, err := backend.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if raw != nil {
		t.Errorf("Load() = %q, want nil for missing document", raw)
	}
}

func TestMySQLBackend_SaveAndReload(t *testing.T) {
	backend, cleanup := setupTestBackend(t)
	defer cleanup()
	ctx := context.Background()

	first := []byte(`{"videos":[],"users":[],"comments":[],"subscriptions":[]}`)
	if err := backend.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	raw, err := backend.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(raw) != string(first) {
		t.Errorf("Load() = %q, want %q", raw, first)
	}

	// Second save replaces the document in place.
	second := []byte(`{"videos":[{"id":"v1"}],"users":[],"comments":[],"subscriptions":[]}`)
	if err := backend.Save(ctx, second); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	raw, err = backend.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(raw) != string(second) {
		t.Errorf("Load() after overwrite = %q, want %q", raw, second)
	}
}
