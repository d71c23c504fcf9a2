package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %v, want 3000", cfg.Server.Port)
	}
	if cfg.Server.WriteRateLimit != 50 {
		t.Errorf("Server.WriteRateLimit = %v, want 50", cfg.Server.WriteRateLimit)
	}
	if cfg.Data.Backend != DataBackendFile {
		t.Errorf("Data.Backend = %v, want file", cfg.Data.Backend)
	}
	if cfg.Data.File != "data.json" {
		t.Errorf("Data.File = %v, want data.json", cfg.Data.File)
	}
	if cfg.DB.Host != "localhost" {
		t.Errorf("DB.Host = %v, want localhost", cfg.DB.Host)
	}
	if cfg.DB.Port != 3306 {
		t.Errorf("DB.Port = %v, want 3306", cfg.DB.Port)
	}
	if cfg.Blob.Backend != BlobBackendFS {
		t.Errorf("Blob.Backend = %v, want fs", cfg.Blob.Backend)
	}
	if cfg.Blob.Dir != "uploads" {
		t.Errorf("Blob.Dir = %v, want uploads", cfg.Blob.Dir)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("SERVER_PORT", "8080")
	os.Setenv("DATA_BACKEND", "mysql")
	os.Setenv("DB_PASSWORD", "secret")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DATA_BACKEND")
		os.Unsetenv("DB_PASSWORD")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %v, want 8080", cfg.Server.Port)
	}
	if cfg.Data.Backend != DataBackendMySQL {
		t.Errorf("Data.Backend = %v, want mysql", cfg.Data.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad rate limit", func(c *Config) { c.Server.WriteRateLimit = -1 }, true},
		{"bad upload cap", func(c *Config) { c.Server.MaxUploadBytes = 0 }, true},
		{"unknown data backend", func(c *Config) { c.Data.Backend = "etcd" }, true},
		{"mysql without password", func(c *Config) { c.Data.Backend = DataBackendMySQL }, true},
		{"mysql with password", func(c *Config) {
			c.Data.Backend = DataBackendMySQL
			c.DB.Password = "pw"
		}, false},
		{"file backend without path", func(c *Config) { c.Data.File = "" }, true},
		{"unknown blob backend", func(c *Config) { c.Blob.Backend = "ftp" }, true},
		{"minio without credentials", func(c *Config) { c.Blob.Backend = BlobBackendMinio }, true},
		{"minio with credentials", func(c *Config) {
			c.Blob.Backend = BlobBackendMinio
			c.Blob.AccessKey = "ak"
			c.Blob.SecretKey = "sk"
		}, false},
	}
	for _, tc := range cases {
		cfg := base()
		tc.mutate(cfg)
		err := cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestDSN(t *testing.T) {
	cfg := &DBConfig{Host: "db", Port: 3307, User: "app", Password: "pw", Database: "tootube"}
	want := "app:pw@tcp(db:3307)/tootube?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
