package configfile

import (
	"path/filepath"
	"testing"
)

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil for missing file, got %+v", cfg)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected config")
	}
	if loaded.Database != "trackd.db" || loaded.Backend != BackendSQLite || loaded.Version != "1.2.3" {
		t.Errorf("roundtrip mismatch: %+v", loaded)
	}
}

func TestDatabasePath(t *testing.T) {
	tests := []struct {
		name     string
		database string
		want     string
	}{
		{"relative", "trackd.db", filepath.Join(".trackd", "trackd.db")},
		{"empty defaults", "", filepath.Join(".trackd", "trackd.db")},
		{"whitespace defaults", "   ", filepath.Join(".trackd", "trackd.db")},
		{"absolute wins", "/var/lib/trackd/trackd.db", "/var/lib/trackd/trackd.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Database: tt.database}
			if got := c.DatabasePath(".trackd"); got != tt.want {
				t.Errorf("DatabasePath(%q) = %q, want %q", tt.database, got, tt.want)
			}
		})
	}
}

func TestGetBackend(t *testing.T) {
	if got := (&Config{}).GetBackend(); got != BackendSQLite {
		t.Errorf("empty backend should default to sqlite, got %q", got)
	}
	if got := (&Config{Backend: BackendMemory}).GetBackend(); got != BackendMemory {
		t.Errorf("expected memory, got %q", got)
	}
}
