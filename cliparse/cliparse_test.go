// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("API_KEY_SALT", "test-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected default database type postgres, got %s", cfg.DatabaseType)
	}
	if cfg.CheckInterval != time.Hour {
		t.Errorf("expected default check interval 1h, got %s", cfg.CheckInterval)
	}
	if len(cfg.AlertThresholds) != 4 || cfg.AlertThresholds[0] != 30 {
		t.Errorf("expected default thresholds 30,14,7,1, got %v", cfg.AlertThresholds)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("CHECK_INTERVAL", "2h")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-t", "sqlite", "-api-salt", "s1", "-check-interval", "15m"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.CheckInterval != 15*time.Minute {
		t.Errorf("CLI should override env: expected 15m, got %s", cfg.CheckInterval)
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("expected error when DATABASE_URL missing")
	}

	if _, err := ParseFlags([]string{"-d", "postgres://test"}); err == nil {
		t.Error("expected error when API_KEY_SALT missing")
	}
}

func TestParseFlags_InvalidDatabaseType(t *testing.T) {
	os.Clearenv()

	_, err := ParseFlags([]string{"-d", "postgres://test", "-api-salt", "s1", "-t", "mysql"})
	if err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestParseThresholds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"defaults", "30,14,7,1", []int{30, 14, 7, 1}, false},
		{"unsorted and spaced", " 7, 30 ,14", []int{30, 14, 7}, false},
		{"duplicates collapse", "7,7,7", []int{7}, false},
		{"not a number", "30,soon", nil, true},
		{"zero rejected", "30,0", nil, true},
		{"negative rejected", "-1", nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThresholds(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}
