package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	APIKeySalt      string
	CheckInterval   time.Duration
	CheckWorkers    int
	ProbeTimeout    time.Duration
	WebhookAttempts int
	WebhookBackoff  time.Duration
	AlertThresholds []int
}

// ParseFlags validates flags, falling back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var thresholds string

	fs := flag.NewFlagSet("cert-tracker", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.APIKeySalt, "api-salt", "", "API key salt (prefer env)")

	// Checker tuning
	fs.DurationVar(&cfg.CheckInterval, "check-interval", 0, "Interval between certificate scans")
	fs.IntVar(&cfg.CheckWorkers, "check-workers", 0, "Concurrent certificate probes per scan")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", 0, "TLS probe timeout")
	fs.IntVar(&cfg.WebhookAttempts, "webhook-attempts", 0, "Webhook delivery attempts")
	fs.StringVar(&thresholds, "thresholds", "", "Alert thresholds in days (comma-separated)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 4380 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "postgres"
		}
	}
	if cfg.DatabaseType != "postgres" && cfg.DatabaseType != "sqlite" {
		return Config{}, errors.New("database type must be postgres or sqlite")
	}

	// Secrets - MUST be provided
	if cfg.APIKeySalt == "" {
		cfg.APIKeySalt = os.Getenv("API_KEY_SALT")
	}
	if cfg.APIKeySalt == "" {
		return Config{}, errors.New("API_KEY_SALT required")
	}

	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = envDuration("CHECK_INTERVAL", time.Hour)
	}
	if cfg.CheckWorkers == 0 {
		cfg.CheckWorkers = envInt("CHECK_WORKERS", 8)
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = envDuration("PROBE_TIMEOUT", 10*time.Second)
	}
	if cfg.WebhookAttempts == 0 {
		cfg.WebhookAttempts = envInt("WEBHOOK_ATTEMPTS", 3)
	}
	if cfg.WebhookBackoff == 0 {
		cfg.WebhookBackoff = envDuration("WEBHOOK_BACKOFF", 2*time.Second)
	}

	if thresholds == "" {
		thresholds = os.Getenv("ALERT_THRESHOLDS")
		if thresholds == "" {
			thresholds = "30,14,7,1"
		}
	}
	parsed, err := ParseThresholds(thresholds)
	if err != nil {
		return Config{}, err
	}
	cfg.AlertThresholds = parsed

	return cfg, nil
}

// ParseThresholds parses a comma-separated list of day counts into a
// descending, deduplicated slice.
func ParseThresholds(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	seen := make(map[int]bool)
	var out []int
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("threshold must be positive, got %d", n)
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("at least one alert threshold required")
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
