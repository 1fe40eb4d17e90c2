package config

import (
	"errors"
	"flag"
	"os"
	"time"
)

type Config struct {
	Addr             string
	BridgeAddr       string
	AuditPath        string
	RoundDuration    time.Duration
	Cooldown         time.Duration
	PlacementTimeout time.Duration
	GraceWindow      time.Duration
	StartupDelay     time.Duration
}

// ParseFlags reads flags with environment fallbacks. Flags win over env,
// env wins over defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("vote-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", "", "HTTP listen address")
	fs.StringVar(&cfg.BridgeAddr, "game", "", "Game process address")
	fs.StringVar(&cfg.AuditPath, "audit", "", "Audit log SQLite path")
	fs.DurationVar(&cfg.RoundDuration, "round", 0, "Voting round duration")
	fs.DurationVar(&cfg.Cooldown, "cooldown", 0, "Break between rounds")
	fs.DurationVar(&cfg.PlacementTimeout, "placement", 0, "Placement grant lifetime")
	fs.DurationVar(&cfg.GraceWindow, "grace", 0, "Late-ballot grace after round end")
	fs.DurationVar(&cfg.StartupDelay, "warmup", 0, "Delay before the first round")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Addr == "" {
		cfg.Addr = envOr("ADDR", ":8080")
	}
	if cfg.BridgeAddr == "" {
		cfg.BridgeAddr = envOr("GAME_ADDR", "127.0.0.1:31415")
	}
	if cfg.AuditPath == "" {
		cfg.AuditPath = envOr("AUDIT_DB", "spawn_log.db")
	}

	var err error
	if cfg.RoundDuration, err = durationOr(cfg.RoundDuration, "ROUND_DURATION", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Cooldown, err = durationOr(cfg.Cooldown, "ROUND_COOLDOWN", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PlacementTimeout, err = durationOr(cfg.PlacementTimeout, "PLACEMENT_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GraceWindow, err = durationOr(cfg.GraceWindow, "GRACE_WINDOW", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.StartupDelay, err = durationOr(cfg.StartupDelay, "STARTUP_DELAY", 3*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.RoundDuration <= 0 {
		return Config{}, errors.New("round duration must be positive")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOr(current time.Duration, key string, def time.Duration) (time.Duration, error) {
	if current != 0 {
		return current, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, errors.New("invalid " + key + " env variable")
		}
		return d, nil
	}
	return def, nil
}
