package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./installer-archive.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl       string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service"`
	SourceProfile string `long:"source-profile" env:"SOURCE_PROFILE" description:"Path to a YAML source profile (built-in Installer profile when unset)"`
	APIAccessKey  string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (disabled when unset)"`

	// Scraping behavior
	FetchTimeout      int  `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-page fetch timeout in seconds"`
	PolitenessDelay   int  `long:"politeness-delay" env:"POLITENESS_DELAY" default:"2" description:"Minimum interval between fetches in seconds"`
	SchedulerInterval int  `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Background discovery interval in seconds"`
	BatchLimit        int  `long:"batch-limit" env:"BATCH_LIMIT" default:"200" description:"Maximum items processed per batch operation"`
	RespectRobots     bool `long:"respect-robots" env:"RESPECT_ROBOTS" description:"Check robots.txt before fetching source pages"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Installer Archive/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		SourceProfile:     raw.SourceProfile,
		APIAccessKey:      raw.APIAccessKey,
		FetchTimeout:      raw.FetchTimeout,
		PolitenessDelay:   raw.PolitenessDelay,
		SchedulerInterval: raw.SchedulerInterval,
		BatchLimit:        raw.BatchLimit,
		RespectRobots:     raw.RespectRobots,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
