package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/budgly/internal/classification"
	"github.com/Veraticus/budgly/internal/common"
	"github.com/Veraticus/budgly/internal/privacy"
	"github.com/Veraticus/budgly/internal/timewindow"
	"github.com/spf13/viper"
)

// Layout backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the resolved application configuration.
type Config struct {
	Logging      LoggingConfig      `mapstructure:"logging"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Dashboard    DashboardConfig    `mapstructure:"dashboard"`
	Layout       LayoutConfig       `mapstructure:"layout"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Server       ServerConfig       `mapstructure:"server"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Import       ImportConfig       `mapstructure:"import"`
	Privacy      privacy.Settings   `mapstructure:"privacy"`
}

// LoggingConfig controls slog.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DashboardConfig selects the analytics period and calendar conventions.
type DashboardConfig struct {
	Period    string `mapstructure:"period"`
	WeekStart string `mapstructure:"week_start"`
	TimeZone  string `mapstructure:"time_zone"`
}

// LayoutConfig picks where the card layout is persisted.
type LayoutConfig struct {
	Backend string `mapstructure:"backend"`
}

// RedisConfig is used when the layout backend is redis.
type RedisConfig struct {
	URL     string        `mapstructure:"url"`
	Channel string        `mapstructure:"channel"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ConnectivityConfig controls the online probe that gates spreadsheet sync.
type ConnectivityConfig struct {
	CheckAddr string        `mapstructure:"check_addr"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SyncConfig enables pushing the ledger to Google Sheets after every change.
type SyncConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ImportConfig controls need/want suggestions and transfer filtering on import.
// Rules replace the built-in patterns when set.
type ImportConfig struct {
	Rules         []classification.Pattern `mapstructure:"rules"`
	MinConfidence float64                  `mapstructure:"min_confidence"`
	Classify      bool                     `mapstructure:"classify"`
	KeepTransfers bool                     `mapstructure:"keep_transfers"`
}

// Patterns returns the configured rules or the built-in ones.
func (c ImportConfig) Patterns() []classification.Pattern {
	if len(c.Rules) > 0 {
		return c.Rules
	}
	return classification.DefaultPatterns()
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", filepath.Join(DefaultDataDir(), "budgly.db"))
	v.SetDefault("dashboard.period", string(timewindow.PeriodThisMonth))
	v.SetDefault("dashboard.week_start", "sunday")
	v.SetDefault("dashboard.time_zone", "Local")
	v.SetDefault("layout.backend", BackendSQLite)
	v.SetDefault("redis.url", "localhost:6379")
	v.SetDefault("redis.channel", "budgly:dashboard-layout-changed")
	v.SetDefault("redis.timeout", 5*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("connectivity.check_addr", "sheets.googleapis.com:443")
	v.SetDefault("connectivity.interval", 30*time.Second)
	v.SetDefault("connectivity.timeout", 3*time.Second)
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.debounce", 5*time.Second)
	v.SetDefault("import.classify", true)
	v.SetDefault("import.min_confidence", 0.75)
	v.SetDefault("import.keep_transfers", false)
	v.SetDefault("privacy.currency", privacy.DefaultCurrency)
	v.SetDefault("privacy.hide_amounts", false)
	v.SetDefault("privacy.hide_reasons", false)
}

// Load reads v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	cfg.Database.Path = ExpandPath(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that Unmarshal cannot.
func (c *Config) Validate() error {
	if _, err := timewindow.ParsePeriod(c.Dashboard.Period); err != nil {
		return fmt.Errorf("%w: dashboard.period: %v", common.ErrInvalidConfig, err)
	}
	if _, err := ParseWeekday(c.Dashboard.WeekStart); err != nil {
		return fmt.Errorf("%w: dashboard.week_start: %v", common.ErrInvalidConfig, err)
	}
	if _, err := time.LoadLocation(c.Dashboard.TimeZone); err != nil {
		return fmt.Errorf("%w: dashboard.time_zone: %v", common.ErrInvalidConfig, err)
	}
	switch c.Layout.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: layout.backend must be %q or %q, got %q", common.ErrInvalidConfig, BackendSQLite, BackendRedis, c.Layout.Backend)
	}
	if c.Connectivity.Interval <= 0 {
		return fmt.Errorf("%w: connectivity.interval must be positive", common.ErrInvalidConfig)
	}
	if c.Import.MinConfidence < 0 || c.Import.MinConfidence > 1 {
		return fmt.Errorf("%w: import.min_confidence must be between 0 and 1", common.ErrInvalidConfig)
	}
	if _, err := classification.NewDetector(c.Import.Patterns()); err != nil {
		return fmt.Errorf("%w: import.rules: %v", common.ErrInvalidConfig, err)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	return nil
}

// Period returns the configured analytics period.
func (c *Config) Period() timewindow.Period {
	p, _ := timewindow.ParsePeriod(c.Dashboard.Period)
	return p
}

// WindowOptions turns the calendar settings into timewindow options.
func (c *Config) WindowOptions() []timewindow.Option {
	var opts []timewindow.Option
	if day, err := ParseWeekday(c.Dashboard.WeekStart); err == nil {
		opts = append(opts, timewindow.WithWeekStart(day))
	}
	if loc, err := time.LoadLocation(c.Dashboard.TimeZone); err == nil {
		opts = append(opts, timewindow.WithLocation(loc))
	}
	return opts
}

// ParseWeekday accepts full or three letter English day names.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
