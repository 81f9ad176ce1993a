package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"maintex-gateway/internal/core/domain"
	"maintex-gateway/internal/pkg/netguard"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session storage backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "maintex.sid"

// Config holds all configuration for the application
type Config struct {
	AppMode        string
	Port           string
	TrustProxyHops int
	LogLevel       string
	SwaggerEnabled bool

	Session    SessionConfig
	Auth       AuthConfig
	Google     GoogleConfig
	Network    NetworkConfig
	Schedule   ScheduleConfig
	Paths      PathConfig
	LoginLimit RateLimitConfig
	Metrics    MetricsConfig
	Database   DatabaseConfig
	Redis      RedisConfig
}

// SessionConfig holds session cookie and storage configuration
type SessionConfig struct {
	Secret          string
	SecretGenerated bool
	CookieName      string
	MaxAge          time.Duration
	Secure          bool
	Store           string
	PurgeCron       string
}

// AuthConfig holds login configuration
type AuthConfig struct {
	Mode                domain.AuthMode
	AllowedEmailDomains []string
}

// GoogleConfig holds Google OAuth client and service account configuration
type GoogleConfig struct {
	ClientID           string
	ClientSecret       string
	RedirectURI        string
	ServiceAccountJSON []byte
	StateTTL           time.Duration
}

// NetworkConfig holds the client network allow-list
type NetworkConfig struct {
	AllowList *netguard.AllowList
}

// ScheduleConfig holds schedule export configuration
type ScheduleConfig struct {
	SpreadsheetID string
	SheetURL      string
	Source        domain.ExportSource
	CacheTTL      time.Duration
	CacheSize     int
	ExportURL     string
	FetchTimeout  time.Duration
	WarmCron      string
}

// PathConfig holds filesystem locations
type PathConfig struct {
	PublicDir      string
	ProtectedDir   string
	LabelTablePath string
}

// RateLimitConfig holds login rate limit configuration
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// MetricsConfig holds /metrics exposure settings
type MetricsConfig struct {
	Enabled bool
	Token   string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds redis configuration
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// rawEnv mirrors the environment one-to-one; Load normalizes it into Config.
type rawEnv struct {
	NodeEnv        string `env:"NODE_ENV"                    envDefault:"development"`
	Port           string `env:"PORT"                        envDefault:"3000"`
	TrustProxy     string `env:"TRUST_PROXY"`
	LogLevel       string `env:"LOG_LEVEL"                   envDefault:"info"`
	SwaggerEnabled string `env:"SWAGGER_ENABLED"`

	SessionSecret    string        `env:"SESSION_SECRET"`
	SessionStore     string        `env:"SESSION_STORE"        envDefault:"memory"`
	SessionMaxAge    time.Duration `env:"SESSION_MAX_AGE"      envDefault:"12h"`
	SessionPurgeCron string        `env:"SESSION_PURGE_CRON"   envDefault:"@every 30m"`

	AuthMode            string   `env:"AUTH_MODE"             envDefault:"local"`
	AllowedEmailDomains []string `env:"ALLOWED_EMAIL_DOMAINS" envSeparator:","`
	AllowedNetworks     []string `env:"ALLOWED_NETWORKS"      envSeparator:","`

	GoogleClientID       string        `env:"GOOGLE_OAUTH_CLIENT_ID"`
	GoogleClientSecret   string        `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	GoogleRedirectURI    string        `env:"GOOGLE_OAUTH_REDIRECT_URI"`
	GoogleServiceAccount string        `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	OAuthStateTTL        time.Duration `env:"OAUTH_STATE_TTL"       envDefault:"10m"`

	ScheduleSpreadsheetID string        `env:"SCHEDULE_SPREADSHEET_ID"`
	ScheduleSheetURL      string        `env:"SCHEDULE_SHEET_URL"`
	ScheduleSource        string        `env:"SCHEDULE_SOURCE"`
	ScheduleCacheMS       string        `env:"SCHEDULE_CACHE_MS"`
	ScheduleCacheSize     int           `env:"SCHEDULE_CACHE_SIZE"   envDefault:"256"`
	ScheduleExportURL     string        `env:"SCHEDULE_EXPORT_URL"`
	ScheduleFetchTimeout  time.Duration `env:"SCHEDULE_FETCH_TIMEOUT" envDefault:"30s"`
	ScheduleWarmCron      string        `env:"SCHEDULE_WARM_CRON"`

	PublicDir      string `env:"PUBLIC_DIR"             envDefault:"public"`
	ProtectedDir   string `env:"PROTECTED_DIR"          envDefault:"protected"`
	LabelTablePath string `env:"LABEL_CONVERSIONS_PATH"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT"  envDefault:"25"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsToken   string `env:"METRICS_TOKEN"`

	DBHost string `env:"DB_HOST" envDefault:"localhost"`
	DBPort string `env:"DB_PORT" envDefault:"3306"`
	DBUser string `env:"DB_USER" envDefault:"root"`
	DBPass string `env:"DB_PASS"`
	DBName string `env:"DB_NAME" envDefault:"maintex_gateway"`

	RedisURL       string `env:"REDIS_URL"        envDefault:"redis://localhost:6379/0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"maintex:"`
}

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse env: %v", domain.ErrConfiguration, err)
	}
	return build(raw)
}

// LoadFromMap builds configuration from an explicit environment map.
func LoadFromMap(vars map[string]string) (*Config, error) {
	var raw rawEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("%w: parse env: %v", domain.ErrConfiguration, err)
	}
	return build(raw)
}

func build(raw rawEnv) (*Config, error) {
	appMode := "dev"
	if strings.EqualFold(strings.TrimSpace(raw.NodeEnv), "production") {
		appMode = "prod"
	}

	cfg := &Config{
		AppMode:        appMode,
		Port:           strings.TrimSpace(raw.Port),
		TrustProxyHops: netguard.ParseTrustProxy(raw.TrustProxy),
		LogLevel:       raw.LogLevel,
		Paths: PathConfig{
			PublicDir:      raw.PublicDir,
			ProtectedDir:   raw.ProtectedDir,
			LabelTablePath: strings.TrimSpace(raw.LabelTablePath),
		},
		LoginLimit: RateLimitConfig{Max: raw.LoginRateLimit, Window: raw.LoginRateWindow},
		Metrics:    MetricsConfig{Enabled: raw.MetricsEnabled, Token: strings.TrimSpace(raw.MetricsToken)},
		Database: DatabaseConfig{
			Host:     raw.DBHost,
			Port:     raw.DBPort,
			User:     raw.DBUser,
			Password: raw.DBPass,
			DBName:   raw.DBName,
		},
		Redis: RedisConfig{URL: raw.RedisURL, KeyPrefix: raw.RedisKeyPrefix},
	}

	cfg.SwaggerEnabled = !cfg.IsProd()
	if v := strings.TrimSpace(raw.SwaggerEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: SWAGGER_ENABLED: %v", domain.ErrConfiguration, err)
		}
		cfg.SwaggerEnabled = enabled
	}

	if cfg.LoginLimit.Max <= 0 || cfg.LoginLimit.Window <= 0 {
		return nil, fmt.Errorf("%w: login rate limit must be positive", domain.ErrConfiguration)
	}

	session, err := loadSessionConfig(raw, cfg.IsProd())
	if err != nil {
		return nil, err
	}
	cfg.Session = session

	mode := domain.AuthMode(strings.ToLower(strings.TrimSpace(raw.AuthMode)))
	if mode != domain.AuthModeLocal && mode != domain.AuthModeGoogle {
		return nil, fmt.Errorf("%w: invalid AUTH_MODE %q (must be local or google)", domain.ErrConfiguration, raw.AuthMode)
	}
	cfg.Auth = AuthConfig{Mode: mode, AllowedEmailDomains: normalizeDomains(raw.AllowedEmailDomains)}

	allow, err := netguard.ParseAllowList(raw.AllowedNetworks)
	if err != nil {
		return nil, fmt.Errorf("%w: ALLOWED_NETWORKS: %v", domain.ErrConfiguration, err)
	}
	cfg.Network = NetworkConfig{AllowList: allow}

	google, err := loadGoogleConfig(raw)
	if err != nil {
		return nil, err
	}
	cfg.Google = google

	schedule, err := loadScheduleConfig(raw, mode, google)
	if err != nil {
		return nil, err
	}
	cfg.Schedule = schedule

	return cfg, nil
}

func loadSessionConfig(raw rawEnv, prod bool) (SessionConfig, error) {
	store := strings.ToLower(strings.TrimSpace(raw.SessionStore))
	switch store {
	case StoreMemory, StoreRedis, StoreMySQL:
	default:
		return SessionConfig{}, fmt.Errorf("%w: invalid SESSION_STORE %q", domain.ErrConfiguration, raw.SessionStore)
	}
	if raw.SessionMaxAge <= 0 {
		return SessionConfig{}, fmt.Errorf("%w: SESSION_MAX_AGE must be positive", domain.ErrConfiguration)
	}

	sc := SessionConfig{
		Secret:     raw.SessionSecret,
		CookieName: SessionCookieName,
		MaxAge:     raw.SessionMaxAge,
		Secure:     prod,
		Store:      store,
		PurgeCron:  strings.TrimSpace(raw.SessionPurgeCron),
	}
	if sc.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return SessionConfig{}, fmt.Errorf("%w: generate session secret: %v", domain.ErrConfiguration, err)
		}
		sc.Secret = hex.EncodeToString(buf)
		sc.SecretGenerated = true
	}
	return sc, nil
}

func loadGoogleConfig(raw rawEnv) (GoogleConfig, error) {
	gc := GoogleConfig{
		ClientID:     strings.TrimSpace(raw.GoogleClientID),
		ClientSecret: strings.TrimSpace(raw.GoogleClientSecret),
		RedirectURI:  strings.TrimSpace(raw.GoogleRedirectURI),
		StateTTL:     raw.OAuthStateTTL,
	}

	sa := strings.TrimSpace(raw.GoogleServiceAccount)
	switch {
	case sa == "":
	case strings.HasPrefix(sa, "{"):
		gc.ServiceAccountJSON = []byte(sa)
	default:
		data, err := os.ReadFile(sa)
		if err != nil {
			return GoogleConfig{}, fmt.Errorf("%w: GOOGLE_SERVICE_ACCOUNT_JSON: %v", domain.ErrConfiguration, err)
		}
		gc.ServiceAccountJSON = data
	}
	return gc, nil
}

func loadScheduleConfig(raw rawEnv, mode domain.AuthMode, google GoogleConfig) (ScheduleConfig, error) {
	sc := ScheduleConfig{
		SpreadsheetID: strings.TrimSpace(raw.ScheduleSpreadsheetID),
		SheetURL:      strings.TrimSpace(raw.ScheduleSheetURL),
		CacheSize:     raw.ScheduleCacheSize,
		ExportURL:     strings.TrimSpace(raw.ScheduleExportURL),
		FetchTimeout:  raw.ScheduleFetchTimeout,
		WarmCron:      strings.TrimSpace(raw.ScheduleWarmCron),
	}

	if strings.TrimSpace(raw.ScheduleSource) == "" {
		sc.Source = domain.SourcePublicExport
		if mode == domain.AuthModeGoogle {
			sc.Source = domain.SourceDelegatedUser
		}
	} else {
		source, ok := domain.ParseExportSource(raw.ScheduleSource)
		if !ok {
			return ScheduleConfig{}, fmt.Errorf("%w: invalid SCHEDULE_SOURCE %q", domain.ErrConfiguration, raw.ScheduleSource)
		}
		sc.Source = source
	}

	if sc.Source == domain.SourceDelegatedUser && mode != domain.AuthModeGoogle {
		return ScheduleConfig{}, fmt.Errorf("%w: SCHEDULE_SOURCE=delegated-user requires AUTH_MODE=google", domain.ErrConfiguration)
	}
	if sc.Source == domain.SourceServiceCredential && len(google.ServiceAccountJSON) == 0 {
		return ScheduleConfig{}, fmt.Errorf("%w: SCHEDULE_SOURCE=service-credential requires GOOGLE_SERVICE_ACCOUNT_JSON", domain.ErrConfiguration)
	}

	// Delegated exports are per caller; caching them is opt-in.
	sc.CacheTTL = 60 * time.Second
	if sc.Source.PerCaller() {
		sc.CacheTTL = 0
	}
	if v := strings.TrimSpace(raw.ScheduleCacheMS); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil || ms < 0 {
			return ScheduleConfig{}, fmt.Errorf("%w: invalid SCHEDULE_CACHE_MS %q", domain.ErrConfiguration, v)
		}
		sc.CacheTTL = time.Duration(ms) * time.Millisecond
	}

	if sc.FetchTimeout <= 0 {
		return ScheduleConfig{}, fmt.Errorf("%w: SCHEDULE_FETCH_TIMEOUT must be positive", domain.ErrConfiguration)
	}
	if sc.CacheSize <= 0 {
		sc.CacheSize = 256
	}
	return sc, nil
}

func normalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(strings.TrimPrefix(d, "@"), ".")
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// DocumentID resolves the spreadsheet id from the explicit id or the sheet URL.
func (s ScheduleConfig) DocumentID() (string, error) {
	if s.SpreadsheetID != "" {
		return s.SpreadsheetID, nil
	}
	if m := spreadsheetURLPattern.FindStringSubmatch(s.SheetURL); len(m) == 2 {
		return m[1], nil
	}
	return "", domain.ErrDocumentNotConfigured
}

// OAuthConfigured reports whether the OAuth client is fully configured
func (g GoogleConfig) OAuthConfigured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURI != ""
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}
