package models

type Configuration struct {
	App      AppConfiguration      `mapstructure:"app"      validate:"required"`
	Provider ProviderConfiguration `mapstructure:"provider" validate:"required"`
	Database DatabaseConfiguration `mapstructure:"database" validate:"required"`
	Cache    CacheConfiguration    `mapstructure:"cache"`
	Tracing  TracingConfiguration  `mapstructure:"tracing"`
}

type AppConfiguration struct {
	SiteName           string   `mapstructure:"site_name"             validate:"required"`
	Port               int      `mapstructure:"port"                  validate:"gte=80,lte=65535"`
	LogLevel           string   `mapstructure:"log_level"             validate:"oneof=debug info warn error fatal panic"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"       validate:"required"`
	TrustedProxies     []string `mapstructure:"trusted_proxies"`
	JWTSecret          string   `mapstructure:"jwt_secret"            validate:"required"`
	AccessTokenExpiry  int      `mapstructure:"access_token_expiry"   validate:"gte=1,lte=1440"`
	RefreshTokenExpiry int      `mapstructure:"refresh_token_expiry"  validate:"gte=1,lte=43200"`
	WebURL             string   `mapstructure:"web_url"               validate:"required"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute" validate:"gte=1"`
	RunMigrations      bool     `mapstructure:"run_migrations"`
}

// ProviderConfiguration holds the credentials and endpoints for the hosted
// identity provider. The API secret is only ever used server-side; the API key
// and site name are safe to hand to the widget layer.
type ProviderConfiguration struct {
	Enabled          bool              `mapstructure:"enabled"`
	APIURL           string            `mapstructure:"api_url"            validate:"required,http_url"`
	APIKey           string            `mapstructure:"api_key"`
	APISecret        string            `mapstructure:"api_secret"`
	ResetPasswordURL string            `mapstructure:"reset_password_url"`
	RecaptchaSiteKey string            `mapstructure:"recaptcha_site_key"`
	DebugLogging     bool              `mapstructure:"debug_logging"`
	TimeoutSeconds   int               `mapstructure:"timeout_seconds"    validate:"gte=1,lte=120"`
	FriendlyMessages map[string]string `mapstructure:"friendly_messages"`
}

type DatabaseConfiguration struct {
	Type     string                       `mapstructure:"type"     validate:"required,oneof=postgres sqlite"`
	Postgres *PostgresDatabaseConfig      `mapstructure:"postgres" validate:"required_if=Type postgres"`
	SQLite   *SQLiteDatabaseConfiguration `mapstructure:"sqlite"   validate:"required_if=Type sqlite"`
}

type PostgresDatabaseConfig struct {
	Host     string `mapstructure:"host"     validate:"required"`
	Port     int32  `mapstructure:"port"     validate:"gte=80,lte=65535"`
	User     string `mapstructure:"user"     validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name"     validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

type SQLiteDatabaseConfiguration struct {
	Path string `mapstructure:"path" validate:"required"`
}

type CacheConfiguration struct {
	Type  string                   `mapstructure:"type"  validate:"omitempty,oneof=redis"`
	Redis *RedisCacheConfiguration `mapstructure:"redis" validate:"required_if=Type redis"`
}

type RedisCacheConfiguration struct {
	Hosts         []string `mapstructure:"hosts"`
	Password      string   `mapstructure:"password"`
	TLSEnabled    bool     `mapstructure:"tls_enabled"`
	TLSServerName string   `mapstructure:"tls_server_name"`
}

type TracingConfiguration struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
}

// AuthConfig groups the local session-token configuration passed to services.
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  int
	RefreshTokenExpiry int
	WebURL             string
}

func (c *AppConfiguration) GetAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:          c.JWTSecret,
		AccessTokenExpiry:  c.AccessTokenExpiry,
		RefreshTokenExpiry: c.RefreshTokenExpiry,
		WebURL:             c.WebURL,
	}
}
