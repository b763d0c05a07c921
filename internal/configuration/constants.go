package configuration

const AppName = "bridge"

// JWT audience constants for local session token type separation.
const (
	AudienceAccessToken  = "app:*"
	AudienceRefreshToken = "auth:refresh"
)

// Provider error codes that drive control flow.
const (
	ProviderErrInvalidRefreshToken = 905
	ProviderErrTokenExpired        = 906
	ProviderErrEmailInUse          = 936
)

// Provider REST paths, relative to the versioned API root.
const (
	ProviderPathAccountByToken   = "identity/v2/auth/account"
	ProviderPathManageAccount    = "identity/v2/manage/account"
	ProviderPathMintRefreshToken = "api/v2/access_token/refresh"
	ProviderPathExchangeToken    = "identity/v2/manage/account/access_token/refresh"
	ProviderPathSOTT             = "identity/v2/manage/account/sott"
)

// Client-side persisted state keys. The provider's own widget script reads the
// token under this exact key, so it is part of the wire contract.
const (
	TokenStorageKey      = "LRTokenKey"
	RememberMeStorageKey = "lr-rememberme"
)

// Widget script-load polling. 100 attempts at 100ms gives the vendor script
// roughly ten seconds to appear before the load is declared failed.
const (
	ScriptPollIntervalMillis = 100
	ScriptMaxLoadAttempts    = 100
)

const (
	CacheAppRateLimitKey = "app:ratelimit:%s"
)

var ArrayConfigFields = []string{
	"app.allowed_origins",
	"app.trusted_proxies",
	"cache.redis.hosts",
}

var ConfigFileSearchPaths = []string{
	"./config.yaml",
	"templates/config.yaml",
}
