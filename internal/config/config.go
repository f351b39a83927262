package config

// Version information, set at build time

var Version = "development"
var CommitHash = "development"
var BuildTimestamp = "0000-00-00T00:00:00Z"

// Cookie name templates

var SessionCookieName = "authform-session"
var RememberedCookieName = "authform-remembered"
var CSRFCookieName = "authform-csrf"

// Environment variable prefix used by the env loader

var DefaultNamePrefix = "AUTHFORM_"

// Google Identity Services

var GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
var GoogleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Main app config

type Config struct {
	AppURL       string             `description:"The base URL where the app is hosted." yaml:"appUrl"`
	DatabasePath string             `description:"The path to the database file." yaml:"databasePath"`
	Server       ServerConfig       `description:"Server configuration." yaml:"server"`
	Auth         AuthConfig         `description:"Authentication configuration." yaml:"auth"`
	Google       GoogleConfig       `description:"Google sign-in configuration." yaml:"google"`
	Redis        RedisConfig        `description:"Redis configuration for the login attempt store." yaml:"redis"`
	UI           UIConfig           `description:"UI customization." yaml:"ui"`
	Log          LogConfig          `description:"Logging configuration." yaml:"log"`
	Experimental ExperimentalConfig `description:"Experimental features, use with caution." yaml:"experimental"`
}

type ServerConfig struct {
	Port           int      `description:"The port on which the server listens." yaml:"port"`
	Address        string   `description:"The address on which the server listens." yaml:"address"`
	SocketPath     string   `description:"The path to the Unix socket." yaml:"socketPath"`
	TrustedProxies []string `description:"Comma-separated list of trusted proxy addresses." yaml:"trustedProxies"`
}

type AuthConfig struct {
	SecureCookie        bool   `description:"Enable secure cookies." yaml:"secureCookie"`
	SessionExpiry       int    `description:"Session expiry time in seconds." yaml:"sessionExpiry"`
	LoginTimeout        int    `description:"Lockout window in seconds after too many failed login attempts." yaml:"loginTimeout"`
	LoginMaxRetries     int    `description:"Failed login attempts before the identifier is locked." yaml:"loginMaxRetries"`
	LoginRedirectDelay  int    `description:"Delay in milliseconds before navigating after a successful login." yaml:"loginRedirectDelay"`
	SignupRedirectDelay int    `description:"Delay in milliseconds before switching back to login after a sign up." yaml:"signupRedirectDelay"`
	LandingPath         string `description:"Path of the page shown after a successful login." yaml:"landingPath"`
}

type GoogleConfig struct {
	ClientID         string `description:"Google OAuth client ID." yaml:"clientId"`
	ClientSecret     string `description:"Google OAuth client secret, enables the redirect flow." yaml:"clientSecret"`
	ClientSecretFile string `description:"Path to a file containing the Google OAuth client secret." yaml:"clientSecretFile"`
	CertsURL         string `description:"URL of the Google signing keys." yaml:"certsUrl"`
	RedirectURL      string `description:"OAuth redirect URL, defaults to the app callback." yaml:"redirectUrl"`
}

type RedisConfig struct {
	Address  string `description:"Redis address, leave empty to keep login attempts in memory." yaml:"address"`
	Password string `description:"Redis password." yaml:"password"`
	DB       int    `description:"Redis database number." yaml:"db"`
}

type UIConfig struct {
	Title        string `description:"The title of the UI." yaml:"title"`
	ResourcesDir string `description:"Directory whose files replace the built-in page resources." yaml:"resourcesDir"`
}

type LogConfig struct {
	Level   string     `description:"Log level (trace, debug, info, warn, error)." yaml:"level"`
	Json    bool       `description:"Enable JSON formatted logs." yaml:"json"`
	Streams LogStreams `description:"Configuration for specific log streams." yaml:"streams"`
}

type LogStreams struct {
	HTTP  LogStreamConfig `description:"HTTP request logging." yaml:"http"`
	App   LogStreamConfig `description:"Application logging." yaml:"app"`
	Audit LogStreamConfig `description:"Audit logging." yaml:"audit"`
}

type LogStreamConfig struct {
	Enabled bool   `description:"Enable this log stream." yaml:"enabled"`
	Level   string `description:"Log level for this stream, defaults to the global level." yaml:"level"`
	File    string `description:"Also append this stream to a plain text file (audit only)." yaml:"file"`
}

type ExperimentalConfig struct {
	ConfigFile string `description:"Path to config file." yaml:"-"`
}

// NewDefaultConfiguration returns the configuration used when nothing overrides it.
func NewDefaultConfiguration() *Config {
	return &Config{
		AppURL:       "http://localhost:3000",
		DatabasePath: "./authform.db",
		Server: ServerConfig{
			Port:    3000,
			Address: "0.0.0.0",
		},
		Auth: AuthConfig{
			SecureCookie:        false,
			SessionExpiry:       86400,
			LoginTimeout:        300,
			LoginMaxRetries:     10,
			LoginRedirectDelay:  1000,
			SignupRedirectDelay: 1500,
			LandingPath:         "/home",
		},
		Google: GoogleConfig{
			CertsURL: GoogleCertsURL,
		},
		UI: UIConfig{
			Title: "Authform",
		},
		Log: LogConfig{
			Level: "info",
			Json:  false,
			Streams: LogStreams{
				HTTP:  LogStreamConfig{Enabled: true},
				App:   LogStreamConfig{Enabled: true},
				Audit: LogStreamConfig{Enabled: true},
			},
		},
		Experimental: ExperimentalConfig{
			ConfigFile: "",
		},
	}
}

// Identity claims

type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Request context

type UserContext struct {
	Username   string
	Name       string
	Email      string
	Picture    string
	Provider   string
	IsLoggedIn bool
	OAuth      bool
}

// Redirect queries

type FormQuery struct {
	Mode string `url:"mode,omitempty"`
	// Error is a code from the form error table, never message text
	Error string `url:"error,omitempty"`
}

const FormErrorGoogle = "google"
