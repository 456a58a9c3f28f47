package devcamper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabaseURL  = "mongodb://localhost:27017"
	DefaultDatabaseName = "devcamper"

	DefaultAPIPort = 5000

	DefaultTokenExpire     = "30d"
	DefaultCookieExpire    = "30d"
	DefaultMaxFileUploadMB = 1
	DefaultUploadPath      = "./public/uploads"
	DefaultUploadURL       = "/uploads"

	DefaultGeocoderURL        = "https://www.mapquestapi.com/geocoding/v1/address"
	DefaultGeocoderMaxRetries = 3

	DefaultAmboyPoolSize     = 2
	DefaultAmboyLocalStorage = 1024
)

// Settings contains all configuration for the service. It is read from a
// YAML file and then overridden by well-known environment variables.
type Settings struct {
	Database DBSettings     `yaml:"database" json:"database"`
	Api      APIConfig      `yaml:"api" json:"api"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Upload   UploadConfig   `yaml:"upload" json:"upload"`
	SMTP     SMTPConfig     `yaml:"smtp" json:"smtp"`
	Geocoder GeocoderConfig `yaml:"geocoder" json:"geocoder"`
	Amboy    AmboyConfig    `yaml:"amboy" json:"amboy"`
	Tracer   TracerConfig   `yaml:"tracer" json:"tracer"`
}

// NewSettings reads settings from the YAML file at the given path. An empty
// path yields default settings.
func NewSettings(path string) (*Settings, error) {
	settings := &Settings{}
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading settings file '%s'", path)
	}
	if err = yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrapf(err, "parsing settings file '%s'", path)
	}

	return settings, nil
}

// LoadEnvFile reads a dotenv file into the process environment. Variables
// already set in the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "loading env file '%s'", path)
}

// ApplyEnvironment overrides settings with any well-known environment
// variables that are set.
func (s *Settings) ApplyEnvironment() error {
	catcher := grip.NewBasicCatcher()

	setString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}
	setInt := func(key string, target *int) {
		val, ok := os.LookupEnv(key)
		if !ok || val == "" {
			return
		}
		parsed, err := strconv.Atoi(val)
		if err != nil {
			catcher.Wrapf(err, "parsing environment variable '%s'", key)
			return
		}
		*target = parsed
	}

	setString("MONGO_URI", &s.Database.Url)
	setString("MONGO_DB", &s.Database.DB)
	setInt("PORT", &s.Api.Port)
	setString("API_URL", &s.Api.URL)
	setString("JWT_SECRET", &s.Auth.JWTSecret)
	setString("JWT_EXPIRE", &s.Auth.JWTExpire)
	setString("JWT_COOKIE_EXPIRE", &s.Auth.CookieExpire)
	setString("FILE_UPLOAD_PATH", &s.Upload.Path)
	setInt("MAX_FILE_UPLOAD", &s.Upload.MaxFileUploadMB)
	setString("GEOCODER_API_KEY", &s.Geocoder.APIKey)
	setString("SMTP_HOST", &s.SMTP.Server)
	setInt("SMTP_PORT", &s.SMTP.Port)
	setString("SMTP_EMAIL", &s.SMTP.Username)
	setString("SMTP_PASSWORD", &s.SMTP.Password)
	setString("FROM_EMAIL", &s.SMTP.FromEmail)
	setString("FROM_NAME", &s.SMTP.FromName)
	setString("OTEL_COLLECTOR_ENDPOINT", &s.Tracer.CollectorEndpoint)

	return catcher.Resolve()
}

// Validate checks every section, filling in defaults where a value is
// missing.
func (s *Settings) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.Wrap(s.Database.ValidateAndDefault(), "validating database settings")
	catcher.Wrap(s.Api.ValidateAndDefault(), "validating api settings")
	catcher.Wrap(s.Auth.ValidateAndDefault(), "validating auth settings")
	catcher.Wrap(s.Upload.ValidateAndDefault(), "validating upload settings")
	catcher.Wrap(s.SMTP.ValidateAndDefault(), "validating smtp settings")
	catcher.Wrap(s.Geocoder.ValidateAndDefault(), "validating geocoder settings")
	catcher.Wrap(s.Amboy.ValidateAndDefault(), "validating amboy settings")
	catcher.Wrap(s.Tracer.ValidateAndDefault(), "validating tracer settings")
	return catcher.Resolve()
}

type DBSettings struct {
	Url          string             `yaml:"url" json:"url"`
	DB           string             `yaml:"db" json:"db"`
	WriteConcern WriteConcernConfig `yaml:"write_concern" json:"write_concern"`
}

type WriteConcernConfig struct {
	W        int  `yaml:"w" json:"w"`
	J        bool `yaml:"j" json:"j"`
	WTimeout int  `yaml:"wtimeout" json:"wtimeout"`
}

func (c *DBSettings) ValidateAndDefault() error {
	if c.Url == "" {
		c.Url = DefaultDatabaseURL
	}
	if c.DB == "" {
		c.DB = DefaultDatabaseName
	}
	if !strings.HasPrefix(c.Url, "mongodb://") && !strings.HasPrefix(c.Url, "mongodb+srv://") {
		return errors.Errorf("database url '%s' must use the mongodb scheme", c.Url)
	}
	if c.WriteConcern.W < 0 {
		return errors.New("write concern cannot be negative")
	}
	return nil
}

type APIConfig struct {
	Port        int      `yaml:"port" json:"port"`
	URL         string   `yaml:"url" json:"url"`
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`
}

func (c *APIConfig) ValidateAndDefault() error {
	if c.Port == 0 {
		c.Port = DefaultAPIPort
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port %d is out of range", c.Port)
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	c.URL = strings.TrimRight(c.URL, "/")
	return nil
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" json:"-"`
	// JWTExpire is either a number of days such as "30d" or a Go duration.
	JWTExpire    string `yaml:"jwt_expire" json:"jwt_expire"`
	CookieExpire string `yaml:"jwt_cookie_expire" json:"jwt_cookie_expire"`
	SecureCookie bool   `yaml:"secure_cookie" json:"secure_cookie"`
	BcryptCost   int    `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	tokenTTL  time.Duration
	cookieTTL time.Duration
}

func (c *AuthConfig) ValidateAndDefault() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret must be set")
	}
	if c.JWTExpire == "" {
		c.JWTExpire = DefaultTokenExpire
	}
	ttl, err := ParseExpiry(c.JWTExpire)
	if err != nil {
		return errors.Wrap(err, "parsing jwt expiry")
	}
	c.tokenTTL = ttl
	if c.CookieExpire == "" {
		c.CookieExpire = DefaultCookieExpire
	}
	if c.cookieTTL, err = ParseExpiry(c.CookieExpire); err != nil {
		return errors.Wrap(err, "parsing cookie expiry")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.Errorf("bcrypt cost %d is out of range", c.BcryptCost)
	}
	return nil
}

// TokenTTL is the lifetime of an issued token. It is only meaningful after
// the config has been validated.
func (c *AuthConfig) TokenTTL() time.Duration { return c.tokenTTL }

// CookieTTL is how long the token cookie is kept by the client.
func (c *AuthConfig) CookieTTL() time.Duration { return c.cookieTTL }

// ParseExpiry parses a lifetime given either as whole days with a "d" suffix
// or as a Go duration.
func ParseExpiry(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if days, ok := strings.CutSuffix(val, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid day count '%s'", val)
		}
		if n <= 0 {
			return 0, errors.Errorf("expiry '%s' must be positive", val)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	ttl, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration '%s'", val)
	}
	if ttl <= 0 {
		return 0, errors.Errorf("expiry '%s' must be positive", val)
	}
	return ttl, nil
}

type UploadConfig struct {
	Path            string `yaml:"path" json:"path"`
	URL             string `yaml:"url" json:"url"`
	MaxFileUploadMB int    `yaml:"max_file_upload_mb" json:"max_file_upload_mb"`
}

func (c *UploadConfig) ValidateAndDefault() error {
	if c.Path == "" {
		c.Path = DefaultUploadPath
	}
	if c.URL == "" {
		c.URL = DefaultUploadURL
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.MaxFileUploadMB == 0 {
		c.MaxFileUploadMB = DefaultMaxFileUploadMB
	}
	if c.MaxFileUploadMB < 0 {
		return errors.New("max file upload size cannot be negative")
	}
	return nil
}

// MaxBytes is the largest accepted upload in bytes.
func (c *UploadConfig) MaxBytes() int64 {
	return int64(c.MaxFileUploadMB) * 1024 * 1024
}

type SMTPConfig struct {
	Server    string `yaml:"server" json:"server"`
	Port      int    `yaml:"port" json:"port"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
	Username  string `yaml:"username" json:"username"`
	Password  string `yaml:"password" json:"-"`
	FromEmail string `yaml:"from_email" json:"from_email"`
	FromName  string `yaml:"from_name" json:"from_name"`
}

func (c *SMTPConfig) ValidateAndDefault() error {
	if c.Server == "" {
		return nil
	}
	if c.Port == 0 {
		c.Port = 587
	}
	if c.FromEmail == "" {
		return errors.New("smtp requires a from address")
	}
	return nil
}

// Configured reports whether outgoing mail can be sent.
func (c *SMTPConfig) Configured() bool { return c.Server != "" }

type GeocoderConfig struct {
	URL        string `yaml:"url" json:"url"`
	APIKey     string `yaml:"api_key" json:"-"`
	MaxRetries int    `yaml:"max_retries" json:"max_retries"`
}

func (c *GeocoderConfig) ValidateAndDefault() error {
	if c.URL == "" {
		c.URL = DefaultGeocoderURL
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultGeocoderMaxRetries
	}
	if c.MaxRetries < 0 {
		return errors.New("geocoder retries cannot be negative")
	}
	return nil
}

type AmboyConfig struct {
	PoolSizeLocal int `yaml:"local_pool_size" json:"local_pool_size"`
	LocalStorage  int `yaml:"local_storage_size" json:"local_storage_size"`
}

func (c *AmboyConfig) ValidateAndDefault() error {
	if c.PoolSizeLocal == 0 {
		c.PoolSizeLocal = DefaultAmboyPoolSize
	}
	if c.LocalStorage == 0 {
		c.LocalStorage = DefaultAmboyLocalStorage
	}
	if c.PoolSizeLocal < 0 || c.LocalStorage < 0 {
		return errors.New("amboy sizes cannot be negative")
	}
	return nil
}

// TracerConfig points request tracing at an OpenTelemetry collector.
type TracerConfig struct {
	Enabled           bool   `yaml:"enabled" json:"enabled"`
	CollectorEndpoint string `yaml:"collector_endpoint" json:"collector_endpoint"`
}

func (c *TracerConfig) ValidateAndDefault() error {
	if c.Enabled && c.CollectorEndpoint == "" {
		return errors.New("collector endpoint must be set when tracing is enabled")
	}
	return nil
}
