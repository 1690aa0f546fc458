package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "10MB"
	defaultBcryptCost         = 10
	defaultSessionTTL         = 7 * 24 * time.Hour
	defaultCookieName         = "token"
	defaultMaxImages          = 4
	defaultMaxImageSize       = 5 << 20
	defaultImageFolder        = "products"
	defaultTaxRate            = 0.18
	defaultCurrency           = "INR"
	defaultNewArrivalsLimit   = 6
	defaultShareBaseURL       = "http://localhost:5173/product"
	defaultQRSize             = 256
	defaultQRRecoveryLevel    = "M"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int      `json:"port" yaml:"port"`
		MaxRequestBodySize string   `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		AllowedOrigins     []string `json:"allowedOrigins" yaml:"allowedOrigins"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Database DatabaseConfig `json:"database" yaml:"database"`

	SecretKey struct {
		Session string `json:"session" yaml:"session"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth AuthConfig `json:"auth" yaml:"auth"`

	Storage StorageConfig `json:"storage" yaml:"storage"`

	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`

	Checkout CheckoutConfig `json:"checkout" yaml:"checkout"`

	// PubSub configuration for checkout event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

// DatabaseConfig controls schema management at startup.
type DatabaseConfig struct {
	Migrate bool `json:"migrate" yaml:"migrate"`
	// SlowQueryThreshold marks statements logged as slow. Negative disables it.
	SlowQueryThreshold time.Duration `json:"slowQueryThreshold" yaml:"slowQueryThreshold"`
	// PoolMonitor samples connection pool contention.
	PoolMonitor struct {
		Interval          time.Duration `json:"interval" yaml:"interval"`
		WaitWarnThreshold time.Duration `json:"waitWarnThreshold" yaml:"waitWarnThreshold"`
	} `json:"poolMonitor" yaml:"poolMonitor"`
}

// DefaultSlowQueryThreshold applies when database.slowQueryThreshold is unset.
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// AuthConfig defines password hashing and session cookie settings.
type AuthConfig struct {
	BcryptCost     int           `json:"bcryptCost" yaml:"bcryptCost"`
	SessionTTL     time.Duration `json:"sessionTTL" yaml:"sessionTTL"`
	CookieName     string        `json:"cookieName" yaml:"cookieName"`
	CookieSecure   bool          `json:"cookieSecure" yaml:"cookieSecure"`
	CookieSameSite string        `json:"cookieSameSite" yaml:"cookieSameSite"`
}

// StorageConfig points product image uploads at a gocloud blob bucket.
type StorageConfig struct {
	// BucketURL is any gocloud.dev/blob URL, e.g. mem://, file:///var/media, s3://bucket, gs://bucket.
	BucketURL string `json:"bucketUrl" yaml:"bucketUrl"`

	// PublicBaseURL is prefixed to object keys to build image URLs.
	PublicBaseURL string `json:"publicBaseUrl" yaml:"publicBaseUrl"`

	Folder       string `json:"folder" yaml:"folder"`
	MaxImages    int    `json:"maxImages" yaml:"maxImages"`
	MaxImageSize int64  `json:"maxImageSize" yaml:"maxImageSize"`
}

// CatalogConfig tunes product listings.
type CatalogConfig struct {
	NewArrivalsLimit int `json:"newArrivalsLimit" yaml:"newArrivalsLimit"`

	// ShareBaseURL is the storefront page prefix encoded into product QR codes.
	ShareBaseURL string `json:"shareBaseUrl" yaml:"shareBaseUrl"`
	// QRSize is the edge length of generated QR codes in pixels.
	QRSize int `json:"qrSize" yaml:"qrSize"`
	// QRRecoveryLevel is one of L, M, Q or H.
	QRRecoveryLevel string `json:"qrRecoveryLevel" yaml:"qrRecoveryLevel"`
}

// CheckoutConfig tunes the mock checkout.
type CheckoutConfig struct {
	TaxRate  float64 `json:"taxRate" yaml:"taxRate"`
	Currency string  `json:"currency" yaml:"currency"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(searchPaths, currEnv+".yaml")
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// ENV_VAR_NAME is split on "_" and each segment is matched against the YAML keys,
	// e.g. SECRETKEY_SESSION -> secretKey.session.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills every unset tunable with its default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.HTTP.MaxRequestBodySize) == "" {
		c.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = defaultSessionTTL
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = defaultCookieName
	}
	if c.Auth.CookieSameSite == "" {
		c.Auth.CookieSameSite = "lax"
	}
	if c.Storage.BucketURL == "" {
		c.Storage.BucketURL = "mem://"
	}
	if c.Storage.Folder == "" {
		c.Storage.Folder = defaultImageFolder
	}
	if c.Storage.MaxImages == 0 {
		c.Storage.MaxImages = defaultMaxImages
	}
	if c.Storage.MaxImageSize == 0 {
		c.Storage.MaxImageSize = defaultMaxImageSize
	}
	if c.Catalog.NewArrivalsLimit == 0 {
		c.Catalog.NewArrivalsLimit = defaultNewArrivalsLimit
	}
	if c.Catalog.ShareBaseURL == "" {
		c.Catalog.ShareBaseURL = defaultShareBaseURL
	}
	if c.Catalog.QRSize == 0 {
		c.Catalog.QRSize = defaultQRSize
	}
	if c.Catalog.QRRecoveryLevel == "" {
		c.Catalog.QRRecoveryLevel = defaultQRRecoveryLevel
	}
	if c.Checkout.TaxRate == 0 {
		c.Checkout.TaxRate = defaultTaxRate
	}
	if c.Checkout.Currency == "" {
		c.Checkout.Currency = defaultCurrency
	}
}

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey.Session) == "" {
		return errors.New("secretKey.session must be provided")
	}
	if c.Auth.BcryptCost < defaultBcryptCost {
		return errors.Errorf("auth.bcryptCost must be at least %d, got %d", defaultBcryptCost, c.Auth.BcryptCost)
	}
	if c.Auth.SessionTTL < 0 {
		return errors.New("auth.sessionTTL must be positive")
	}
	switch strings.ToLower(c.Auth.CookieSameSite) {
	case "lax", "strict", "none":
	default:
		return errors.Errorf("auth.cookieSameSite must be lax, strict or none, got %q", c.Auth.CookieSameSite)
	}
	if c.Checkout.TaxRate < 0 {
		return errors.New("checkout.taxRate must not be negative")
	}

	return nil
}

func findConfigFile(searchPaths []string, name string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
