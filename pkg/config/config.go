package config

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverCosmic = "cosmic"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port    string
	AppEnv  string
	BaseURL string

	// CMS backend selection and credentials
	CMSDriver        string
	CosmicAPIURL     string
	CosmicBucketSlug string
	CosmicReadKey    string
	CosmicWriteKey   string
	DatabaseURL      string
	HTTPTimeout      time.Duration

	// Editor auth
	EditorAuth         bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	JWTSecret          string
	FrontendURL        string
	AllowedEmails      []string

	LogLevel  string
	LogFormat string

	SaveCloseDelay time.Duration
}

// Load reads .env (if present), an optional wireframe.yaml and the process
// environment, in that order of precedence from lowest to highest.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("wireframe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional

	v.AutomaticEnv()

	return fromViper(v)
}

// defaultJWTSecret only suits local development.
const defaultJWTSecret = "secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("CMS_DRIVER", DriverCosmic)
	v.SetDefault("COSMIC_API_URL", "https://api.cosmicjs.com/v3")
	v.SetDefault("DATABASE_URL", "file:wireframe.sqlite")
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("EDITOR_AUTH", false)
	v.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("FRONTEND_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SAVE_CLOSE_DELAY", "1500ms")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               v.GetString("PORT"),
		AppEnv:             v.GetString("APP_ENV"),
		BaseURL:            v.GetString("BASE_URL"),
		CMSDriver:          strings.ToLower(strings.TrimSpace(v.GetString("CMS_DRIVER"))),
		CosmicAPIURL:       strings.TrimRight(v.GetString("COSMIC_API_URL"), "/"),
		CosmicBucketSlug:   v.GetString("COSMIC_BUCKET_SLUG"),
		CosmicReadKey:      v.GetString("COSMIC_READ_KEY"),
		CosmicWriteKey:     v.GetString("COSMIC_WRITE_KEY"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		HTTPTimeout:        v.GetDuration("HTTP_TIMEOUT"),
		EditorAuth:         v.GetBool("EDITOR_AUTH"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		FrontendURL:        v.GetString("FRONTEND_URL"),
		AllowedEmails:      splitList(v.GetString("ALLOWED_EMAILS")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		SaveCloseDelay:     v.GetDuration("SAVE_CLOSE_DELAY"),
	}
}

// Validate checks that the selected CMS driver has what it needs to connect.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.CMSDriver, validation.Required, validation.In(DriverCosmic, DriverSQLite)),
		validation.Field(&c.CosmicBucketSlug, validation.When(c.CMSDriver == DriverCosmic, validation.Required)),
		validation.Field(&c.CosmicReadKey, validation.When(c.CMSDriver == DriverCosmic, validation.Required)),
		validation.Field(&c.DatabaseURL, validation.When(c.CMSDriver == DriverSQLite, validation.Required)),
		validation.Field(&c.JWTSecret,
			validation.When(c.EditorAuth, validation.Required),
			validation.When(c.EditorAuth && c.IsProduction(),
				validation.NotIn(defaultJWTSecret).Error("must be set to a non-default value in production")),
		),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
