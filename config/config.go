package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const defaultXueceURL = "https://xuece-xqdsj-stagingtest1.unisolution.cn"

// Settings holds everything the server reads from the environment.
type Settings struct {
	AppEnv string
	Port   string

	DBDriver    string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	GCSProjectID       string
	GCSBucket          string
	GCSCredentialsFile string
	PublicBaseURL      string
	SignedURLTTL       time.Duration

	GeminiAPIKey string
	GeminiModel  string

	XueceURLs     map[string]string
	XueceUser     string
	XuecePassword string
}

func (s *Settings) IsProduction() bool {
	return s.AppEnv == "production"
}

// Load reads .env (when present) and then the process environment.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env file: %w", err)
		}
		log.Debug("no .env file found, using process environment")
	}

	s := &Settings{
		AppEnv:             Get("APP_ENV", "development"),
		Port:               Get("PORT", "3000"),
		DBDriver:           Get("DB_DRIVER", "postgres"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTIssuer:          Get("JWT_ISSUER", "appmanage"),
		GCSProjectID:       os.Getenv("GCS_PROJECT_ID"),
		GCSBucket:          os.Getenv("GCS_BUCKET_NAME"),
		GCSCredentialsFile: Get("GOOGLE_APPLICATION_CREDENTIALS", "./credentials.json"),
		PublicBaseURL:      strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        Get("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		XueceUser:          os.Getenv("XUECE_USER"),
		XuecePassword:      os.Getenv("XUECE_PASSWORD"),
		XueceURLs: map[string]string{
			"test1": Get("XUECE_TEST1_URL", defaultXueceURL),
			"test2": Get("XUECE_TEST2_URL", defaultXueceURL),
			"pro":   Get("XUECE_PRO_URL", defaultXueceURL),
		},
	}

	var err error
	if s.TokenTTL, err = hours("TOKEN_EXPIRE_HOURS", 24); err != nil {
		return nil, err
	}
	if s.SignedURLTTL, err = seconds("OSS_TOKEN_EXPIRE", 900); err != nil {
		return nil, err
	}

	if s.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	if s.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	if s.DBDriver != "postgres" && s.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}
	if s.PublicBaseURL == "" && s.GCSBucket != "" {
		s.PublicBaseURL = "https://storage.googleapis.com/" + s.GCSBucket
	}

	return s, nil
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func hours(key string, fallback int) (time.Duration, error) {
	n, err := intEnv(key, fallback)
	return time.Duration(n) * time.Hour, err
}

func seconds(key string, fallback int) (time.Duration, error) {
	n, err := intEnv(key, fallback)
	return time.Duration(n) * time.Second, err
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
