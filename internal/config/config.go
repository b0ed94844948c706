package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned when no Gemini API key is configured.
var ErrMissingCredential = errors.New("config: GEMINI_API_KEY (or API_KEY) is not set")

const (
	defaultTextModel      = "gemini-2.5-flash"
	defaultImageModel     = "gemini-2.5-flash-image"
	defaultVertexLocation = "us-central1"
	defaultImagenModel    = "imagegeneration@006"
)

// Image backends selectable with IMAGE_BACKEND.
const (
	ImageBackendGemini = "gemini"
	ImageBackendVertex = "vertex"
)

// Config holds runtime configuration values.
type Config struct {
	AppEnv      string
	Port        string
	StaticDir   string
	DatabaseURL string
	RedisURL    string
	RateLimit   int
	// TrustedProxies is a comma-separated list of CIDRs whose
	// X-Forwarded-For header is believed.
	TrustedProxies string
	AI             AIConfig
	Media          MediaConfig
}

// AIConfig selects the credential and models for the remote calls.
type AIConfig struct {
	APIKey       string
	TextModel    string
	ImageModel   string
	ImageBackend string
	Vertex       VertexConfig
}

// VertexConfig points the image backend at Imagen on Vertex AI.
type VertexConfig struct {
	ProjectID       string
	Location        string
	Model           string
	APIKey          string
	CredentialsJSON string
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	PublicURL       string
	KeyPrefix       string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
	LocalDir        string
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

// FromEnv loads configuration from environment variables and applies defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		AppEnv:      getenv("APP_ENV", "production"),
		Port:        getenv("APP_PORT", "8080"),
		StaticDir:   getenv("STATIC_DIR", "web"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		RateLimit:   getenvInt("RATE_LIMIT_PER_MINUTE", 10),

		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		AI: AIConfig{
			APIKey:       strings.TrimSpace(getenv("GEMINI_API_KEY", os.Getenv("API_KEY"))),
			TextModel:    getenv("GEMINI_TEXT_MODEL", defaultTextModel),
			ImageModel:   getenv("GEMINI_IMAGE_MODEL", defaultImageModel),
			ImageBackend: strings.ToLower(getenv("IMAGE_BACKEND", ImageBackendGemini)),
			Vertex: VertexConfig{
				ProjectID:       os.Getenv("VERTEX_PROJECT_ID"),
				Location:        getenv("VERTEX_LOCATION", defaultVertexLocation),
				Model:           getenv("VERTEX_IMAGEN_MODEL", defaultImagenModel),
				APIKey:          os.Getenv("VERTEX_API_KEY"),
				CredentialsJSON: os.Getenv("VERTEX_CREDENTIALS_JSON"),
			},
		},
		Media: MediaConfig{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:       strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle:  getenvBool("S3_FORCE_PATH_STYLE", false),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			LocalDir:        os.Getenv("MEDIA_DIR"),
		},
	}

	if cfg.AI.APIKey == "" {
		return Config{}, ErrMissingCredential
	}
	if cfg.Port == "" {
		return Config{}, errors.New("config: APP_PORT cannot be empty")
	}
	switch cfg.AI.ImageBackend {
	case ImageBackendGemini:
	case ImageBackendVertex:
		if cfg.AI.Vertex.ProjectID == "" {
			return Config{}, errors.New("config: VERTEX_PROJECT_ID is required when IMAGE_BACKEND=vertex")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown IMAGE_BACKEND %q", cfg.AI.ImageBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return fallback
	}

	return parsed
}
