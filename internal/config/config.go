package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthHMACSecret string
	AuthTokenTTL   time.Duration
	BcryptCost     int

	LogMode      string
	LogRedaction bool

	ExerciseSetBackend string // sql|redis
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	ExerciseSetTTL     time.Duration

	// GradingNumericTol enables numeric answer equivalence when >= 0.
	GradingNumericTol  float64
	GradingRejectEmpty bool

	// CatalogPath overrides the embedded curriculum catalog when set.
	CatalogPath string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	RequestTimeout time.Duration
}

// CORSOrigins returns the allow-list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

// Load reads an optional dotenv file (ENV_FILE, default .env) and then the
// environment. Variables already set win over the file.
func Load() Config {
	file := envOr("ENV_FILE", ".env")
	_ = godotenv.Load(file)
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AuthTokenTTL:   envDuration("AUTH_TOKEN_TTL", 30*time.Minute),
		BcryptCost:     envInt("BCRYPT_COST", 12),

		LogMode:      envOr("LOG_MODE", "dev"),
		LogRedaction: envBool("LOG_REDACTION", true),

		ExerciseSetBackend: envOr("EXERCISE_SET_BACKEND", "sql"),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		ExerciseSetTTL:     envDuration("EXERCISE_SET_TTL", 24*time.Hour),

		GradingNumericTol:  envFloat("GRADING_NUMERIC_TOLERANCE", -1),
		GradingRejectEmpty: envBool("GRADING_REJECT_EMPTY", false),
		CatalogPath:        os.Getenv("CATALOG_PATH"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://learn.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(k)), 64)
	if err != nil {
		return def
	}
	return f
}

// envDuration accepts Go durations ("90s") or bare seconds ("90").
func envDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
