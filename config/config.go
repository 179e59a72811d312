package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Settings is the runtime configuration read from the environment.
type Settings struct {
	Port           string
	DatabaseDSN    string
	JWTSecret      string
	JWTTTL         time.Duration
	StorageBackend string
	GCSBucket      string
	UploadDir      string
	CORSOrigins    []string
	DebugErrors    bool
	SeedDemo       bool
	LogLevel       string
}

// App holds the settings loaded by Load.
var App = defaults()

func defaults() *Settings {
	return &Settings{
		Port:           "8080",
		JWTTTL:         24 * time.Hour,
		StorageBackend: "local",
		UploadDir:      "./uploads",
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
	}
}

// Load reads .env (if present) and the process environment.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("STORAGE_BACKEND", "")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DEBUG_ERRORS", false)
	v.SetDefault("SEED_DEMO", false)
	v.SetDefault("LOG_LEVEL", "info")

	App = fromViper(v)
	return App
}

func fromViper(v *viper.Viper) *Settings {
	s := &Settings{
		Port:        v.GetString("PORT"),
		DatabaseDSN: v.GetString("DB_DSN"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		JWTTTL:      time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
		GCSBucket:   v.GetString("GCS_BUCKET"),
		UploadDir:   v.GetString("UPLOAD_DIR"),
		DebugErrors: v.GetBool("DEBUG_ERRORS"),
		SeedDemo:    v.GetBool("SEED_DEMO"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
	}
	if s.JWTTTL <= 0 {
		s.JWTTTL = 24 * time.Hour
	}

	// Cloud Run sets K_SERVICE; USE_GCS is kept for older deployments
	s.StorageBackend = strings.ToLower(v.GetString("STORAGE_BACKEND"))
	if s.StorageBackend == "" {
		if v.GetBool("USE_GCS") || v.GetString("K_SERVICE") != "" {
			s.StorageBackend = "gcs"
		} else {
			s.StorageBackend = "local"
		}
	}

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			s.CORSOrigins = append(s.CORSOrigins, o)
		}
	}
	return s
}

// Connect opens the database and runs migrations.
func Connect(s *Settings) {
	var err error
	DB, err = gorm.Open(postgres.Open(s.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := Migrations(DB); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if s.SeedDemo {
		if err := SeedDemo(DB); err != nil {
			slog.Warn("demo seeding encountered issues", "error", err)
		}
	}
}
