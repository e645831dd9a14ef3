package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DARASA"

// Attendance reconciliation policies.
const (
	PolicyStrict = "strict" // POST creates (full coverage, no existing rows), PATCH merges
	PolicyUpsert = "upsert" // POST merges with full coverage, no PATCH
)

type (
	Config struct {
		Debug        bool
		TestMode     bool
		AppName      string
		Env          string
		Build        string
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
		Attendance   AttendanceConfig
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Engine        string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		Name          string
		DisableTLS    bool
		MaxOpenConns  int
	}

	AttendanceConfig struct {
		Policy string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Driver is the database/sql driver name registered for the configured engine.
func (c DatabaseConfig) Driver() string {
	if c.Engine == "pgx" {
		return "pgx"
	}
	return "postgres"
}

func (c AttendanceConfig) Upsert() bool {
	return strings.EqualFold(c.Policy, PolicyUpsert)
}

// NewConfig reads the configuration for the current ENV (dev|test|qa|prod).
// Values come from defaults, then config/.env.<env> (if any), then the environment.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = "dev"
	}

	// defaults
	v.SetDefault("debug", env == "dev" || env == "test")
	v.SetDefault("testMode", env == "test")
	v.SetDefault("appName", "Darasa")
	v.SetDefault("env", env)
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.user", "darasa")
	v.SetDefault("database.password", "darasa")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "darasa")
	v.SetDefault("database.disableTLS", env == "dev" || env == "test")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("attendance.policy", PolicyStrict)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return &conf
}
