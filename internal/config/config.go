// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration, unmarshalled from config.yaml and the environment.
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	App struct {
		Mode            string `mapstructure:"mode"`
		HistoryLimit    int    `mapstructure:"history_limit"`
		HistoryPageSize int    `mapstructure:"history_page_size"`
		TimeZone        string `mapstructure:"time_zone"`
	} `mapstructure:"app"`
	Storage struct {
		Driver     string `mapstructure:"driver"`
		SQLitePath string `mapstructure:"sqlite_path"`
		Mode       string `mapstructure:"mode"`
		RemoteURL  string `mapstructure:"remote_url"`
	} `mapstructure:"storage"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	Redis struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`
	OpenAI struct {
		APIKey      string        `mapstructure:"api_key"`
		BaseURL     string        `mapstructure:"base_url"`
		Model       string        `mapstructure:"model"`
		MaxTokens   int           `mapstructure:"max_tokens"`
		Temperature float64       `mapstructure:"temperature"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"openai"`
	Recognition struct {
		Mode       string `mapstructure:"mode"`
		BackendURL string `mapstructure:"backend_url"`
	} `mapstructure:"recognition"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		ExposedHeaders   []string `mapstructure:"exposed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
}

var Cfg Config

// LoadConfig reads .env, config.yaml under path and the environment into Cfg.
func LoadConfig(path string) error {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("app.mode", "APP_MODE")
	// Defaulted here so an explicit 0 survives applyDefaults.
	v.SetDefault("openai.temperature", DefaultTemperature)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}
	if err := cfg.applyDefaults(); err != nil {
		return err
	}
	Cfg = cfg

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("App Mode: %s", Cfg.App.Mode)
	log.Printf("Storage: driver=%s mode=%s", Cfg.Storage.Driver, Cfg.Storage.Mode)
	log.Printf("Recognition Mode: %s", Cfg.Recognition.Mode)
	log.Printf("OpenAI Key Configured: %t", Cfg.OpenAI.APIKey != "")

	return nil
}

func (c *Config) applyDefaults() error {
	if c.Server.Port == "" {
		log.Printf("Server port not set, using default '%s'", DefaultServerPort)
		c.Server.Port = DefaultServerPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	c.App.Mode = strings.ToLower(c.App.Mode)
	switch c.App.Mode {
	case "":
		log.Printf("App mode not set, using default '%s'", ModeDevelopment)
		c.App.Mode = ModeDevelopment
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("unknown app.mode %q", c.App.Mode)
	}
	if c.App.HistoryLimit <= 0 {
		log.Printf("History limit not set or invalid, using default '%d'", DefaultHistoryLimit)
		c.App.HistoryLimit = DefaultHistoryLimit
	}
	if c.App.HistoryPageSize <= 0 {
		c.App.HistoryPageSize = DefaultHistoryPageSize
	}
	if c.App.TimeZone == "" {
		c.App.TimeZone = DefaultTimeZone
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = DefaultSQLitePath
	}
	if c.Storage.Mode == "" {
		// production clients talk to the backend; development keeps data on the device
		if c.App.Mode == ModeProduction {
			c.Storage.Mode = StorageModeRemote
		} else {
			c.Storage.Mode = StorageModeLocal
		}
	}
	if c.Storage.RemoteURL == "" {
		c.Storage.RemoteURL = DefaultBackendURL
	}

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = DefaultOpenAIModel
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = DefaultMaxTokens
	}
	if c.OpenAI.Temperature < 0 {
		c.OpenAI.Temperature = DefaultTemperature
	}
	if c.OpenAI.Timeout <= 0 {
		c.OpenAI.Timeout = DefaultOpenAITimeout
	}
	if c.OpenAI.APIKey == "" {
		log.Println("Warning: OpenAI API key is not set.")
	}

	if c.Recognition.Mode == "" {
		if c.App.Mode == ModeProduction {
			c.Recognition.Mode = RecognitionProxied
		} else {
			c.Recognition.Mode = RecognitionDirect
		}
	}
	if c.Recognition.BackendURL == "" {
		c.Recognition.BackendURL = c.Storage.RemoteURL
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Content-Type"}
	}
	return nil
}
