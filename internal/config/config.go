package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	AI       AIConfig
	CacheTTL CacheTTLConfig
	Logger   LoggerConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// DialTimeout bounds the connection attempt so an unavailable Redis
	// degrades to the in-memory cache without stalling requests.
	DialTimeout time.Duration
}

type AIConfig struct {
	// Provider selects the collaborator implementation: "googleai",
	// "groq" or "stub".
	Provider string
	APIKey   string
	Model    string
	// RequestTimeout bounds every generation/grading call.
	RequestTimeout time.Duration
}

type CacheTTLConfig struct {
	Quiz    time.Duration
	History time.Duration
	Hints   time.Duration
}

type LoggerConfig struct {
	Env   string
	Level string
}

type JWTConfig struct {
	Secret string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("redis.dial_timeout", "500ms")
	viper.SetDefault("ai.provider", "stub")
	viper.SetDefault("ai.request_timeout", "30s")
	viper.SetDefault("cache.quiz_ttl", "1h")
	viper.SetDefault("cache.history_ttl", "30m")
	viper.SetDefault("cache.hints_ttl", "24h")
	viper.SetDefault("logger.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Address:     viper.GetString("redis.address"),
			Password:    viper.GetString("redis.password"),
			DB:          viper.GetInt("redis.db"),
			DialTimeout: viper.GetDuration("redis.dial_timeout"),
		},
		AI: AIConfig{
			Provider:       viper.GetString("ai.provider"),
			APIKey:         viper.GetString("ai.api_key"),
			Model:          viper.GetString("ai.model"),
			RequestTimeout: viper.GetDuration("ai.request_timeout"),
		},
		CacheTTL: CacheTTLConfig{
			Quiz:    viper.GetDuration("cache.quiz_ttl"),
			History: viper.GetDuration("cache.history_ttl"),
			Hints:   viper.GetDuration("cache.hints_ttl"),
		},
		Logger: LoggerConfig{
			Env:   viper.GetString("logger.env"),
			Level: viper.GetString("logger.level"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
	}

	// Override with environment variables if set
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.Provider = provider
	}
	if apiKey := os.Getenv("AI_API_KEY"); apiKey != "" {
		config.AI.APIKey = apiKey
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}

	return config, nil
}

func (c *Config) GetDSN() string {
	// Postgres DSN format used by the pgx stdlib driver
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}
