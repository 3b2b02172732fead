package config

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Logging    LoggingConfig
	Discovery  DiscoveryConfig
	Scoring    ScoringConfig
	Gemini     GeminiConfig
	ConfigFile string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StorageConfig struct {
	// Type is "memory" or "postgres".
	Type     string
	SeedPath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiryMin int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type DiscoveryConfig struct {
	PageSize         int
	LowWatermark     int
	MaxPagesPerFetch int
	// SimulatedLatency delays in-memory candidate fetches.
	SimulatedLatency time.Duration
}

type ScoringConfig struct {
	WeightLifestyle      float64
	WeightBudget         float64
	WeightLocation       float64
	WeightPreferences    float64
	WeightDealBreakers   float64
	WeightInterests      float64
	WeightAge            float64
	BudgetMaxGap         float64
	LocationPenaltyPerKm float64
	UnknownDistanceScore float64
	DealBreakerPenalty   float64
	AgePenaltyPerYear    float64
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")

	v.SetDefault("STORAGE_TYPE", StorageMemory)
	v.SetDefault("SEED_PATH", "configs/seed_profiles.yaml")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("JWT_ACCESS_EXPIRY_MIN", 60*24)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DISCOVERY_PAGE_SIZE", 20)
	v.SetDefault("DISCOVERY_LOW_WATERMARK", 3)
	v.SetDefault("DISCOVERY_MAX_PAGES_PER_FETCH", 3)
	v.SetDefault("DISCOVERY_SIMULATED_LATENCY", "0s")

	v.SetDefault("SCORING_WEIGHT_LIFESTYLE", 0.25)
	v.SetDefault("SCORING_WEIGHT_BUDGET", 0.20)
	v.SetDefault("SCORING_WEIGHT_LOCATION", 0.15)
	v.SetDefault("SCORING_WEIGHT_PREFERENCES", 0.20)
	v.SetDefault("SCORING_WEIGHT_DEAL_BREAKERS", 0.10)
	v.SetDefault("SCORING_WEIGHT_INTERESTS", 0.05)
	v.SetDefault("SCORING_WEIGHT_AGE", 0.05)
	v.SetDefault("SCORING_BUDGET_MAX_GAP", 1500)
	v.SetDefault("SCORING_LOCATION_PENALTY_PER_KM", 2)
	v.SetDefault("SCORING_UNKNOWN_DISTANCE_SCORE", 50)
	v.SetDefault("SCORING_DEAL_BREAKER_PENALTY", 40)
	v.SetDefault("SCORING_AGE_PENALTY_PER_YEAR", 10)

	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile reads path when it exists; environment variables win over the
// file and defaults fill the rest.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from the file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Storage: StorageConfig{
			Type:     v.GetString("STORAGE_TYPE"),
			SeedPath: v.GetString("SEED_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret:    v.GetString("JWT_ACCESS_SECRET"),
			AccessExpiryMin: v.GetInt("JWT_ACCESS_EXPIRY_MIN"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Discovery: DiscoveryConfig{
			PageSize:         v.GetInt("DISCOVERY_PAGE_SIZE"),
			LowWatermark:     v.GetInt("DISCOVERY_LOW_WATERMARK"),
			MaxPagesPerFetch: v.GetInt("DISCOVERY_MAX_PAGES_PER_FETCH"),
			SimulatedLatency: v.GetDuration("DISCOVERY_SIMULATED_LATENCY"),
		},
		Scoring: ScoringConfig{
			WeightLifestyle:      v.GetFloat64("SCORING_WEIGHT_LIFESTYLE"),
			WeightBudget:         v.GetFloat64("SCORING_WEIGHT_BUDGET"),
			WeightLocation:       v.GetFloat64("SCORING_WEIGHT_LOCATION"),
			WeightPreferences:    v.GetFloat64("SCORING_WEIGHT_PREFERENCES"),
			WeightDealBreakers:   v.GetFloat64("SCORING_WEIGHT_DEAL_BREAKERS"),
			WeightInterests:      v.GetFloat64("SCORING_WEIGHT_INTERESTS"),
			WeightAge:            v.GetFloat64("SCORING_WEIGHT_AGE"),
			BudgetMaxGap:         v.GetFloat64("SCORING_BUDGET_MAX_GAP"),
			LocationPenaltyPerKm: v.GetFloat64("SCORING_LOCATION_PENALTY_PER_KM"),
			UnknownDistanceScore: v.GetFloat64("SCORING_UNKNOWN_DISTANCE_SCORE"),
			DealBreakerPenalty:   v.GetFloat64("SCORING_DEAL_BREAKER_PENALTY"),
			AgePenaltyPerYear:    v.GetFloat64("SCORING_AGE_PENALTY_PER_YEAR"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		ConfigFile: path,
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Discovery.PageSize <= 0 {
		return fmt.Errorf("discovery page size must be positive")
	}
	if c.Discovery.LowWatermark <= 0 {
		return fmt.Errorf("discovery low watermark must be positive")
	}
	return c.Scoring.Validate()
}

// Validate checks that the weights are non-negative and sum to 1.
func (s ScoringConfig) Validate() error {
	weights := s.Weights()
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("scoring weights must not be negative")
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1, got %.4f", sum)
	}
	if s.BudgetMaxGap <= 0 {
		return fmt.Errorf("scoring budget max gap must be positive")
	}
	return nil
}

// Weights returns the category weights in scoring order.
func (s ScoringConfig) Weights() []float64 {
	return []float64{
		s.WeightLifestyle,
		s.WeightBudget,
		s.WeightLocation,
		s.WeightPreferences,
		s.WeightDealBreakers,
		s.WeightInterests,
		s.WeightAge,
	}
}

func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
