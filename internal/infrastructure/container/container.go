package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/config"
	"github.com/gdugdh24/roomly-backend/internal/delivery/http"
	"github.com/gdugdh24/roomly-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/roomly-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/database"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/roomly-backend/internal/infrastructure/server"
	"github.com/gdugdh24/roomly-backend/internal/repository"
	"github.com/gdugdh24/roomly-backend/internal/repository/kv"
	"github.com/gdugdh24/roomly-backend/internal/repository/memory"
	"github.com/gdugdh24/roomly-backend/internal/repository/postgres"
	"github.com/gdugdh24/roomly-backend/internal/usecase/auth"
	"github.com/gdugdh24/roomly-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/roomly-backend/internal/usecase/feed"
	"github.com/gdugdh24/roomly-backend/internal/usecase/filter"
	"github.com/gdugdh24/roomly-backend/internal/usecase/match"
	"github.com/gdugdh24/roomly-backend/internal/usecase/profile"
	"github.com/gdugdh24/roomly-backend/internal/usecase/swipe"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	Redis    *redis.Client
	Server   *server.Server
	Gemini   *gemini.Client
	Sessions *feed.SessionManager
	Watcher  *config.Watcher
}

type stores struct {
	profiles    repository.ProfileRepository
	candidates  repository.CandidateRepository
	swipes      repository.SwipeRepository
	matches     repository.MatchRepository
	preferences repository.PreferenceStore
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	st, err := c.initStores(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	geminiClient, err := gemini.NewClient(cfg.Gemini, logger)
	if err != nil {
		// Don't fail, icebreakers fall back to local suggestions
		logger.Warn("failed to initialize gemini client", zap.Error(err))
		geminiClient, _ = gemini.NewClient(config.GeminiConfig{}, logger)
	}
	c.Gemini = geminiClient

	scorer, err := compatibility.NewScorer(ScoringConfig(cfg.Scoring))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("invalid scoring configuration: %w", err)
	}

	// Use cases
	ledger := swipe.NewLedger()
	lookup := swipe.ChainLookup{ledger, swipe.NewRepositoryLookup(st.swipes)}
	processor := swipe.NewProcessor(ledger, lookup, logger)
	reconciler := swipe.NewReconciler(st.swipes, st.matches, logger)

	sessions := feed.NewSessionManager(
		st.profiles,
		st.candidates,
		st.preferences,
		scorer,
		filter.NewEvaluator(time.Now),
		processor,
		reconciler,
		feed.Config{
			PageSize:         cfg.Discovery.PageSize,
			LowWatermark:     cfg.Discovery.LowWatermark,
			MaxPagesPerFetch: cfg.Discovery.MaxPagesPerFetch,
		},
		logger,
	)
	c.Sessions = sessions

	tokenUseCase := auth.NewTokenUseCase(cfg.JWT.AccessSecret, time.Duration(cfg.JWT.AccessExpiryMin)*time.Minute)
	profileUseCase := profile.NewProfileUseCase(st.profiles, sessions, logger)
	matchUseCase := match.NewMatchUseCase(ledger, st.matches, st.profiles, geminiClient, logger)

	// Handlers
	router := http.NewRouter(
		handler.NewAuthHandler(tokenUseCase),
		handler.NewProfileHandler(profileUseCase),
		handler.NewDiscoveryHandler(sessions),
		handler.NewMatchHandler(matchUseCase),
		middleware.NewAuthMiddleware(tokenUseCase),
		logger,
		!cfg.Server.IsProduction(),
	)
	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)

	if cfg.ConfigFile != "" {
		watcher, err := config.Watch(cfg.ConfigFile, logger, func(next *config.Config) {
			if err := sessions.UpdateScoring(ScoringConfig(next.Scoring)); err != nil {
				logger.Warn("ignoring scoring update", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("config watcher disabled", zap.Error(err))
		} else {
			c.Watcher = watcher
		}
	}

	return c, nil
}

func (c *Container) initStores(cfg *config.Config) (*stores, error) {
	st := &stores{}

	switch cfg.Storage.Type {
	case config.StoragePostgres:
		db, err := database.NewPostgresDB(&cfg.Database, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		profiles := postgres.NewProfileRepository(db)
		st.profiles = profiles
		st.candidates = profiles
		st.swipes = postgres.NewSwipeRepository(db)
		st.matches = postgres.NewMatchRepository(db)
	default:
		swipes := memory.NewSwipeRepository()
		profiles := memory.NewProfileRepository(swipes, cfg.Discovery.SimulatedLatency)
		st.profiles = profiles
		st.candidates = profiles
		st.swipes = swipes
		st.matches = memory.NewMatchRepository()

		if cfg.Storage.SeedPath != "" {
			if err := seedProfiles(profiles, cfg.Storage.SeedPath, c.Logger); err != nil {
				return nil, err
			}
		}
	}

	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(&cfg.Redis, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = client
		st.preferences = kv.NewPreferenceStore(client, 0)
	} else {
		st.preferences = memory.NewPreferenceStore()
	}

	return st, nil
}

func seedProfiles(repo repository.ProfileRepository, path string, logger *zap.Logger) error {
	profiles, err := memory.LoadSeed(path)
	if err != nil {
		return fmt.Errorf("failed to load seed profiles: %w", err)
	}
	n, err := memory.Seed(context.Background(), repo, profiles)
	if err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}
	logger.Info("seeded profiles", zap.Int("count", n), zap.String("path", path))
	return nil
}

// ScoringConfig converts the configured weights and penalties for the scorer.
func ScoringConfig(s config.ScoringConfig) compatibility.Config {
	return compatibility.Config{
		Weights: compatibility.Weights{
			Lifestyle:    s.WeightLifestyle,
			Budget:       s.WeightBudget,
			Location:     s.WeightLocation,
			Preferences:  s.WeightPreferences,
			DealBreakers: s.WeightDealBreakers,
			Interests:    s.WeightInterests,
			Age:          s.WeightAge,
		},
		BudgetMaxGap:         s.BudgetMaxGap,
		LocationPenaltyPerKm: s.LocationPenaltyPerKm,
		UnknownDistanceScore: s.UnknownDistanceScore,
		DealBreakerPenalty:   s.DealBreakerPenalty,
		AgePenaltyPerYear:    s.AgePenaltyPerYear,
	}
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Watcher != nil {
		c.Watcher.Close()
	}
	if c.Sessions != nil {
		c.Sessions.Shutdown()
	}
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
