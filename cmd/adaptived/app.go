package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/mindengage-adaptive/internal/auth"
	"github.com/mind-engage/mindengage-adaptive/internal/config"
	"github.com/mind-engage/mindengage-adaptive/internal/content"
	"github.com/mind-engage/mindengage-adaptive/internal/db"
	"github.com/mind-engage/mindengage-adaptive/internal/grading"
	"github.com/mind-engage/mindengage-adaptive/internal/learning"
	"github.com/mind-engage/mindengage-adaptive/internal/logger"
	"github.com/mind-engage/mindengage-adaptive/internal/store"
)

// app holds the wired services for one process.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	db       *sql.DB
	rdb      *redis.Client
	store    *store.Store
	tokens   *auth.Tokens
	accounts *auth.Accounts
	engine   *learning.Engine
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(cfg.LogMode, logger.WithRedaction(cfg.LogRedaction), logger.WithHashSalt(cfg.AuthHMACSecret))
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	h, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return h, nil
}

func newApp(ctx context.Context, cfg config.Config, log *logger.Logger) (*app, error) {
	h, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, db: h}
	a.store = store.New(h, db.Driver(cfg.DBDriver))

	catalog, err := loadCatalog(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var sets content.SetStore
	switch cfg.ExerciseSetBackend {
	case "redis":
		a.rdb, err = content.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		sets = content.NewRedisSetStore(a.rdb, cfg.ExerciseSetTTL)
	case "sql", "":
		sets = content.NewSQLSetStore(h)
	default:
		a.Close()
		return nil, fmt.Errorf("unknown EXERCISE_SET_BACKEND %q", cfg.ExerciseSetBackend)
	}

	a.tokens = auth.NewTokens(cfg.AuthHMACSecret, cfg.AuthTokenTTL)
	a.accounts = auth.NewAccounts(a.store, a.tokens, cfg.BcryptCost, log.With("service", "accounts"))
	var gradeOpts []grading.Option
	if cfg.GradingNumericTol >= 0 {
		gradeOpts = append(gradeOpts, grading.WithNumericTolerance(cfg.GradingNumericTol))
	}
	if cfg.GradingRejectEmpty {
		gradeOpts = append(gradeOpts, grading.WithRejectEmpty())
	}
	a.engine = learning.New(a.store, content.NewTemplateProvider(catalog), sets, catalog,
		learning.WithGrader(grading.NewDefaultGrader(gradeOpts...)),
		learning.WithLogger(log))

	log.Info("services ready",
		"db", cfg.DBDriver, "exercise_sets", cfg.ExerciseSetBackend, "mode", cfg.Mode)
	return a, nil
}

func loadCatalog(cfg config.Config) (*content.Catalog, error) {
	if cfg.CatalogPath != "" {
		c, err := content.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", cfg.CatalogPath, err)
		}
		return c, nil
	}
	return content.DefaultCatalog()
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
