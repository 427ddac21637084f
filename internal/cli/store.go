package cli

import (
	"context"
	"fmt"

	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/database"
	"github.com/seuros/jogo/internal/store"
	"github.com/seuros/jogo/internal/store/memory"
	"github.com/seuros/jogo/internal/store/mongo"
	"github.com/seuros/jogo/internal/store/postgres"
)

// openStore connects the backend selected by cfg.StoreDriver. Replaced in tests.
var openStore = func(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := database.Connect(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return postgres.New(database.DB), nil
	case config.DriverMongo:
		return mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverMemory:
		return memory.New(nil), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// withStore loads configuration, opens the store and runs fn against it.
func withStore(ctx context.Context, fn func(context.Context, *config.Config, store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(ctx, cfg, st)
}
