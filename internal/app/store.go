package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lrcr/todoplane/internal/config"
	"github.com/lrcr/todoplane/internal/store"
	"github.com/lrcr/todoplane/internal/store/memory"
	mongostore "github.com/lrcr/todoplane/internal/store/mongo"
	"github.com/lrcr/todoplane/internal/store/postgres"
)

var (
	globalStore store.Store

	globalPostgresPool *pgxpool.Pool
	globalMongoClient  *driver.Client
)

// MustConnectStore builds the store selected by STORE_DRIVER.
func MustConnectStore() {
	cfg := config.Global()

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		globalStore = connectMemory(cfg)
	case config.StoreDriverPostgres:
		globalStore = connectPostgres(cfg.Postgres)
	case config.StoreDriverMongo:
		globalStore = connectMongo(cfg.Mongo)
	default:
		globalLogger.Error().
			Str("driver", cfg.Store.Driver).
			Msg("unknown store driver")
		panic(fmt.Errorf("unknown store driver: %s", cfg.Store.Driver))
	}
}

func DisconnectStore() {
	if globalPostgresPool != nil {
		globalPostgresPool.Close()
		globalLogger.Info().Msg("disconnected from postgres")
	}
	if globalMongoClient != nil {
		err := globalMongoClient.Disconnect(context.Background())
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to disconnect from mongo")
			return
		}
		globalLogger.Info().Msg("disconnected from mongo")
	}
}

func connectMemory(cfg *config.Config) store.Store {
	st := memory.New()
	if cfg.Demo.Enabled {
		err := st.SeedDemo(context.Background(), time.Now())
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to seed demo fixtures")
			panic(err)
		}
		globalLogger.Info().Msg("seeded demo fixtures")
	}
	globalLogger.Info().Msg("initialized in-memory store")
	return st
}

func connectPostgres(cfg config.PostgresConfig) store.Store {
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")

	return postgres.New(globalLogger, globalPostgresPool)
}

func connectMongo(cfg config.MongoConfig) store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := driver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to mongo")
		panic(err)
	}
	globalMongoClient = client

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer pingCancel()

	err = client.Ping(pingCtx, nil)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping mongo")
		panic(err)
	}

	st := mongostore.New(globalLogger, client.Database(cfg.Database))
	err = st.EnsureIndexes(context.Background())
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ensure mongo indexes")
		panic(err)
	}
	globalLogger.Info().
		Str("database", cfg.Database).
		Msg("connected to mongo")

	return st
}
