package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/catalog-loader/internal/config"
	"github.com/Sternrassler/catalog-loader/pkg/cache"
	"github.com/Sternrassler/catalog-loader/pkg/catalog"
	"github.com/Sternrassler/catalog-loader/pkg/client"
)

// deps are the collaborators built from a validated config.
type deps struct {
	redis  redis.UniversalClient // nil when the cache is disabled
	client *client.Client
	loader *catalog.Loader
}

func (d *deps) Close() {
	if d.redis != nil {
		d.redis.Close()
	}
}

func buildDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	d := &deps{}

	clientCfg := client.DefaultConfig(cfg.HTTP.UserAgent)
	clientCfg.Timeout = cfg.HTTPTimeout()

	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisURL})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Cache.RedisURL, err)
		}
		log.Info().Str("redis_url", cfg.Cache.RedisURL).Msg("Connected to Redis")
		d.redis = rdb
		clientCfg.Cache = cache.NewManager(rdb)
	}

	c, err := client.New(clientCfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	d.client = c

	l, err := catalog.New(c, cfg.LoaderConfig())
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create loader: %w", err)
	}
	d.loader = l

	return d, nil
}
