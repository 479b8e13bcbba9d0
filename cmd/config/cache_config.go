package config

import (
	"LeftoverLink/internal/utils"
	"LeftoverLink/pkg/cache"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const memoryCleanupInterval = time.Minute

// ConnectCache uses Redis/Valkey when REDIS_ADDR is set and reachable, and an
// in-process store otherwise.
func ConnectCache() *cache.Cache {
	ttl := time.Duration(utils.GetConfigInt("CACHE_TTL_SECONDS", int(cache.DefaultTTL/time.Second))) * time.Second

	addr := utils.GetConfig("REDIS_ADDR")
	if addr == "" {
		log.Info("REDIS_ADDR not set, using in-memory cache")
		return cache.New(cache.NewMemoryStore(memoryCleanupInterval), ttl)
	}

	cfg := cache.DefaultValkeyConfig()
	cfg.Addr = addr
	cfg.Password = utils.GetConfig("REDIS_PASSWORD")
	cfg.DB = utils.GetConfigInt("REDIS_DB", 0)

	store, err := cache.NewValkeyStore(cfg)
	if err != nil {
		log.Warnw("redis unavailable, using in-memory cache", "addr", addr, "error", err)
		return cache.New(cache.NewMemoryStore(memoryCleanupInterval), ttl)
	}
	log.Infow("connected to redis", "addr", addr)
	return cache.New(store, ttl)
}
