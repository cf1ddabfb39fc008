package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/barbershop-queue/internal/cache"
	"github.com/iliyamo/barbershop-queue/internal/config"
	"github.com/iliyamo/barbershop-queue/internal/database"
	"github.com/iliyamo/barbershop-queue/internal/event"
	"github.com/iliyamo/barbershop-queue/internal/handler"
	"github.com/iliyamo/barbershop-queue/internal/middleware"
	"github.com/iliyamo/barbershop-queue/internal/repository"
	"github.com/iliyamo/barbershop-queue/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the aggregate cache runs in-process
	// and the response cache and rate limiter disable themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; using in-process aggregate cache")
	}

	var store cache.Store
	if rdb != nil {
		store = cache.NewRedis(rdb, "agg")
	} else {
		store = cache.NewMemory()
	}
	aggCfg := config.LoadAggregateCacheConfig()
	agg := cache.NewAggregates(store, aggCfg.WaitTTL, aggCfg.HoursTTL)

	entries := repository.NewEntryRepo(db)
	clients := repository.NewClientRepo(db)
	locations := repository.NewLocationRepo(db)
	services := repository.NewServiceTypeRepo(db)
	agents := repository.NewAgentRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	queueH := handler.NewQueueHandler(entries, clients, locations, services, agents, agg)
	ownerH := handler.NewOwnerHandler(locations, services, agents, clients, entries, agg)

	// Mirror queue events into logs/queue.log; reconnects on its own.
	go func() {
		if err := event.StartConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, queueH, ownerH)
	router.RegisterStaff(e, queueH, cfg.JWTSecret)
	router.RegisterOwner(e, ownerH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
