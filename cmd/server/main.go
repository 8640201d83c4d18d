package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/number-reservation/internal/config"
    "github.com/iliyamo/number-reservation/internal/handler"
    "github.com/iliyamo/number-reservation/internal/hub"
    "github.com/iliyamo/number-reservation/internal/middleware"
    "github.com/iliyamo/number-reservation/internal/queue"
    "github.com/iliyamo/number-reservation/internal/repository"
    "github.com/iliyamo/number-reservation/internal/router"
    queue_publisher "github.com/iliyamo/number-reservation/internal/service"
)

func main() {
    _ = godotenv.Load() // optional .env for local development

    cfg := config.Load()

    // The realtime core: one store, one hub, the dispatcher between them.
    store := repository.NewReservationStore(cfg.LeaseDuration, nil)
    h := hub.New()
    dispatcher := hub.NewDispatcher(store, h)
    dispatcher.Publish = queue_publisher.PublishReservationPurchased

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    sweeper := hub.NewSweeper(store, cfg.SweepInterval, dispatcher.BroadcastReservations, nil)
    go sweeper.Run(ctx)

    if cfg.ConsumerEnabled {
        go func() {
            if err := queue.StartPurchaseConsumer(); err != nil {
                log.Printf("purchase-consumer stopped: %v", err)
            }
        }()
    }

    e := echo.New()
    e.HideBanner = true

    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())
    router.RegisterRoutes(e, handler.NewWSHandler(h, dispatcher, store), rateLimit)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, lease=%s, sweep=%s)", addr, cfg.Env, cfg.LeaseDuration, cfg.SweepInterval)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
