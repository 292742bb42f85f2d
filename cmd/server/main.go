package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/flight-slot-booking/internal/booking"
	"github.com/iliyamo/flight-slot-booking/internal/config"
	"github.com/iliyamo/flight-slot-booking/internal/database"
	"github.com/iliyamo/flight-slot-booking/internal/handler"
	appmw "github.com/iliyamo/flight-slot-booking/internal/middleware"
	"github.com/iliyamo/flight-slot-booking/internal/queue"
	"github.com/iliyamo/flight-slot-booking/internal/repository"
	"github.com/iliyamo/flight-slot-booking/internal/router"
	publisher "github.com/iliyamo/flight-slot-booking/internal/service"
)

func main() {
	// .env is optional; the process environment wins either way.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response caching disabled")
	}

	events := repository.NewEventRepo(db)
	bans := repository.NewBannedUserRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	ledger := booking.NewLedger(events, cfg.EventCacheTTL)
	admission := booking.NewAdmission(ledger, bans)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicEventHandler(ledger, admission, publisher.PublishRegistrationConfirmed)
	adminEvH := handler.NewAdminEventHandler(ledger)
	adminBanH := handler.NewAdminBanHandler(bans)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rateLimit := appmw.RateLimit(config.LoadRateLimitConfig(), rdb)
	respCache := appmw.ResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, rateLimit, respCache)
	router.RegisterAdmin(e, adminEvH, adminBanH, cfg.JWTSecret)

	// Consumes registration.confirmed and appends to logs/registration.log.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
