package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/config"
	"github.com/Skotchmaster/diamond_shop/internal/db"
	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/httpserver"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/diamond_shop/internal/mykafka"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/storefront"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx, stop := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer stop()

	gdb, err := db.Open(ctx, cfg.SessionDSN)
	if err != nil {
		log.Fatalf("session db: %v", err)
	}
	store := &repo.GormRepo{DB: gdb}
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var pub events.Publisher = events.Nop{}
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		if err != nil {
			log.Fatal(err)
		}
		pub = prod
	}

	hub := storefront.NewHub(storefront.Deps{
		BaseURL: cfg.APIBaseURL,
		Client: apiclient.Options{
			Timeout: cfg.APITimeout,
			RPS:     cfg.APIRPS,
			Burst:   cfg.APIBurst,
			Logger:  logger,
		},
		Store:         store,
		Events:        pub,
		MaxWorkspaces: cfg.MaxWorkspaces,
	})
	go hub.RunSweeper(ctx, time.Minute, cfg.WorkspaceIdle)

	var csrfCfg *csrf.Config
	if cfg.CSRFEnabled {
		c := csrf.DefaultConfig()
		c.Secure = cfg.CookieSecure
		c.SkipPaths = []string{"/health/live", "/health/ready", "/api/v1/session/login", "/api/v1/session/register"}
		csrfCfg = &c
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())

	if err := httpserver.Register(e, &httpserver.Deps{
		Hub:          hub,
		BackendURL:   cfg.APIBaseURL,
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
		CSRF:         csrfCfg,
		Ready:        func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	}); err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:              cfg.StorefrontAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      cfg.APITimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Printf("storefront listening on %s", cfg.StorefrontAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		log.Println("force exit")
		os.Exit(1)
	}()

	log.Println("shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("db close error: %v", err)
	}
	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
