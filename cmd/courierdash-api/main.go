// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"courierdash/internal/backend"
	"courierdash/internal/config"
	httptransport "courierdash/internal/http"
	"courierdash/internal/infra"
	"courierdash/internal/maps"
	"courierdash/internal/modules/customer"
	"courierdash/internal/modules/draft"
	"courierdash/internal/modules/integrations"
	"courierdash/internal/modules/session"
	"courierdash/internal/modules/tracking"
	"courierdash/internal/parse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	platform := backend.NewClient(cfg.Backend)
	customers := customer.NewService(platform, customer.NewCache(redisClient))
	settings := integrations.NewService(integrations.NewStore(dbPool))
	trackers := tracking.NewManager(platform)
	defer trackers.Close()

	deps := httptransport.RouterDeps{
		JWTSecret: cfg.Auth.JWTSecret,
		Platform:  platform,
		Customers: customers,
		Sessions:  session.NewRegistry(),
		Defaults:  draft.Defaults{},
		Settings:  settings,
		Trackers:  trackers,
	}

	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		deps.Routes = routes
	}

	if cfg.AI.GeminiKey != "" {
		parser, err := parse.NewGeminiParser(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer parser.Close()
		deps.AIParser = parser
	}

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: httptransport.NewRouter(deps)}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
