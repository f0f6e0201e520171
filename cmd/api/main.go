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

	"github.com/joho/godotenv"

	"github.com/mvasquez/persona-sim/internal/config"
	"github.com/mvasquez/persona-sim/internal/handler"
	"github.com/mvasquez/persona-sim/internal/model/persona"
	"github.com/mvasquez/persona-sim/internal/service/ai"
	simservice "github.com/mvasquez/persona-sim/internal/service/simulation"
	"github.com/mvasquez/persona-sim/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	sessionStore, closeStore, err := newSessionStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer closeStore()

	var completer simservice.Completer = ai.Disabled{}
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Fatalf("failed to initialize completion service: %v", err)
		}
		completer = aiSvc
		log.Println("completion service initialized successfully")
	} else {
		log.Println("model credentials not configured, turns will fail until provided")
	}

	simSvc := simservice.NewService(personaStore, sessionStore, completer, cfg.Store.SessionTTL)
	router := handler.NewRouter(personaStore, simSvc)

	startServer(ctx, cfg.Server, router)
}

// newSessionStore selects Redis when configured, otherwise an in-memory
// store that only survives the process.
func newSessionStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, using in-memory session store")
		return store.NewMemoryStore(), func() {}, nil
	}

	redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	log.Println("connected to Redis session store")
	closeFn := func() {
		if err := redisStore.Close(); err != nil {
			log.Printf("failed to close redis store: %v", err)
		}
	}
	return redisStore, closeFn, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("persona-sim backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
