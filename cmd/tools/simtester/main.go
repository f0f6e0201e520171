// Command simtester drives one simulation end to end against the real
// stack: start, one turn, reload, verify the transcript shape. It needs
// model credentials and, unless -memory is set, a reachable Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/mvasquez/persona-sim/internal/config"
	"github.com/mvasquez/persona-sim/internal/model/persona"
	"github.com/mvasquez/persona-sim/internal/service/ai"
	simservice "github.com/mvasquez/persona-sim/internal/service/simulation"
	"github.com/mvasquez/persona-sim/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	simulationID := flag.String("session", "", "simulation id, generated when empty")
	personaID := flag.String("persona", "helpful-assistant", "persona id from the catalog")
	message := flag.String("message", "Hello, can you help me with my resume?", "user message for the turn")
	timeout := flag.Duration("timeout", 60*time.Second, "overall run timeout")
	useMemory := flag.Bool("memory", false, "use the in-memory store instead of Redis")
	flag.Parse()

	id := *simulationID
	if id == "" {
		id = fmt.Sprintf("simtester-%d", time.Now().UnixNano())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sessionStore, cleanup, err := selectStore(ctx, cfg.Store, *useMemory)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer cleanup()

	completer, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize completion service: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	svc := simservice.NewService(personaStore, sessionStore, completer, cfg.Store.SessionTTL)

	log.Printf("starting simulation %s with persona %s", id, *personaID)
	session, err := svc.Start(ctx, id, *personaID)
	if err != nil {
		log.Fatalf("start failed: %v", err)
	}
	log.Printf("simulation started with %d message(s)", len(session.Messages))

	log.Printf("user says: %q", *message)
	reply, err := svc.ProcessTurn(ctx, id, *message)
	if err != nil {
		log.Fatalf("turn failed: %v", err)
	}
	log.Printf("assistant says: %q", reply)

	loaded, err := svc.LoadState(ctx, id)
	if err != nil {
		log.Fatalf("load failed: %v", err)
	}

	for i, msg := range loaded.Messages {
		log.Printf("  [%d] %s: %s", i, msg.Role, msg.Content)
	}

	if len(loaded.Messages) == 3 {
		log.Println("SUCCESS: state persisted correctly (system + user + assistant)")
	} else {
		log.Fatalf("FAILURE: expected 3 messages, got %d", len(loaded.Messages))
	}
}

func selectStore(ctx context.Context, cfg config.StoreConfig, useMemory bool) (store.Store, func(), error) {
	if useMemory || cfg.RedisURL == "" {
		log.Println("using in-memory session store")
		return store.NewMemoryStore(), func() {}, nil
	}

	redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return redisStore, func() { _ = redisStore.Close() }, nil
}
