package main

import (
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

	httpadapter "github.com/naschastye/salesim/internal/adapters/http"
	"github.com/naschastye/salesim/internal/adapters/llm"
	memstore "github.com/naschastye/salesim/internal/adapters/storage/memory"
	redisstore "github.com/naschastye/salesim/internal/adapters/storage/redis"
	sqlitestore "github.com/naschastye/salesim/internal/adapters/storage/sqlite"
	"github.com/naschastye/salesim/internal/app/dialog"
	"github.com/naschastye/salesim/internal/app/persona"
	"github.com/naschastye/salesim/internal/app/scenario"
	"github.com/naschastye/salesim/internal/config"
	"github.com/naschastye/salesim/internal/domain"
	"github.com/naschastye/salesim/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := observability.Logger()

	// Chat backend: mock for dev, DeepSeek when a key is set, otherwise the
	// persona falls back to canned replies.
	var chatClient domain.ChatClient
	switch {
	case cfg.UseMockLLM:
		logger.Info("chat backend: mock")
		chatClient = llm.NewMockLLM()
	case cfg.DeepSeekAPIKey != "":
		logger.Info("chat backend: deepseek", "model", cfg.ModelName)
		chatClient = llm.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.ModelName, cfg.ResponderTimeout)
	default:
		logger.Warn("chat backend: none, persona runs on fallback replies")
	}

	var store domain.StateStore
	switch cfg.StorageBackend {
	case "sqlite":
		logger.Info("storage: sqlite", "path", cfg.SQLitePath)
		store, err = sqlitestore.NewStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite store: %v", err)
		}
	case "redis":
		logger.Info("storage: redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = redisstore.NewStore(client, redisstore.WithTTL(cfg.RedisTTL))
	default:
		logger.Info("storage: in-memory")
		store = memstore.NewStore()
	}
	defer store.Close()

	repo := dialog.NewRepository(store)
	responder := persona.NewService(chatClient, cfg.ResponderTimeout)
	engine := scenario.NewEngine(repo, responder)

	handler := httpadapter.NewServer(engine)

	addr := ":" + cfg.Port
	logger.Info("salesim api listening", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
