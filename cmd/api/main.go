package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"taskchat-backend/internal/auth"
	"taskchat-backend/internal/chat"
	"taskchat-backend/internal/config"
	"taskchat-backend/internal/conversations"
	"taskchat-backend/internal/db"
	"taskchat-backend/internal/tasks"
	"taskchat-backend/internal/tools"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		log.Fatal("❌ Failed to connect DB:", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}

	log.Println("✅ Connected to PostgreSQL!")

	secret := []byte(cfg.JWTSecret)
	mw := auth.New(secret)

	taskStore := tasks.NewSQLStore(database)
	convStore := conversations.NewSQLStore(database)
	registry := tools.NewRegistry(taskStore)

	// Resolver selection: real LLM when a key is configured, keyword
	// rules otherwise.
	var resolver chat.Resolver
	if cfg.OpenAIKey != "" {
		resolver = chat.NewOpenAIResolver(cfg.OpenAIKey, cfg.OpenAIModel, registry)
		log.Println("🤖 Using OpenAI resolver, model:", cfg.OpenAIModel)
	} else {
		resolver = chat.NewRuleResolver(registry)
		log.Println("⚠️ OPENAI_API_KEY not set, using rule-based resolver")
	}

	chatService := chat.NewService(convStore, resolver)

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("/auth/register", auth.RegisterHandler(database, secret))
	mux.HandleFunc("/auth/login", auth.LoginHandler(database, secret))
	mux.HandleFunc("/auth/logout", auth.LogoutHandler())
	mux.HandleFunc("/auth/me", mw.Wrap(auth.MeHandler(database)))

	// ----- TASKS API -----
	mux.HandleFunc("/api/tasks", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			tasks.ListHandler(taskStore)(w, r)
		case http.MethodPost:
			tasks.CreateHandler(taskStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.HandleFunc("/api/tasks/complete", mw.Wrap(tasks.CompleteHandler(taskStore)))
	mux.HandleFunc("/api/tasks/delete", mw.Wrap(tasks.DeleteHandler(taskStore)))
	mux.HandleFunc("/api/tasks/update", mw.Wrap(tasks.UpdateHandler(taskStore)))

	// ----- CHAT API -----
	mux.HandleFunc("/api/chat", mw.Wrap(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			chat.Handler(chatService)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Println("🚀 API server is running on", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
