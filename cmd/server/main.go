package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/budgetbook/backend/internal/auth"
	"github.com/budgetbook/backend/internal/config"
	"github.com/budgetbook/backend/internal/database"
	"github.com/budgetbook/backend/internal/handlers"
	"github.com/budgetbook/backend/internal/images"
	"github.com/budgetbook/backend/internal/mailer"
	mW "github.com/budgetbook/backend/internal/middleware"
	"github.com/budgetbook/backend/internal/session"
	"github.com/budgetbook/backend/internal/store"
	"github.com/budgetbook/backend/internal/token"
)

func main() {
	cfg := config.Load()

	db := database.InitDatabase()
	defer db.Close()

	redisClient, err := database.InitRedis()
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	imageStore, err := images.NewStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	accounts := store.NewAccountStore(db)
	entries := store.NewEntryStore(db)
	sessions := session.NewManager(redisClient, cfg.Session)
	tokens := token.NewService(cfg.Token.Secret, cfg.Token.ResetTTL)
	hasher := auth.NewHasher(cfg.Argon2)
	mail := mailer.New(cfg.SMTP)

	h := handlers.New(accounts, entries, sessions, tokens, hasher, mail, imageStore,
		"./web/templates", cfg.Server)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(h.Recoverer)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Uploaded profile images
	r.Handle("/static/profile-images/*", http.StripPrefix("/static/profile-images/",
		mW.StaticFileServer(cfg.Uploads.Dir)))

	// Public routes
	r.Get("/", h.SignInForm)
	r.Post("/", h.SignIn)
	r.Get("/registration", h.RegistrationForm)
	r.Post("/registration", h.Register)
	r.Get("/logout", h.Logout)
	r.Get("/reset_password", h.ResetRequestForm)
	r.Post("/reset_password", h.ResetRequest)
	r.Get("/reset_password/{token}", h.ResetPasswordForm)
	r.Post("/reset_password/{token}", h.ResetPassword)

	// Routes behind an authenticated session
	r.Group(func(r chi.Router) {
		r.Use(mW.RequireAccount(sessions, accounts))

		r.Get("/entries", h.ListEntries)
		r.Get("/new_entries", h.NewEntryForm)
		r.Post("/new_entries", h.CreateEntry)
		r.Get("/update/{id}", h.EditEntryForm)
		r.Post("/update/{id}", h.UpdateEntry)
		r.Get("/delete/{id}", h.DeleteEntry)

		r.Get("/account", h.ShowAccount)
		r.Get("/account_update", h.AccountUpdateForm)
		r.Post("/account_update", h.UpdateAccount)
	})

	r.NotFound(h.NotFound)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
