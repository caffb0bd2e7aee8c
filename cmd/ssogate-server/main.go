// Package main is the entry point of the ssogate session-gate server.
//
// This file is the dependency-injection "wire-up":
//  1. Load .env / environment configuration
//  2. Load the user directory (TOML file or inline env value)
//  3. Open the session store (SQLite path or redis:// URL)
//  4. Open the audit log sink
//  5. Build the gate
//  6. Mount the HTTP routes behind CORS
//  7. Start the HTTP server
//  8. Graceful shutdown
//
// No global variables — everything is created and wired in main.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	ssoGate "github.com/legacyplan/ssoGate"
	"github.com/legacyplan/ssoGate/directory"
	"github.com/legacyplan/ssoGate/middleware"
	"github.com/legacyplan/ssoGate/session"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

// Environment keys. All optional except the user directory, which must come
// from SSOGATE_USERS_FILE or SSOGATE_USERS.
const (
	envAddr        = "SSOGATE_ADDR"        // listen address, default ":8080"
	envUsersFile   = "SSOGATE_USERS_FILE"  // path to a TOML user table
	envUsersInline = "SSOGATE_USERS"       // inline TOML user table
	envStore       = "SSOGATE_STORE"       // sqlite path or redis:// URL, default "./data/sessions.db"
	envSessionTTL  = "SSOGATE_SESSION_TTL" // idle timeout in seconds, default 3600
	envAuditLog    = "SSOGATE_AUDIT_LOG"   // path to a JSON-lines audit log, default stderr
	envCORSOrigin  = "SSOGATE_CORS_ORIGIN" // allowed browser origin, default "http://localhost:3000"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] ssogate server starting...")

	// ---- 1. Environment ----
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("[main] failed to load .env: %v", err)
	}

	addr := envOr(envAddr, ":8080")

	cfg := ssoGate.DefaultConfig()
	if raw := os.Getenv(envSessionTTL); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			log.Fatalf("[main] %s must be a positive number of seconds, got %q", envSessionTTL, raw)
		}
		cfg.Session.TTL = time.Duration(secs) * time.Second
	}
	log.Printf("[main] session idle timeout: %s", cfg.Session.TTL)

	// ---- 2. User directory ----
	users, err := loadUsers()
	if err != nil {
		log.Fatalf("[main] failed to load user directory: %v", err)
	}
	log.Printf("[main] user directory loaded (%d users)", users.Len())

	// ---- 3. Session store ----
	builder := ssoGate.New().WithConfig(cfg).WithUserSource(users)

	storeTarget := envOr(envStore, "./data/sessions.db")
	if strings.HasPrefix(storeTarget, "redis://") || strings.HasPrefix(storeTarget, "rediss://") {
		opts, err := redis.ParseURL(storeTarget)
		if err != nil {
			log.Fatalf("[main] bad redis URL: %v", err)
		}
		builder = builder.WithRedis(redis.NewClient(opts))
		log.Printf("[main] session store: redis %s", opts.Addr)
	} else {
		store, err := session.NewSQLiteStore(storeTarget)
		if err != nil {
			log.Fatalf("[main] failed to open session store: %v", err)
		}
		builder = builder.WithStore(store)
		log.Printf("[main] session store: sqlite %s", storeTarget)
	}

	// ---- 4. Audit log ----
	auditOut := os.Stderr
	if path := os.Getenv(envAuditLog); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Fatalf("[main] failed to open audit log: %v", err)
		}
		defer f.Close()
		auditOut = f
		log.Printf("[main] audit log: %s", path)
	}
	builder = builder.WithAuditSink(ssoGate.NewJSONWriterSink(auditOut))

	// ---- 5. Gate ----
	gate, err := builder.Build()
	if err != nil {
		log.Fatalf("[main] failed to build gate: %v", err)
	}
	defer gate.Close()

	// ---- 6. Routes + CORS ----
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", handleLogin(gate))
	mux.HandleFunc("POST /logout", handleLogout(gate))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	guard := middleware.Guard(gate)
	mux.Handle("GET /me", guard(http.HandlerFunc(handleMe)))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{envOr(envCORSOrigin, "http://localhost:3000")},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	// ---- 7. HTTP server ----
	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- 8. Graceful shutdown ----
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}

// loadUsers reads the user directory from SSOGATE_USERS_FILE or, failing
// that, the inline SSOGATE_USERS value.
func loadUsers() (*directory.Directory, error) {
	if path := os.Getenv(envUsersFile); path != "" {
		return directory.LoadFile(path)
	}
	if os.Getenv(envUsersInline) != "" {
		return directory.LoadEnv(envUsersInline)
	}
	return nil, fmt.Errorf("set %s or %s", envUsersFile, envUsersInline)
}

func handleLogin(gate *ssoGate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		token, err := gate.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, ssoGate.ErrInvalidCredentials) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			log.Printf("[login] %v", err)
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		setSessionCookies(w, req.Username, token)

		identity, _ := gate.Identity(req.Username)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(identity)
	}
}

func handleLogout(gate *ssoGate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(middleware.UserCookie); err == nil && c.Value != "" {
			if err := gate.Logout(r.Context(), c.Value); err != nil {
				log.Printf("[logout] %v", err)
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		clearSessionCookies(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(identity)
}

func setSessionCookies(w http.ResponseWriter, username, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.UserCookie,
		Value:    username,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: middleware.UserCookie, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: middleware.TokenCookie, Value: "", Path: "/", MaxAge: -1})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
