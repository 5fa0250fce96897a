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

	api "github.com/mind-engage/quizparse/internal/api/http"
	"github.com/mind-engage/quizparse/internal/audit"
	account "github.com/mind-engage/quizparse/internal/auth"
	authmw "github.com/mind-engage/quizparse/internal/auth/middleware"
	"github.com/mind-engage/quizparse/internal/config"
	"github.com/mind-engage/quizparse/internal/db"
	"github.com/mind-engage/quizparse/internal/extract"
	"github.com/mind-engage/quizparse/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()
	events := audit.NewEventRepo(dbh, time.Now)

	// --- Auth ---
	var extra []account.Account
	if cfg.AdminPassHash != "" {
		extra = append(extra, account.Account{Username: cfg.AdminUser, Password: cfg.AdminPassHash, Role: account.RoleAdmin})
	}
	creds, err := account.LoadCredentials(cfg.CredentialsFile, extra...)
	if err != nil {
		log.Fatalf("credentials: %v", err)
	}
	if creds.Len() == 0 {
		log.Printf("warning: no accounts loaded from %s; nobody can sign in", cfg.CredentialsFile)
	}

	var sessions account.SessionStore
	switch cfg.SessionStore {
	case config.SessionsMemory:
		sessions = account.NewMemorySessions(cfg.SessionTTL, time.Now)
	case config.SessionsSQL:
		ss := account.NewSQLSessions(dbh, cfg.SessionTTL, time.Now)
		go purgeSessions(ss, time.Hour)
		sessions = ss
	default:
		log.Fatalf("unsupported SESSION_STORE: %s", cfg.SessionStore)
	}
	tokens := authmw.NewAuthService(cfg.HMACSecret, cfg.TokenTTL)

	// --- Upload spool ---
	spool, err := storage.NewFSStore(cfg.SpoolDir)
	if err != nil {
		log.Fatalf("spool: %v", err)
	}

	r := api.NewRouter(api.Server{
		Credentials:    creds,
		Sessions:       sessions,
		Tokens:         tokens,
		Extractor:      extract.New(),
		Spool:          spool,
		Events:         events,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.SecureCookies,
		CORSOrigins:    cfg.CORSOrigins(),
	})

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (mode=%s, db=%s, sessions=%s, accounts=%d)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.SessionStore, creds.Len())
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func purgeSessions(ss *account.SQLSessions, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := ss.Purge(ctx)
		cancel()
		if err != nil {
			log.Printf("purge sessions: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("purged %d expired sessions", n)
		}
	}
}
