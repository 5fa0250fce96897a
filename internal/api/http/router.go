package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	account "github.com/mind-engage/quizparse/internal/auth"
	authmw "github.com/mind-engage/quizparse/internal/auth/middleware"
	"github.com/mind-engage/quizparse/internal/rbac"
	"github.com/mind-engage/quizparse/internal/storage"
)

// EventLog is satisfied by *audit.EventRepo.
type EventLog interface {
	ParseRecorder
	EventLister
}

type Server struct {
	Credentials *account.Credentials
	Sessions    account.SessionStore
	Tokens      *authmw.AuthService
	Extractor   TextExtractor
	Spool       storage.Spool
	Events      EventLog // optional

	MaxUploadBytes int64
	SecureCookies  bool
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(s Server) chi.Router {
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(s.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(authmw.Authenticate(s.Sessions, s.Tokens))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Get("/login", LoginPageHandler())
	r.Post("/login", LoginHandler(s.Credentials, s.Sessions, s.SecureCookies))
	r.Get("/logout", LogoutHandler(s.Sessions, s.SecureCookies))
	r.Post("/auth/token", authmw.TokenHandler(s.Tokens, s.Credentials))
	r.Handle("/static/*", StaticHandler())

	// Pages: anonymous visitors are sent to the login form
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireUser(redirectToLogin))
		pr.Get("/", IndexHandler())
	})

	// API: anonymous callers get 401 JSON
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.RequireUser(unauthorized))

		var rec ParseRecorder
		if s.Events != nil {
			rec = s.Events
		}
		pr.With(rbac.Require(rbac.PermQuizParse)).
			Post("/upload", UploadHandler(s.Extractor, s.Spool, rec, s.MaxUploadBytes))

		if s.Events != nil {
			pr.With(rbac.Require(rbac.PermEventsList)).
				Get("/events", ListEventsHandler(s.Events))
		}
	})

	return r
}
