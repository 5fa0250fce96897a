package http

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"time"

	account "github.com/mind-engage/quizparse/internal/auth"
	authmw "github.com/mind-engage/quizparse/internal/auth/middleware"
)

//go:embed static
var staticFiles embed.FS

func page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := staticFiles.ReadFile("static/" + name)
		if err != nil {
			http.Error(w, "page missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(b)
	}
}

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// GET /
func IndexHandler() http.HandlerFunc { return page("index.html") }

// GET /login
func LoginPageHandler() http.HandlerFunc {
	login := page("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if authmw.SubjectFromContext(r.Context()) != "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		login(w, r)
	}
}

// POST /login (form: username, password)
func LoginHandler(creds *account.Credentials, sessions account.SessionStore, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := r.PostFormValue("username")
		role, ok := creds.Verify(username, r.PostFormValue("password"))
		if !ok {
			http.Redirect(w, r, "/login?error=1", http.StatusFound)
			return
		}
		s, err := sessions.Create(r.Context(), username, role)
		if err != nil {
			log.Printf("create session for %s: %v", username, err)
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authmw.SessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  s.ExpiresAt,
		})
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// GET /logout
func LogoutHandler(sessions account.SessionStore, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := authmw.SessionIDFromContext(r.Context())
		if id == "" {
			if c, err := r.Cookie(authmw.SessionCookie); err == nil {
				id = c.Value
			}
		}
		if id != "" {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := sessions.Delete(ctx, id); err != nil {
				log.Printf("delete session: %v", err)
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     authmw.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}
