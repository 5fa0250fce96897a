package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	account "github.com/mind-engage/quizparse/internal/auth"
	"github.com/mind-engage/quizparse/internal/rbac"
)

const (
	SessionCookie = "session_id"
	issuer        = "quizparse"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &AuthService{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "user" or "admin"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := a.now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// POST /auth/token  { "username": "...", "password": "..." }
func TokenHandler(a *AuthService, creds *account.Credentials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role, ok := creds.Verify(req.Username, req.Password)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(req.Username, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "token_type": "Bearer"})
	}
}

// Authenticate resolves the caller from a session cookie or a bearer token.
// Requests carrying neither pass through anonymously; a bearer token that does
// not verify is rejected. Non-bearer Authorization headers are ignored.
func Authenticate(sessions account.SessionStore, a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// non-bearer schemes fall through to the session cookie
			if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				c, err := a.Parse(tok)
				if err != nil {
					http.Error(w, "bad token", http.StatusUnauthorized)
					return
				}
				ctx = rbac.WithRole(WithSubject(ctx, c.Sub), c.Role)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if ck, err := r.Cookie(SessionCookie); err == nil && ck.Value != "" {
				s, err := sessions.Get(ctx, ck.Value)
				switch {
				case err == nil:
					ctx = WithSessionID(rbac.WithRole(WithSubject(ctx, s.Subject), s.Role), s.ID)
				case !errors.Is(err, account.ErrSessionNotFound):
					log.Printf("session lookup: %v", err)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser hands anonymous requests to onMissing.
func RequireUser(onMissing http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SubjectFromContext(r.Context()) == "" {
				onMissing(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
