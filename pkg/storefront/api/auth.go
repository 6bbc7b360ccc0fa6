package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

// Auth issues and checks admin tokens. There is a single shared admin
// credential; tokens carry only a role claim.
type Auth struct {
	tokenAuth    *jwtauth.JWTAuth
	passwordHash []byte
}

// NewAuth creates an Auth using the given HMAC secret and bcrypt password hash.
func NewAuth(secret, passwordHash string) *Auth {
	return &Auth{
		tokenAuth:    jwtauth.New("HS256", []byte(secret), nil),
		passwordHash: []byte(passwordHash),
	}
}

// Verifier returns the middleware that extracts and validates a bearer token
// if one is present. It never rejects requests on its own; RequireAdmin does.
func (a *Auth) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokenAuth)
}

// Login checks the password against the configured hash and returns a signed
// admin token.
func (a *Auth) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", err
	}

	claims := map[string]interface{}{
		"role": "admin",
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	_, tokenString, err := a.tokenAuth.Encode(claims)
	return tokenString, err
}

// RequireAdmin rejects requests whose token is missing, invalid, or not an
// admin token.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			slog.Info("Rejected admin request", "path", r.URL.Path, "error", err)
			renderError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			renderError(w, r, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
