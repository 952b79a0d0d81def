package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 30 * 24 * time.Hour

// Auth checks the unlock PIN and tracks the tokens it hands out.
type Auth struct {
	pin     string
	pinHash []byte
	ttl     time.Duration
	now     func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewAuth creates an Auth. A bcrypt pinHash takes precedence over a plain pin.
func NewAuth(pin, pinHash string) *Auth {
	a := &Auth{
		pin:    pin,
		ttl:    defaultTokenTTL,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
	if pinHash != "" {
		a.pinHash = []byte(pinHash)
	}
	return a
}

// Unlock returns a fresh token when pin is correct.
func (a *Auth) Unlock(pin string) (string, bool) {
	if pin == "" || !a.checkPIN(pin) {
		return "", false
	}
	token := uuid.NewString()
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	for t, exp := range a.tokens {
		if now.After(exp) {
			delete(a.tokens, t)
		}
	}
	a.tokens[token] = now.Add(a.ttl)
	return token, true
}

// Valid reports whether token was issued by Unlock and has not expired.
func (a *Auth) Valid(token string) bool {
	if token == "" {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	exp, ok := a.tokens[token]
	if !ok {
		return false
	}
	if a.now().After(exp) {
		delete(a.tokens, token)
		return false
	}
	return true
}

// Revoke forgets a token.
func (a *Auth) Revoke(token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}

func (a *Auth) checkPIN(pin string) bool {
	if a.pinHash != nil {
		return bcrypt.CompareHashAndPassword(a.pinHash, []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(a.pin)) == 1
}

// RequireToken returns middleware that accepts a bearer token, or a token
// query parameter for EventSource clients that cannot set headers.
func RequireToken(a *Auth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing token"})
				return
			}
			if !a.Valid(token) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
