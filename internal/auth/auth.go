// Package auth implements the optional access gate: one shared password
// for the whole instance, verified with bcrypt, with in-memory session
// tokens. CourseWatcher is a single-user application; there is no user
// table.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("authentication is disabled")
)

// Session is an issued login token.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Gate guards the API. A Gate built without a password is permanently
// open: Enabled reports false and every token validates.
type Gate struct {
	hash            []byte
	sessionDuration time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewGate builds a gate from the configured password. A bcrypt hash is
// used as-is; plain text is hashed in memory so the config value never
// reaches the store.
func NewGate(password string, sessionDuration time.Duration) (*Gate, error) {
	if sessionDuration <= 0 {
		sessionDuration = 24 * time.Hour
	}
	g := &Gate{
		sessionDuration: sessionDuration,
		sessions:        map[string]time.Time{},
	}
	if password == "" {
		return g, nil
	}

	if strings.HasPrefix(password, "$2") {
		g.hash = []byte(password)
		return g, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	g.hash = hash
	return g, nil
}

// Enabled reports whether a password is configured.
func (g *Gate) Enabled() bool {
	return g != nil && len(g.hash) > 0
}

// Login verifies the password and issues a session token.
func (g *Gate) Login(password string) (Session, error) {
	if !g.Enabled() {
		return Session{}, ErrDisabled
	}
	if bcrypt.CompareHashAndPassword(g.hash, []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	now := time.Now()
	session := Session{
		Token:     generateToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(g.sessionDuration),
	}

	g.mu.Lock()
	g.pruneLocked(now)
	g.sessions[session.Token] = session.ExpiresAt
	g.mu.Unlock()

	return session, nil
}

// Validate reports whether the token belongs to a live session. An open
// gate accepts anything.
func (g *Gate) Validate(token string) bool {
	if !g.Enabled() {
		return true
	}
	if token == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	expires, ok := g.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expires) {
		delete(g.sessions, token)
		return false
	}
	return true
}

// Logout invalidates a session token.
func (g *Gate) Logout(token string) {
	if !g.Enabled() {
		return
	}
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}

func (g *Gate) pruneLocked(now time.Time) {
	for token, expires := range g.sessions {
		if now.After(expires) {
			delete(g.sessions, token)
		}
	}
}

func generateToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic(err) // crypto/rand failure means the host is broken
	}
	return hex.EncodeToString(bytes)
}
