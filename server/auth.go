package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = time.Hour
	adminSubject     = "admin"
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var (
	ErrAdminDisabled = errors.New("admin access is not configured")
	ErrBadPassword   = errors.New("invalid password")
	ErrRateLimited   = errors.New("too many login attempts, try again later")
	ErrBadToken      = errors.New("invalid token")
)

// Auth guards the admin endpoints: a bcrypt-checked password buys a
// short-lived HS256 token.
type Auth struct {
	passHash  []byte
	jwtSecret []byte

	// Rate limiting for login attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates the admin guard. An empty passHash disables logins; an
// empty secret is replaced by a random one, so tokens do not survive a
// restart.
func NewAuth(passHash, secret string) (*Auth, error) {
	a := &Auth{
		passHash: []byte(strings.TrimSpace(passHash)),
		rateMap:  make(map[string]*rateEntry),
	}
	if len(a.passHash) > 0 {
		if _, err := bcrypt.Cost(a.passHash); err != nil {
			return nil, fmt.Errorf("admin hash: %w", err)
		}
	}
	if secret != "" {
		a.jwtSecret = []byte(secret)
		return a, nil
	}
	a.jwtSecret = make([]byte, 32)
	if _, err := rand.Read(a.jwtSecret); err != nil {
		return nil, fmt.Errorf("jwt secret: %w", err)
	}
	return a, nil
}

// Enabled reports whether an admin password is configured.
func (a *Auth) Enabled() bool { return len(a.passHash) > 0 }

// Login checks the admin password and returns a token.
func (a *Auth) Login(password, ip string) (string, error) {
	if !a.Enabled() {
		return "", ErrAdminDisabled
	}
	if !a.checkRate(ip) {
		return "", ErrRateLimited
	}
	if err := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)); err != nil {
		return "", ErrBadPassword
	}
	return a.generateToken()
}

// ValidateToken validates a JWT and returns its subject.
func (a *Auth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrBadToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub != adminSubject {
		return "", ErrBadToken
	}
	return sub, nil
}

func (a *Auth) generateToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"exp": time.Now().Add(jwtExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
