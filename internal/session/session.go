package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "session_token"

// DefaultTTL is the fixed token lifetime.
const DefaultTTL = 7 * 24 * time.Hour

// Config carries the process-wide secrets, injected once at startup and
// never mutated afterwards.
type Config struct {
	Secret []byte
	Salt   string
	TTL    time.Duration
}

// Manager issues and validates session tokens and password digests.
// Tokens are self-describing (uid:expiry:signature); no server-side record
// of issued tokens exists, validity is proven by signature plus non-expiry.
type Manager struct {
	cfg Config
}

func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Manager{cfg: cfg}
}

// HashPassword returns the hex SHA-256 digest of plain concatenated with the
// application-wide salt. The scheme is deliberately not per-user salted:
// changing it would invalidate every stored credential.
func (m *Manager) HashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain + m.cfg.Salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest and compares in constant time.
func (m *Manager) VerifyPassword(plain, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(m.HashPassword(plain)), []byte(digest)) == 1
}

func (m *Manager) sign(payload string) string {
	mac := hmac.New(sha256.New, m.cfg.Secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// IssueToken builds "uid:expiresUnix:hexHMAC(uid:expiresUnix)". Both payload
// fields are base-10 integers and the signature is lowercase hex, so the
// colon delimiter cannot occur inside any field.
func (m *Manager) IssueToken(userID uint) string {
	return m.issueAt(userID, time.Now().Add(m.cfg.TTL))
}

func (m *Manager) issueAt(userID uint, expiresAt time.Time) string {
	payload := fmt.Sprintf("%d:%d", userID, expiresAt.Unix())
	return payload + ":" + m.sign(payload)
}

// ParseToken validates the token and returns the embedded user id. Every
// failure (wrong shape, bad signature, expiry, unparsable fields) collapses
// into the same negative result; callers never learn which check failed.
// The returned id must still be resolved against the user store.
func (m *Manager) ParseToken(token string) (uint, bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return 0, false
	}
	payload := parts[0] + ":" + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(m.sign(payload))) {
		return 0, false
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	if time.Now().Unix() > exp {
		return 0, false
	}
	return uint(uid), true
}

// FromRequest reads the session cookie and validates it. A missing cookie
// and an invalid token are indistinguishable to the caller.
func (m *Manager) FromRequest(r *http.Request) (uint, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	return m.ParseToken(c.Value)
}

// NewCookie wraps a token into the session cookie.
func (m *Manager) NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL / time.Second),
		Expires:  time.Now().Add(m.cfg.TTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedCookie returns an expired session cookie, used on logout.
func ClearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
