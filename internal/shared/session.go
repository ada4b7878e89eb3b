package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidSession indicates a token that does not resolve to a signed-in
// user: missing, expired, or anonymous.
var ErrInvalidSession = errors.New("session invalid or expired")

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager orchestrates cookie based sessions backed by Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data: the signed-in user, their active
// company, and transient values and flashes.
type Session struct {
	ID        string
	values    map[string]string
	userID    int64
	companyID int64
	email     string
	flashes   []FlashMessage
	manager   *SessionManager
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values    map[string]string `json:"values"`
	UserID    int64             `json:"user_id"`
	CompanyID int64             `json:"company_id"`
	Email     string            `json:"email"`
	Flashes   []FlashMessage    `json:"flashes"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads or creates a new session for request.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := sm.newSession()
			sess.ID = cookie.Value
			sess.isNew = true
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	sess := sm.newSession()
	sess.ID = cookie.Value
	sess.values = stored.Values
	sess.userID = stored.UserID
	sess.companyID = stored.CompanyID
	sess.email = stored.Email
	sess.flashes = stored.Flashes
	sess.isNew = false
	return sess, nil
}

// ResolveSession resolves a raw session token to the signed-in identity. It
// is the authorization gate's view of the session store: no cookie handling,
// no mutation, just token to (user, company, email) or ErrInvalidSession.
func (sm *SessionManager) ResolveSession(ctx context.Context, token string) (int64, int64, string, error) {
	if token == "" {
		return 0, 0, "", ErrInvalidSession
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, "", ErrInvalidSession
		}
		return 0, 0, "", err
	}
	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return 0, 0, "", ErrInvalidSession
	}
	if stored.UserID == 0 {
		return 0, 0, "", ErrInvalidSession
	}
	return stored.UserID, stored.CompanyID, stored.Email, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	if sess.dirty || sess.isNew {
		data, err := json.Marshal(sess.payload())
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		cookie := &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(sm.ttl),
		}
		http.SetCookie(w, cookie)
	}

	// Clear flashes after they have been persisted once.
	if len(sess.flashes) > 0 {
		sess.flashes = nil
		sess.dirty = true
		if data, err := json.Marshal(sess.payload()); err == nil {
			_ = sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err()
		}
	}

	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// Rotate assigns a fresh session ID, dropping the old redis entry. Called on
// login so an attacker-supplied pre-auth cookie never names an authenticated
// session.
func (sm *SessionManager) Rotate(ctx context.Context, sess *Session) {
	if sess == nil {
		return
	}
	if sess.ID != "" {
		_ = sm.client.Del(ctx, sm.redisKey(sess.ID)).Err()
	}
	sess.ID = sm.generateSessionID()
	sess.isNew = true
	sess.dirty = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetIdentity associates the session with a signed-in user and their
// initially active company.
func (s *Session) SetIdentity(userID, companyID int64, email string) {
	s.userID = userID
	s.companyID = companyID
	s.email = email
	s.dirty = true
}

// SetCompany switches the active company for the session.
func (s *Session) SetCompany(companyID int64) {
	s.companyID = companyID
	s.dirty = true
}

// UserID returns the signed-in user, zero when anonymous.
func (s *Session) UserID() int64 {
	return s.userID
}

// CompanyID returns the active company for the session.
func (s *Session) CompanyID() int64 {
	return s.companyID
}

// Email returns the signed-in user's email.
func (s *Session) Email() string {
	return s.email
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if len(s.flashes) == 0 {
		if value := s.Get("flash"); value != "" {
			s.Delete("flash")
		}
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

func (s *Session) payload() sessionPayload {
	return sessionPayload{
		Values:    s.values,
		UserID:    s.userID,
		CompanyID: s.companyID,
		Email:     s.email,
		Flashes:   s.flashes,
	}
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:      sm.generateSessionID(),
		values:  make(map[string]string),
		manager: sm,
		isNew:   true,
		dirty:   true,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
