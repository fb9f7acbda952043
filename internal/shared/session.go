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

// SessionManager orchestrates cookie based staff sessions backed by Redis.
// Each session carries the bearer token issued by the store backend at login;
// the token lives and dies with the session.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID        string
	values    map[string]string
	staffID   string
	staffName string
	token     string
	manager   *SessionManager
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Values    map[string]string `json:"values"`
	StaffID   string            `json:"staff_id"`
	StaffName string            `json:"staff_name"`
	Token     string            `json:"token"`
}

const sessionIndexKey = "sessions:index"

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
	sess.staffID = stored.StaffID
	sess.staffName = stored.StaffName
	sess.token = stored.Token
	sess.isNew = false
	return sess, nil
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
		_ = sm.client.SRem(ctx, sessionIndexKey, sess.ID).Err()
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
		payload := sessionPayload{Values: sess.values, StaffID: sess.staffID, StaffName: sess.staffName, Token: sess.token}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		if err := sm.client.SAdd(ctx, sessionIndexKey, sess.ID).Err(); err != nil {
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

	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// ActiveSession pairs a live session ID with the staff token it carries.
type ActiveSession struct {
	ID      string
	StaffID string
	Token   string
}

// ListActive returns sessions from the index whose payload still exists.
// Used by the worker to warm per-staff caches.
func (sm *SessionManager) ListActive(ctx context.Context) ([]ActiveSession, error) {
	ids, err := sm.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}
	active := make([]ActiveSession, 0, len(ids))
	for _, id := range ids {
		payload, err := sm.client.Get(ctx, sm.redisKey(id)).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		var stored sessionPayload
		if err := json.Unmarshal(payload, &stored); err != nil {
			continue
		}
		if stored.Token == "" {
			continue
		}
		active = append(active, ActiveSession{ID: id, StaffID: stored.StaffID, Token: stored.Token})
	}
	return active, nil
}

// CleanupIndex drops index members whose session key has expired. Returns the
// number of entries removed.
func (sm *SessionManager) CleanupIndex(ctx context.Context) (int, error) {
	ids, err := sm.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		exists, err := sm.client.Exists(ctx, sm.redisKey(id)).Result()
		if err != nil {
			return removed, err
		}
		if exists == 0 {
			if err := sm.client.SRem(ctx, sessionIndexKey, id).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
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

// SetStaff associates the session with a staff member and their backend token.
func (s *Session) SetStaff(id, name, token string) {
	s.staffID = id
	s.staffName = name
	s.token = token
	s.dirty = true
}

// StaffID returns the current staff ID, empty when unauthenticated.
func (s *Session) StaffID() string {
	return s.staffID
}

// StaffName returns the logged-in staff display name.
func (s *Session) StaffName() string {
	return s.staffName
}

// Token returns the backend bearer token for this session.
func (s *Session) Token() string {
	return s.token
}

// Authenticated reports whether the session carries a staff credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.token != ""
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
