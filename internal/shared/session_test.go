package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "shopdesk_session", "secret", time.Hour, false), mr
}

func commit(t *testing.T, sm *SessionManager, sess *Session) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(context.Background(), rec, req, sess))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestSessionCarriesStaffToken(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.False(t, sess.Authenticated())

	sess.SetStaff("7", "Ravi", "bearer-xyz")
	cookie := commit(t, sm, sess)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.True(t, loaded.Authenticated())
	require.Equal(t, "7", loaded.StaffID())
	require.Equal(t, "Ravi", loaded.StaffName())
	require.Equal(t, "bearer-xyz", loaded.Token())
}

func TestDestroyClearsSessionAndIndex(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetStaff("7", "Ravi", "bearer-xyz")
	cookie := commit(t, sm, sess)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sm.Destroy(loaded)
	commit(t, sm, loaded)

	active, err := sm.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestListActiveSkipsAnonymousSessions(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	anon, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	commit(t, sm, anon)

	staff, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	staff.SetStaff("9", "Meera", "bearer-abc")
	commit(t, sm, staff)

	active, err := sm.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "9", active[0].StaffID)
	require.Equal(t, "bearer-abc", active[0].Token)
}

func TestCleanupIndexDropsExpired(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetStaff("7", "Ravi", "bearer-xyz")
	commit(t, sm, sess)

	mr.FastForward(2 * time.Hour)

	removed, err := sm.CleanupIndex(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	active, err := sm.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)
}
