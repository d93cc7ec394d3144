package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"resumedesk/internal/auth"
)

var testSecret = []byte(strings.Repeat("k", 32))

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m, err := NewManager(store, Options{CookieName: "sid", Secret: testSecret, TTL: time.Hour})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

// roundTrip saves s and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, m *Manager, s *Session) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := m.Save(context.Background(), rec, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req, rec
}

func TestNewManager_RejectsShortSecret(t *testing.T) {
	if _, err := NewManager(NewMemoryStore(), Options{Secret: []byte("short")}); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestManager_PersistsIdentityAcrossRequests(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMemoryStore())

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	if s.SignedIn() {
		t.Fatal("new session must be anonymous")
	}
	s.SetIdentity(auth.Identity{UserID: 7, Name: "Grace"})

	req, _ := roundTrip(t, m, s)
	loaded := m.Load(ctx, req)
	if got := loaded.Identity(); got.UserID != 7 || got.Name != "Grace" {
		t.Fatalf("unexpected identity %+v", got)
	}
	if loaded.ID() != s.ID() {
		t.Fatalf("session id changed: %s vs %s", loaded.ID(), s.ID())
	}
}

func TestManager_FlashIsShownOnce(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMemoryStore())

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.AddFlash(FlashError, "first")
	s.AddFlash(FlashError, "second")
	req, _ := roundTrip(t, m, s)

	next := m.Load(ctx, req)
	f := next.PopFlash()
	if f == nil || f.Type != FlashError || len(f.Messages) != 2 {
		t.Fatalf("unexpected flash %+v", f)
	}
	if _, rec := roundTrip(t, m, next); len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected the emptied session cookie to be expired")
	}

	again := m.Load(ctx, req)
	if f := again.PopFlash(); f != nil {
		t.Fatalf("flash shown twice: %+v", f)
	}
}

func TestManager_ForgedCookieIsAnonymous(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(t, store)

	_ = store.Set(ctx, "victim", Data{UserID: 1, UserName: "Victim"}, time.Hour)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "victim",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(strings.Repeat("x", 32)))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: forged})
	if s := m.Load(ctx, req); s.SignedIn() {
		t.Fatal("forged cookie must not authenticate")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "victim"})
	if s := m.Load(ctx, req); s.SignedIn() {
		t.Fatal("raw session id must not authenticate")
	}
}

func TestManager_ExpiredTokenIsAnonymous(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMemoryStore())

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetIdentity(auth.Identity{UserID: 3, Name: "Linus"})
	req, _ := roundTrip(t, m, s)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if loaded := m.Load(ctx, req); loaded.SignedIn() {
		t.Fatal("expired token must not authenticate")
	}
}

func TestManager_ActiveSessionIsExtended(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(t, store)
	now := time.Now()
	m.now = func() time.Time { return now }
	store.now = m.now

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetIdentity(auth.Identity{UserID: 5, Name: "Ada"})
	original, _ := roundTrip(t, m, s)

	now = now.Add(10 * time.Minute)
	if _, rec := roundTrip(t, m, m.Load(ctx, original)); len(rec.Result().Cookies()) != 0 {
		t.Fatal("recently issued session should not be re-issued")
	}

	now = now.Add(30 * time.Minute)
	refreshed, rec := roundTrip(t, m, m.Load(ctx, original))
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("session older than half the TTL should get a new cookie")
	}

	now = now.Add(40 * time.Minute)
	if loaded := m.Load(ctx, original); loaded.SignedIn() {
		t.Fatal("original token should have expired")
	}
	if loaded := m.Load(ctx, refreshed); !loaded.SignedIn() || loaded.Identity().UserID != 5 {
		t.Fatal("refreshed session should still be signed in")
	}
}

func TestManager_AnonymousSessionIsNotExtended(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, NewMemoryStore())
	now := time.Now()
	m.now = func() time.Time { return now }

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.AddFlash(FlashInfo, "hello")
	req, _ := roundTrip(t, m, s)

	now = now.Add(45 * time.Minute)
	if _, rec := roundTrip(t, m, m.Load(ctx, req)); len(rec.Result().Cookies()) != 0 {
		t.Fatal("anonymous session should not be re-issued")
	}
}

func TestManager_RegenerateDropsOldID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(t, store)

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.AddFlash(FlashInfo, "hello")
	oldReq, _ := roundTrip(t, m, s)
	oldID := s.ID()

	if err := m.Regenerate(ctx, s); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	s.SetIdentity(auth.Identity{UserID: 9, Name: "Barbara"})
	newReq, _ := roundTrip(t, m, s)

	if s.ID() == oldID {
		t.Fatal("expected a new session id")
	}
	if _, err := store.Get(ctx, oldID); err != ErrNotFound {
		t.Fatalf("old session should be gone, got %v", err)
	}
	if m.Load(ctx, oldReq).SignedIn() {
		t.Fatal("old cookie must not carry the new identity")
	}
	if !m.Load(ctx, newReq).SignedIn() {
		t.Fatal("new cookie must carry the identity")
	}
}

func TestManager_DestroyThenFlash(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(t, store)

	s := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetIdentity(auth.Identity{UserID: 4, Name: "Ken"})
	oldReq, _ := roundTrip(t, m, s)
	oldID := s.ID()

	if err := m.Destroy(ctx, s); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	s.AddFlash(FlashSuccess, "You have been logged out.")
	newReq, _ := roundTrip(t, m, s)

	if _, err := store.Get(ctx, oldID); err != ErrNotFound {
		t.Fatalf("old session should be gone, got %v", err)
	}
	if m.Load(ctx, oldReq).SignedIn() {
		t.Fatal("destroyed session must be anonymous")
	}
	next := m.Load(ctx, newReq)
	if next.SignedIn() {
		t.Fatal("fresh session must be anonymous")
	}
	if f := next.PopFlash(); f == nil || f.Messages[0] != "You have been logged out." {
		t.Fatalf("unexpected flash %+v", f)
	}
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, "a", Data{UserID: 1}, time.Minute)
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "a"); err != ErrNotFound {
		t.Fatalf("expected expiry, got %v", err)
	}
}
