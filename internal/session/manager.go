package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretLength = 32

// Options 配置会话 cookie。
type Options struct {
	CookieName string
	Secret     []byte
	TTL        time.Duration
	Domain     string
	Secure     bool
	Logger     *slog.Logger
}

// Manager 负责签发/校验会话 cookie 并读写 Store。
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
	domain     string
	secure     bool
	logger     *slog.Logger
	now        func() time.Time
}

func NewManager(store Store, opts Options) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if len(opts.Secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretLength)
	}
	if opts.CookieName == "" {
		opts.CookieName = "resumedesk_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:      store,
		secret:     opts.Secret,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		domain:     opts.Domain,
		secure:     opts.Secure,
		logger:     logger.With(slog.String("component", "session")),
		now:        time.Now,
	}, nil
}

// Load 从请求中恢复会话；cookie 缺失、伪造、过期或存储异常时返回新的匿名会话。
func (m *Manager) Load(ctx context.Context, r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return m.newSession()
	}

	id, issuedAt, err := m.parseToken(cookie.Value)
	if err != nil {
		m.logger.Debug("reject session cookie", slog.Any("error", err))
		return m.newSession()
	}

	data, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Error("load session failed", slog.Any("error", err))
		}
		return m.newSession()
	}
	return &Session{id: id, data: data, issuedAt: issuedAt}
}

// Save 持久化有变更的会话并刷新 cookie；必须在写响应体之前调用。
// 已登录会话即使没有变更，签发时间超过半个 TTL 后也会续期，
// 因此只有持续不活跃满 TTL 才会掉线。
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s == nil || (!s.dirty && !m.stale(s)) {
		return nil
	}

	if s.empty() {
		if !s.fresh {
			if err := m.store.Delete(ctx, s.id); err != nil {
				return err
			}
		}
		if s.cleared || !s.fresh {
			m.expireCookie(w)
		}
		s.dirty = false
		return nil
	}

	if err := m.store.Set(ctx, s.id, s.data, m.ttl); err != nil {
		return err
	}
	now := m.now()
	token, err := m.signToken(s.id, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.dirty = false
	s.fresh = false
	s.issuedAt = now
	return nil
}

func (m *Manager) stale(s *Session) bool {
	if !s.SignedIn() || s.issuedAt.IsZero() {
		return false
	}
	return m.now().Sub(s.issuedAt) > m.ttl/2
}

// Regenerate 更换会话 ID 并保留数据，登录时调用以避免会话固定。
func (m *Manager) Regenerate(ctx context.Context, s *Session) error {
	if !s.fresh {
		if err := m.store.Delete(ctx, s.id); err != nil {
			return err
		}
	}
	s.id = uuid.NewString()
	s.fresh = true
	s.dirty = true
	return nil
}

// Destroy 删除服务端会话，并把 s 重置为一个新的空会话。
// 存储删除失败时仍会重置 s，错误交给调用方记录。
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	var err error
	if !s.fresh {
		err = m.store.Delete(ctx, s.id)
	}
	*s = Session{id: uuid.NewString(), fresh: true, dirty: true, cleared: true}
	return err
}

func (m *Manager) newSession() *Session {
	return New()
}

func (m *Manager) signToken(id string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parseToken(raw string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid || claims.ID == "" {
		return "", time.Time{}, errors.New("invalid session token")
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return claims.ID, issuedAt, nil
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
