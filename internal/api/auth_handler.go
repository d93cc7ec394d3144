package api

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"resumedesk/internal/api/middleware"
	"resumedesk/internal/auth"
	"resumedesk/internal/session"
)

const (
	msgRegistered      = "Registration successful! Please login."
	msgLoggedOut       = "You have been logged out."
	msgTooManyAttempts = "Too many login attempts. Please try again later."
	msgAuthFailed      = "Something went wrong. Please try again."
)

// AuthHandler 处理注册、登录与登出。
type AuthHandler struct {
	pages
	auth    *auth.Service
	limiter LoginLimiter
	logger  *slog.Logger
}

// NewAuthHandler 构造 AuthHandler；limiter 为 nil 时不做登录限流。
func NewAuthHandler(sessions *session.Manager, authService *auth.Service, limiter LoginLimiter, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		pages:   pages{sessions: sessions},
		auth:    authService,
		limiter: limiter,
		logger:  logger,
	}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	h.render(c, "register.html", "Register", nil)
}

// Register 创建账号后跳转登录页；失败时带着全部校验信息回到注册页。
func (h *AuthHandler) Register(c *gin.Context) {
	in := auth.RegisterInput{
		Name:            c.PostForm("name"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
	}

	if _, err := h.auth.Register(c.Request.Context(), in); err != nil {
		h.redirectErr(c, "/register", err, msgAuthFailed)
		return
	}
	h.redirect(c, "/login", session.FlashSuccess, msgRegistered)
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	h.render(c, "login.html", "Login", nil)
}

// Login 校验凭据并轮换会话 ID。
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)
	email := c.PostForm("email")
	password := c.PostForm("password")

	if h.limiter != nil && strings.TrimSpace(email) != "" {
		allowed, err := h.limiter.Allow(ctx, c.ClientIP(), auth.NormalizeEmail(email))
		if err != nil {
			logger.Warn("login rate limit check failed", slog.Any("error", err))
		}
		if !allowed {
			logger.Info("login throttled", slog.String("ip", c.ClientIP()))
			h.redirect(c, "/login", session.FlashError, msgTooManyAttempts)
			return
		}
	}

	identity, err := h.auth.Login(ctx, email, password)
	if err != nil {
		h.redirectErr(c, "/login", err, msgAuthFailed)
		return
	}

	s := middleware.Current(c)
	if err := h.sessions.Regenerate(ctx, s); err != nil {
		logger.Error("regenerate session failed", slog.Any("error", err))
		h.redirect(c, "/login", session.FlashError, msgAuthFailed)
		return
	}
	s.SetIdentity(identity)
	logger.Info("user logged in", slog.Uint64("user_id", uint64(identity.UserID)))
	h.redirect(c, "/dashboard", session.FlashSuccess, "Welcome back, "+identity.Name+"!")
}

// Logout 无条件销毁服务端会话，再用新会话携带登出提示。
func (h *AuthHandler) Logout(c *gin.Context) {
	s := middleware.Current(c)
	if err := h.sessions.Destroy(c.Request.Context(), s); err != nil {
		middleware.LoggerFromContext(c).Error("destroy session failed", slog.Any("error", err))
	}
	h.redirect(c, "/login", session.FlashInfo, msgLoggedOut)
}
