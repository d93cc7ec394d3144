package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"resumedesk/internal/database"
	"resumedesk/internal/errcode"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgCredentialsMissing = "Email and password are required."
	msgEmailTaken         = "Email already registered."
	msgRegisterFailed     = "Something went wrong. Please try again."
)

// RegisterInput 是注册表单；校验规则写在 tag 上，一次性收集全部错误。
type RegisterInput struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// 字段 + 规则 → 展示文案。
var registerMessages = map[string]string{
	"Name.required":           "Name is required.",
	"Email.required":          "Email is required.",
	"Email.email":             "Invalid email format.",
	"Password.required":       "Password is required.",
	"Password.min":            "Password must be at least 6 characters long.",
	"ConfirmPassword.eqfield": "Passwords do not match.",
}

// Service 负责注册与登录校验。
type Service struct {
	db       *gorm.DB
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService 构造认证服务。
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// NormalizeEmail 去除空白并转为小写，注册与登录共用。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 校验表单、检查邮箱唯一性并创建账号。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*database.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)

	if err := s.validateRegister(in); err != nil {
		return nil, err
	}

	logger := s.logger.With(slog.String("email", in.Email))

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&database.User{}).
		Where("email = ?", in.Email).
		Count(&count).Error; err != nil {
		logger.Error("register lookup failed", slog.Any("error", err))
		return nil, errcode.Persistence(msgRegisterFailed, err)
	}
	if count > 0 {
		logger.Info("register conflict: email already exists")
		return nil, errcode.Duplicate(msgEmailTaken)
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		return nil, errcode.Persistence(msgRegisterFailed, err)
	}

	user := database.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Info("register conflict: unique index violated")
			return nil, errcode.Duplicate(msgEmailTaken)
		}
		logger.Error("create user failed", slog.Any("error", err))
		return nil, errcode.Persistence(msgRegisterFailed, err)
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	return &user, nil
}

func (s *Service) validateRegister(in RegisterInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errcode.Validation(err.Error())
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := registerMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid."
		}
		messages = append(messages, msg)
	}
	return errcode.Validation(messages...)
}

// Login 校验凭据；未知邮箱与密码错误返回同一提示。
func (s *Service) Login(ctx context.Context, email, password string) (Identity, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Identity{}, errcode.Validation(msgCredentialsMissing)
	}

	logger := s.logger.With(slog.String("email", email))

	var user database.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			return Identity{}, errcode.Authentication(msgInvalidCredentials)
		}
		logger.Error("login query failed", slog.Any("error", err))
		return Identity{}, errcode.Persistence("Login is temporarily unavailable.", err)
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		return Identity{}, errcode.Authentication(msgInvalidCredentials)
	}

	return Identity{UserID: user.ID, Name: user.Name}, nil
}
