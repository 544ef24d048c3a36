package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bedfinder-data/internal/domain"
	"bedfinder-data/internal/repository"
	"bedfinder-data/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const sessionKeyPrefix = "session:"
const resetKeyPrefix = "pwreset:"
const resetTokenTTL = time.Hour

// AuthService 会话/身份管理服务接口
type AuthService interface {
	// SignUp creates an auth account, then a patient profile. The two steps
	// are not transactional: a profile failure after account creation
	// surfaces the error and leaves the account behind.
	SignUp(ctx context.Context, req SignUpRequest) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	// SignOut always clears the caller's session from its point of view,
	// even when the token store errors.
	SignOut(ctx context.Context, token string) error
	// ResetPassword never reveals whether the email exists.
	ResetPassword(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newPassword string) error
	// Resolve turns a bearer token into a Session. Callers must not render
	// "ready" state before this returns.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// SignUpRequest 注册请求
type SignUpRequest struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

type authService struct {
	accounts repository.AccountsRepository
	profiles repository.ProfilesRepository
	kv       store.KV
	ttl      time.Duration
	logger   *zap.Logger

	// profileGroup dedupes concurrent profile fetches per user id: one
	// session transition triggers exactly one fetch.
	profileGroup singleflight.Group
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(accounts repository.AccountsRepository, profiles repository.ProfilesRepository, kv store.KV, sessionTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		accounts: accounts,
		profiles: profiles,
		kv:       kv,
		ttl:      sessionTTL,
		logger:   logger,
	}
}

// SignUp 注册：先建账号，再建 patient 档案，最后自动登录
func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*domain.Session, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc, err := s.accounts.CreateAccount(ctx, email, hash)
	if err != nil {
		s.logger.Warn("Sign-up failed: account creation",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	profile := &domain.UserProfile{
		ID:       acc.ID,
		Role:     domain.RolePatient,
		FullName: nullString(req.FullName),
		Phone:    nullString(req.Phone),
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		// Accepted inconsistency window: the account is not rolled back.
		s.logger.Error("Sign-up failed after account creation: orphaned account",
			zap.String("user_id", acc.ID),
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	sess, err := s.issueSession(ctx, acc)
	if err != nil {
		return nil, err
	}
	sess.Profile = profile

	s.logger.Info("User signed up",
		zap.String("user_id", acc.ID),
		zap.String("email", email),
	)
	return sess, nil
}

// SignIn 登录
func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: missing credentials", domain.ErrAuth)
	}

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown email and bad password are indistinguishable to the caller.
			s.logger.Warn("Sign-in failed: invalid credentials",
				zap.String("email", email),
				zap.String("reason", "unknown_email"),
			)
			return nil, domain.ErrAuth
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		s.logger.Warn("Sign-in failed: invalid credentials",
			zap.String("email", email),
			zap.String("reason", "password_mismatch"),
		)
		return nil, domain.ErrAuth
	}

	sess, err := s.issueSession(ctx, acc)
	if err != nil {
		return nil, err
	}

	sess.Profile = s.fetchProfile(ctx, sess.Identity)

	s.logger.Info("User signed in",
		zap.String("user_id", acc.ID),
		zap.String("email", email),
	)
	return sess, nil
}

// SignOut 注销：即使令牌存储删除失败，调用方也视为已退出
func (s *authService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.kv.Del(ctx, sessionKeyPrefix+token); err != nil {
		s.logger.Warn("Sign-out: token store delete failed, session cleared locally anyway",
			zap.Error(err),
		)
	}
	return nil
}

// ResetPassword 发起密码重置。成功与否都返回相同结果，不暴露邮箱是否存在。
func (s *authService) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("Password reset requested for unknown email", zap.String("email", email))
			return nil
		}
		// Backend fault, not enumeration: still report it.
		return fmt.Errorf("failed to start password reset: %w", err)
	}

	token := uuid.NewString()
	if err := s.kv.Set(ctx, resetKeyPrefix+token, acc.ID, resetTokenTTL); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	// Delivery is out of band; the diagnostic log stands in for the mailer.
	s.logger.Info("Password reset token issued",
		zap.String("user_id", acc.ID),
		zap.String("reset_token", token),
	)
	return nil
}

// CompleteReset 用重置令牌设置新口令
func (s *authService) CompleteReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: token and new password are required", domain.ErrValidation)
	}

	accountID, err := s.kv.Get(ctx, resetKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return fmt.Errorf("%w: reset token expired", domain.ErrAuth)
		}
		return fmt.Errorf("failed to read reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return err
	}

	_ = s.kv.Del(ctx, resetKeyPrefix+token)
	s.logger.Info("Password reset completed", zap.String("user_id", accountID))
	return nil
}

// Resolve 解析会话令牌并加载档案
func (s *authService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	ident, err := s.lookupIdentity(ctx, token)
	if err != nil {
		return nil, err
	}

	sess := &domain.Session{Identity: *ident}
	sess.Profile = s.fetchProfile(ctx, *ident)

	// The fetch may have raced a sign-out or a token rotation. Re-check the
	// token and discard the result if the subject changed underneath us.
	current, err := s.lookupIdentity(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.UserID != ident.UserID {
		s.logger.Warn("Discarding stale profile fetch: session changed during resolution",
			zap.String("stale_user_id", ident.UserID),
			zap.String("current_user_id", current.UserID),
		)
		return nil, domain.ErrTokenExpired
	}

	return sess, nil
}

func (s *authService) issueSession(ctx context.Context, acc *domain.Account) (*domain.Session, error) {
	ident := domain.Identity{
		Token:     uuid.NewString(),
		UserID:    acc.ID,
		Email:     acc.Email,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(ident)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKeyPrefix+ident.Token, string(payload), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &domain.Session{Identity: ident}, nil
}

func (s *authService) lookupIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", domain.ErrTokenExpired)
	}

	raw, err := s.kv.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var ident domain.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	ident.Token = token
	return &ident, nil
}

// fetchProfile loads the profile for an identity. A missing profile row is
// tolerated (nil), matching a sign-up that died between account and profile.
// Concurrent resolutions for the same user share one fetch.
func (s *authService) fetchProfile(ctx context.Context, ident domain.Identity) *domain.UserProfile {
	// The flight may be shared with other resolutions, so it must not die
	// with whichever caller's context happens to drive it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.profileGroup.Do(ident.UserID, func() (any, error) {
		return s.profiles.GetProfile(fetchCtx, ident.UserID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Profile missing for authenticated user",
				zap.String("user_id", ident.UserID),
			)
		} else {
			s.logger.Error("Failed to fetch profile",
				zap.String("user_id", ident.UserID),
				zap.Error(err),
			)
		}
		return nil
	}

	profile, _ := v.(*domain.UserProfile)
	if profile != nil && profile.ID != ident.UserID {
		// Stale shared result from a racing resolution; drop it.
		return nil
	}
	return profile
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
