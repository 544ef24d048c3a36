package repository

import (
	"context"

	"bedfinder-data/internal/domain"
)

// AccountsRepository 认证账号Repository接口
type AccountsRepository interface {
	CreateAccount(ctx context.Context, email string, passwordHash []byte) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, accountID string, passwordHash []byte) error
}

// ProfilesRepository 用户档案Repository接口
// Profiles share their id with the auth account. This service creates
// patient profiles at sign-up and never deletes any.
type ProfilesRepository interface {
	CreateProfile(ctx context.Context, profile *domain.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}
