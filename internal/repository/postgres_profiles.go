package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bedfinder-data/internal/domain"
)

// PostgresProfilesRepository 用户档案Repository实现
type PostgresProfilesRepository struct {
	db *sql.DB
}

// NewPostgresProfilesRepository 创建用户档案Repository
func NewPostgresProfilesRepository(db *sql.DB) *PostgresProfilesRepository {
	return &PostgresProfilesRepository{db: db}
}

// 确保实现了接口
var _ ProfilesRepository = (*PostgresProfilesRepository)(nil)

// CreateProfile 创建用户档案（id 与 auth_accounts.id 一致）
func (r *PostgresProfilesRepository) CreateProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if profile.Role == "" {
		profile.Role = domain.RolePatient
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (id, role, hospital_id, phone, full_name, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		profile.ID, profile.Role, profile.HospitalID, profile.Phone, profile.FullName, profile.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

// GetProfile 获取用户档案
func (r *PostgresProfilesRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, sql.ErrNoRows
	}

	query := `
		SELECT id::text,
		       role,
		       hospital_id::text,
		       phone,
		       full_name,
		       avatar_url
		  FROM user_profiles
		 WHERE id = $1
	`

	var p domain.UserProfile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.Role, &p.HospitalID, &p.Phone, &p.FullName, &p.AvatarURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &p, nil
}
