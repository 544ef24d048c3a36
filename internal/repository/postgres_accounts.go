package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bedfinder-data/internal/domain"
)

// PostgresAccountsRepository 认证账号Repository实现
type PostgresAccountsRepository struct {
	db *sql.DB
}

// NewPostgresAccountsRepository 创建认证账号Repository
func NewPostgresAccountsRepository(db *sql.DB) *PostgresAccountsRepository {
	return &PostgresAccountsRepository{db: db}
}

// 确保实现了接口
var _ AccountsRepository = (*PostgresAccountsRepository)(nil)

// CreateAccount 创建账号（email 唯一，小写归一化）
func (r *PostgresAccountsRepository) CreateAccount(ctx context.Context, email string, passwordHash []byte) (*domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" || len(passwordHash) == 0 {
		return nil, fmt.Errorf("email and password hash are required")
	}

	var acc domain.Account
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO auth_accounts (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id::text, email, password_hash, created_at`,
		email, passwordHash,
	).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

// GetAccountByEmail 按 email 查询账号
func (r *PostgresAccountsRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, sql.ErrNoRows
	}

	var acc domain.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id::text, email, password_hash, created_at FROM auth_accounts WHERE email = $1`,
		email,
	).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &acc, nil
}

// GetAccount 按 id 查询账号
func (r *PostgresAccountsRepository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, sql.ErrNoRows
	}

	var acc domain.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id::text, email, password_hash, created_at FROM auth_accounts WHERE id = $1`,
		accountID,
	).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

// UpdatePassword 更新口令哈希（密码重置流程）
func (r *PostgresAccountsRepository) UpdatePassword(ctx context.Context, accountID string, passwordHash []byte) error {
	if accountID == "" || len(passwordHash) == 0 {
		return fmt.Errorf("account id and password hash are required")
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE auth_accounts SET password_hash = $1 WHERE id = $2`,
		passwordHash, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
