package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)

// User maps a login identity to either an investor scope (InvestorID set) or
// the admin role. Investor users only ever see their own rows.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	InvestorID   *string    `json:"investor_id,omitempty"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`

	// Joined from investors when InvestorID is set.
	InvestorName *string `json:"investor_name,omitempty"`
}

func NewUser(username, passwordHash string, investorID *string, isAdmin bool) (*User, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if passwordHash == "" {
		return nil, errors.New("password hash is required")
	}

	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		InvestorID:   investorID,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
	}, nil
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
