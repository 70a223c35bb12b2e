package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/calebrws/investor-portal/internal/entity"
)

// AuthenticateUserUseCase verifies portal credentials. Unknown username and
// wrong password produce the same error so neither can be probed.
type AuthenticateUserUseCase struct {
	UserRepo entity.UserRepositoryInterface
	Log      *zap.Logger
}

func NewAuthenticateUserUseCase(userRepo entity.UserRepositoryInterface, log *zap.Logger) *AuthenticateUserUseCase {
	return &AuthenticateUserUseCase{UserRepo: userRepo, Log: log}
}

func (uc *AuthenticateUserUseCase) Execute(ctx context.Context, input LoginInput) (*entity.User, error) {
	invalid := &DomainError{Code: CodeInvalidLogin, Message: "invalid username or password"}

	if input.Username == "" || input.Password == "" {
		return nil, invalid
	}

	user, err := uc.UserRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, invalid
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, invalid
	}

	if err := uc.UserRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		uc.Log.Warn("last_login update failed", zap.String("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}
