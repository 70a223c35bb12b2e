package usecase

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/calebrws/investor-portal/internal/entity"
)

type CreateUserUseCase struct {
	UserRepo entity.UserRepositoryInterface
}

func NewCreateUserUseCase(userRepo entity.UserRepositoryInterface) *CreateUserUseCase {
	return &CreateUserUseCase{UserRepo: userRepo}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, username, password string, investorID *string, isAdmin bool) (*entity.User, error) {
	if username == "" || password == "" {
		return nil, &DomainError{Code: CodeInvalidInput, Message: "username and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: err.Error()}
	}

	user, err := entity.NewUser(username, string(hash), investorID, isAdmin)
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidInput, Message: err.Error()}
	}

	if err := uc.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *CreateUserUseCase) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if newPassword == "" {
		return &DomainError{Code: CodeInvalidInput, Message: "password is required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return &TechnicalError{Code: "HASH_ERROR", Message: err.Error()}
	}
	return uc.UserRepo.UpdatePassword(ctx, userID, string(hash))
}
