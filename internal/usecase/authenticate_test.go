package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/calebrws/investor-portal/internal/entity"
)

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticateSuccess(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	user := &entity.User{
		ID:           "user-1",
		Username:     "eric",
		PasswordHash: hashFor(t, "eric123"),
	}
	userRepo.On("FindByUsername", ctx, "eric").Return(user, nil)
	userRepo.On("UpdateLastLogin", ctx, "user-1").Return(nil)

	uc := NewAuthenticateUserUseCase(userRepo, zap.NewNop())
	got, err := uc.Execute(ctx, LoginInput{Username: "eric", Password: "eric123"})

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	userRepo.AssertCalled(t, "UpdateLastLogin", ctx, "user-1")
}

func TestAuthenticateWrongPassword(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", ctx, "eric").Return(&entity.User{
		ID:           "user-1",
		Username:     "eric",
		PasswordHash: hashFor(t, "eric123"),
	}, nil)

	uc := NewAuthenticateUserUseCase(userRepo, zap.NewNop())
	_, err := uc.Execute(ctx, LoginInput{Username: "eric", Password: "wrong"})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvalidLogin, domainErr.Code)
}

func TestAuthenticateUnknownUserSameError(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", ctx, "ghost").Return(nil, entity.ErrUserNotFound)

	uc := NewAuthenticateUserUseCase(userRepo, zap.NewNop())
	_, unknownErr := uc.Execute(ctx, LoginInput{Username: "ghost", Password: "x"})

	userRepo.On("FindByUsername", ctx, "eric").Return(&entity.User{
		ID:           "user-1",
		PasswordHash: hashFor(t, "eric123"),
	}, nil)
	_, wrongPassErr := uc.Execute(ctx, LoginInput{Username: "eric", Password: "wrong"})

	// Identical messages so usernames cannot be probed.
	assert.EqualError(t, unknownErr, wrongPassErr.Error())
}

func TestAuthenticateEmptyInput(t *testing.T) {
	uc := NewAuthenticateUserUseCase(new(MockUserRepository), zap.NewNop())

	_, err := uc.Execute(context.Background(), LoginInput{})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvalidLogin, domainErr.Code)
}

func TestAuthenticateLastLoginFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", ctx, "eric").Return(&entity.User{
		ID:           "user-1",
		PasswordHash: hashFor(t, "eric123"),
	}, nil)
	userRepo.On("UpdateLastLogin", ctx, "user-1").Return(assert.AnError)

	uc := NewAuthenticateUserUseCase(userRepo, zap.NewNop())
	_, err := uc.Execute(ctx, LoginInput{Username: "eric", Password: "eric123"})

	assert.NoError(t, err)
}
