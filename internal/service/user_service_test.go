package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flowdeck/internal/auth"
	apperrors "flowdeck/internal/errors"
	"flowdeck/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestUserService(repo *MockUserRepository) UserService {
	return NewUserService(repo, auth.NewJWTService("test-secret", time.Hour), nil)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful registration",
			email: "new@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "email already registered",
			email: "existing@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").
					Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name:  "duplicate key race on create",
			email: "raced@example.com",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "raced@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc := newTestUserService(repo)

			user, token, err := svc.Register(context.Background(), "Test User", tt.email, "password123")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotEmpty(t, token)
			assert.True(t, user.IsActive)
			assert.NotEqual(t, "password123", user.PasswordHash)
			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	activeUser := func(t *testing.T) *model.User {
		return &model.User{
			ID:           uuid.New(),
			Name:         "Test User",
			Email:        "user@example.com",
			PasswordHash: hashPassword(t, "password123"),
			Role:         "user",
			IsActive:     true,
		}
	}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*testing.T, *MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "user@example.com",
			password: "password123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(activeUser(t), nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:          "missing email",
			email:         "",
			password:      "password123",
			setupMock:     func(t *testing.T, m *MockUserRepository) {},
			expectedError: apperrors.ErrMissingCredentials,
		},
		{
			name:          "missing password",
			email:         "user@example.com",
			password:      "",
			setupMock:     func(t *testing.T, m *MockUserRepository) {},
			expectedError: apperrors.ErrMissingCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "user@example.com",
			password: "wrong-password",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(activeUser(t), nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "deactivated account with correct password",
			email:    "user@example.com",
			password: "password123",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				user := activeUser(t)
				user.IsActive = false
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(user, nil)
			},
			expectedError: apperrors.ErrAccountDeactivated,
		},
		{
			name:     "deactivated account with wrong password",
			email:    "user@example.com",
			password: "wrong-password",
			setupMock: func(t *testing.T, m *MockUserRepository) {
				user := activeUser(t)
				user.IsActive = false
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(user, nil)
			},
			// active check comes before the password check
			expectedError: apperrors.ErrAccountDeactivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(t, repo)
			svc := newTestUserService(repo)

			user, token, err := svc.Login(context.Background(), tt.email, tt.password)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotEmpty(t, token)
			assert.NotNil(t, user.LastLogin)
			repo.AssertExpectations(t)
		})
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestUserService_LoginErrorsDoNotLeakWhichCredentialFailed(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}, nil)
	svc := newTestUserService(repo)

	_, _, unknownEmailErr := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, _, wrongPasswordErr := svc.Login(context.Background(), "user@example.com", "wrong-password")

	require.Error(t, unknownEmailErr)
	require.Error(t, wrongPasswordErr)
	assert.Equal(t, unknownEmailErr.Error(), wrongPasswordErr.Error())
}

func TestUserService_GetProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Name: "Test User"}, nil)
		svc := newTestUserService(repo)

		user, err := svc.GetProfile(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
		svc := newTestUserService(repo)

		_, err := svc.GetProfile(context.Background(), userID)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("no valid fields", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestUserService(repo)

		_, err := svc.UpdateProfile(context.Background(), userID, map[string]string{"role": "admin"})
		assert.ErrorIs(t, err, apperrors.ErrNoValidFields)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("allow-listed fields applied, others ignored", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:    userID,
			Name:  "Old Name",
			Email: "old@example.com",
			Role:  "user",
		}, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		svc := newTestUserService(repo)

		user, err := svc.UpdateProfile(context.Background(), userID, map[string]string{
			"name": "New Name",
			"role": "admin",
		})
		require.NoError(t, err)
		assert.Equal(t, "New Name", user.Name)
		assert.Equal(t, "old@example.com", user.Email)
		assert.Equal(t, "user", user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Email: "old@example.com"}, nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
		svc := newTestUserService(repo)

		_, err := svc.UpdateProfile(context.Background(), userID, map[string]string{"email": "taken@example.com"})
		assert.ErrorIs(t, err, apperrors.ErrEmailInUse)
	})
}
