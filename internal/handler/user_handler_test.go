package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowdeck/internal/auth"
	apperrors "flowdeck/internal/errors"
	"flowdeck/internal/model"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockUserService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]string) (*model.User, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Profile routes sit behind the token gate; a request that somehow reaches the
// handler without a verified identity is denied, same as the workflow routes.
func TestUserHandler_ProfileWithoutIdentity(t *testing.T) {
	svc := new(MockUserService)
	h := NewUserHandler(svc, zap.NewNop())

	c, _ := newWorkflowContext(t, http.MethodGet, "/api/users/profile", "", nil)
	err := h.GetProfile(c)
	httpErr := assertHandlerError(t, err, http.StatusUnauthorized, "ACCESS_DENIED")
	resp := httpErr.Message.(apperrors.ErrorResponse)
	assert.Equal(t, "access denied", resp.Error)
	svc.AssertNotCalled(t, "GetProfile")

	c, _ = newWorkflowContext(t, http.MethodPatch, "/api/users/profile", `{"name":"New Name"}`, nil)
	err = h.UpdateProfile(c)
	assertHandlerError(t, err, http.StatusUnauthorized, "ACCESS_DENIED")
	svc.AssertNotCalled(t, "UpdateProfile")
}

func TestUserHandler_GetProfile(t *testing.T) {
	userID := uuid.New()
	svc := new(MockUserService)
	svc.On("GetProfile", mock.Anything, userID).
		Return(&model.User{ID: userID, Name: "Test User", Email: "user@example.com"}, nil)
	h := NewUserHandler(svc, zap.NewNop())

	c, rec := newWorkflowContext(t, http.MethodGet, "/api/users/profile", "", &auth.Identity{ID: userID})
	require.NoError(t, h.GetProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestUserHandler_UpdateProfileForwardsOnlyProvidedFields(t *testing.T) {
	userID := uuid.New()
	svc := new(MockUserService)
	svc.On("UpdateProfile", mock.Anything, userID, map[string]string{"name": "New Name"}).
		Return(&model.User{ID: userID, Name: "New Name"}, nil)
	h := NewUserHandler(svc, zap.NewNop())

	c, rec := newWorkflowContext(t, http.MethodPatch, "/api/users/profile", `{"name":"New Name"}`, &auth.Identity{ID: userID})
	require.NoError(t, h.UpdateProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
