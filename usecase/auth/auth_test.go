package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskledger/backend/domain"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestUseCase(users *MockUserRepository, sessions *MockSessionRepository) *UseCase {
	return New(users, sessions, nil, TokenConfig{Secret: "test-secret", Issuer: "taskledger"}, nil)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedCode  domain.ErrorCode
		expectedError error
	}{
		{
			name:     "successful registration",
			email:    "new@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(&domain.User{
					ID:    1,
					Email: "new@example.com",
					Role:  domain.RoleMember,
				}, nil)
			},
		},
		{
			name:         "malformed email",
			email:        "not-an-email",
			password:     "password123",
			setupMock:    func(*MockUserRepository) {},
			expectedCode: domain.ErrCodeInvalid,
		},
		{
			name:         "empty password",
			email:        "new@example.com",
			password:     "",
			setupMock:    func(*MockUserRepository) {},
			expectedCode: domain.ErrCodeInvalid,
		},
		{
			name:     "duplicate email",
			email:    "taken@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil, domain.ErrEmailTaken)
			},
			expectedCode: domain.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			tt.setupMock(mockUsers)

			uc := newTestUseCase(mockUsers, new(MockSessionRepository))
			user, err := uc.Register(context.Background(), tt.email, tt.password)

			if tt.expectedCode != "" {
				assert.Error(t, err)
				assert.True(t, domain.IsDomainError(err, tt.expectedCode))
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			}

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.PasswordHash != "password123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
	})).Return(&domain.User{ID: 1, Email: "new@example.com"}, nil)

	uc := newTestUseCase(mockUsers, new(MockSessionRepository))
	_, err := uc.Register(context.Background(), "new@example.com", "password123")

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	account := &domain.User{ID: 5, Email: "user@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin}

	t.Run("successful login issues a verifiable token", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockSessions := new(MockSessionRepository)
		mockUsers.On("GetByEmail", mock.Anything, "user@example.com").Return(account, nil)
		mockSessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

		uc := newTestUseCase(mockUsers, mockSessions)
		creds, err := uc.Login(context.Background(), "user@example.com", "password123", time.Hour)

		assert.NoError(t, err)
		assert.NotNil(t, creds)
		assert.Equal(t, int64(5), creds.Session.UserID)
		assert.True(t, creds.Session.Admin)

		token, err := jwt.Parse(creds.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, "5", claims["user_id"])
		assert.Equal(t, "user@example.com", claims["email"])
		assert.Equal(t, true, claims["admin"])
		assert.Equal(t, creds.Session.ID, claims["session_id"])

		mockSessions.AssertExpectations(t)
	})

	t.Run("unknown email reports unauthorized", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrUserNotFound)

		uc := newTestUseCase(mockUsers, new(MockSessionRepository))
		creds, err := uc.Login(context.Background(), "nobody@example.com", "password123", time.Hour)

		assert.Nil(t, creds)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	})

	t.Run("wrong password reports unauthorized", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByEmail", mock.Anything, "user@example.com").Return(account, nil)

		uc := newTestUseCase(mockUsers, new(MockSessionRepository))
		creds, err := uc.Login(context.Background(), "user@example.com", "wrong", time.Hour)

		assert.Nil(t, creds)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	})
}

func TestSession(t *testing.T) {
	t.Run("expired session is deleted and reported missing", func(t *testing.T) {
		mockSessions := new(MockSessionRepository)
		mockSessions.On("Get", mock.Anything, "sid").Return(&domain.Session{
			ID:        "sid",
			UserID:    5,
			ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)
		mockSessions.On("Delete", mock.Anything, "sid").Return(nil)

		uc := newTestUseCase(new(MockUserRepository), mockSessions)
		session, err := uc.Session(context.Background(), "sid")

		assert.Nil(t, session)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
		mockSessions.AssertExpectations(t)
	})

	t.Run("live session resolves", func(t *testing.T) {
		mockSessions := new(MockSessionRepository)
		mockSessions.On("Get", mock.Anything, "sid").Return(&domain.Session{
			ID:        "sid",
			UserID:    5,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)

		uc := newTestUseCase(new(MockUserRepository), mockSessions)
		session, err := uc.Session(context.Background(), "sid")

		assert.NoError(t, err)
		assert.Equal(t, int64(5), session.UserID)
	})
}

func TestRefresh(t *testing.T) {
	originalDeadline := time.Now().Add(time.Minute)

	mockSessions := new(MockSessionRepository)
	mockSessions.On("Get", mock.Anything, "sid").Return(&domain.Session{
		ID:        "sid",
		UserID:    5,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: originalDeadline,
	}, nil)
	// The payload must be re-saved with the new deadline, not just have
	// its store TTL bumped: Session() reads expires_at from the payload.
	mockSessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.ID == "sid" && s.ExpiresAt.After(time.Now().Add(29*time.Minute))
	})).Return(nil)

	uc := newTestUseCase(new(MockUserRepository), mockSessions)
	session, err := uc.Refresh(context.Background(), "sid", 30*time.Minute)

	assert.NoError(t, err)
	// A refreshed session stays valid past its original deadline.
	assert.False(t, session.IsExpired(originalDeadline.Add(time.Second)))
	mockSessions.AssertExpectations(t)
}
