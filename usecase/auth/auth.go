package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/repository"
	"github.com/taskledger/backend/usecase"
)

// TokenConfig carries the JWT signing settings.
type TokenConfig struct {
	Secret string
	Issuer string
}

// Credentials is the result of a successful login.
type Credentials struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	activity usecase.ActivityRecorder
	token    TokenConfig
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	activity usecase.ActivityRecorder,
	token TokenConfig,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		activity: activity,
		token:    token,
		logger:   logger,
	}
}

// Users lists every registered account, newest first. Password hashes
// never serialize.
func (uc *UseCase) Users(ctx context.Context) ([]domain.User, error) {
	return uc.users.List(ctx)
}

// Register creates a user with a bcrypt password hash. Passwords are
// never persisted or compared in the clear.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.ErrCodeInvalid, "a valid email is required")
	}
	if password == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := uc.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
	})
	if err != nil {
		return nil, err
	}

	if uc.activity != nil {
		entry := domain.Activity{
			ActorID:  created.ID,
			Action:   domain.ActionRegistered,
			Entity:   domain.EntityUser,
			EntityID: created.ID,
			Detail:   created.Email,
		}
		if err := uc.activity.Record(ctx, entry); err != nil {
			uc.logger.Warn("failed to record registration", zap.Error(err))
		}
	}
	return created, nil
}

// Login verifies the credentials and issues a session plus a signed
// token carrying the session identity. Lookup and comparison failures
// are reported identically so login probes cannot enumerate emails.
func (uc *UseCase) Login(ctx context.Context, email, password string, ttl time.Duration) (*Credentials, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}

	user, err := uc.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Admin:     user.IsAdmin(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.issueToken(user, session)
	if err != nil {
		return nil, err
	}

	return &Credentials{User: user, Session: session, Token: token}, nil
}

// Logout revokes the session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// Refresh extends an existing session's lifetime. The session is
// re-saved with the new deadline so the stored payload and the store
// TTL never disagree about when it expires.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	session.ExpiresAt = time.Now().Add(ttl)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Session resolves a session id, treating an expired entry as missing.
func (uc *UseCase) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) issueToken(user *domain.User, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    strconv.FormatInt(user.ID, 10),
		"email":      user.Email,
		"admin":      user.IsAdmin(),
		"session_id": session.ID,
		"iss":        uc.token.Issuer,
		"iat":        session.CreatedAt.Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.token.Secret))
}
