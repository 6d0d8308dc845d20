package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"suiteship/internal/broker"
	"suiteship/internal/models"
	"suiteship/internal/redisclient"
	"suiteship/internal/store"
	"suiteship/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords;
	// callers get one error so usernames cannot be enumerated.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTooManyAttempts means the username is throttled after repeated
	// failed logins.
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	// ErrUnauthenticated means no live session backs the presented token.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Service is the authentication collaborator: username/password login
// backed by bcrypt hashes in Postgres and opaque session tokens in Redis.
type Service struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	sessionTTL     time.Duration
	bcryptCost     int
	maxFailures    int64
	failWindow     time.Duration
}

// NewService creates a new auth service
func NewService(st *store.Store, redis *redisclient.Client, eventPublisher *broker.EventPublisher, sessionTTL time.Duration, bcryptCost int, maxFailures int64, failWindow time.Duration) *Service {
	return &Service{
		store:          st,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		sessionTTL:     sessionTTL,
		bcryptCost:     bcryptCost,
		maxFailures:    maxFailures,
		failWindow:     failWindow,
	}
}

// Register creates a new CLIENT user and opens a session for it.
// Returns the user and the session token.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username: username,
		Password: hash,
		Role:     models.RoleClient,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))

	event := &models.UserRegisteredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeUserRegistered,
			Timestamp: time.Now(),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	if err := s.eventPublisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserRegistered event", zap.Error(err))
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login authenticates a username/password pair and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	failures, err := s.redis.LoginFailures(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check login throttle: %w", err)
	}
	if failures >= s.maxFailures {
		util.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, "", ErrTooManyAttempts
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.recordFailure(ctx, username)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !CheckPassword(user.Password, password) {
		s.recordFailure(ctx, username)
		return nil, "", ErrInvalidCredentials
	}

	if err := s.redis.ClearLoginFailures(ctx, username); err != nil {
		s.logger.Warn("Failed to clear login failures", zap.Error(err))
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return user, token, nil
}

// Logout destroys the session behind a token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.redis.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user and slides the session
// TTL forward. Returns ErrUnauthenticated for dead tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := s.redis.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, redisclient.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if err := s.redis.RefreshSession(ctx, token, s.sessionTTL); err != nil {
		s.logger.Warn("Failed to refresh session", zap.Error(err))
	}

	return user, nil
}

func (s *Service) openSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.New().String()
	if err := s.redis.SetSession(ctx, token, userID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (s *Service) recordFailure(ctx context.Context, username string) {
	util.LoginsTotal.WithLabelValues("failed").Inc()
	if _, err := s.redis.RecordLoginFailure(ctx, username, s.failWindow); err != nil {
		s.logger.Warn("Failed to record login failure", zap.Error(err))
	}
}

// SessionTTL exposes the configured session lifetime for cookie max-age.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}
