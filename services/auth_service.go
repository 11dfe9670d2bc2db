package services

import (
	"context"
	"errors"
	"time"

	"labquote/models"
	"labquote/storage"
	"labquote/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService signs users in and keeps their sessions.
type AuthService struct {
	db            *gorm.DB
	users         *UserService
	sessions      *storage.Sessions
	tokens        *utils.Tokens
	allowMultiple bool
	now           func() time.Time
}

func NewAuthService(db *gorm.DB, users *UserService, sessions *storage.Sessions, tokens *utils.Tokens, allowMultiple bool) *AuthService {
	return &AuthService{
		db:            db,
		users:         users,
		sessions:      sessions,
		tokens:        tokens,
		allowMultiple: allowMultiple,
		now:           time.Now,
	}
}

// Login verifies credentials and opens a session bound to a refresh token.
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*models.LoginResponse, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	refresh, refreshExpires, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, sessionID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.GenerateJWT(user.ID, user.Email, user.Role, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		UserID:                user.ID,
		SessionID:             sessionID,
		IPAddress:             ip,
		UserAgent:             userAgent,
		ExpiresAt:             refreshExpires,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExpires,
		CreatedAt:             now,
	}
	if err := s.sessions.Save(ctx, session, s.allowMultiple); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_access", now).Error; err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Message:      "User successfully logged in",
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
		Role:         user.Role,
		User: models.LoginUser{
			ID:       user.ID,
			Email:    user.Email,
			Name:     user.Name,
			UserCode: user.UserCode,
		},
	}, nil
}

// Refresh exchanges a refresh token for a new access token and rotates the
// refresh token. A token that no longer matches its session is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.tokens.ValidateJWT(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.Get(ctx, claims.SessionID, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if session.RefreshToken != refreshToken || session.UserID != claims.UserID {
		return nil, ErrUnauthorized
	}
	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if user.Suspended {
		return nil, ErrForbidden
	}

	access, err := s.tokens.GenerateJWT(user.ID, user.Email, user.Role, session.SessionID)
	if err != nil {
		return nil, err
	}
	refresh, expires, err := s.tokens.GenerateRefreshToken(user.ID, user.Email, session.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.SaveRefreshToken(ctx, session.SessionID, user.ID, refresh, expires); err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Message:      "Token refreshed",
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    session.SessionID,
		Role:         user.Role,
		User:         models.LoginUser{ID: user.ID, Email: user.Email, Name: user.Name, UserCode: user.UserCode},
	}, nil
}

// Authenticate resolves an access token to a live, unsuspended user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, *utils.Claims, error) {
	claims, err := s.tokens.ValidateJWT(accessToken, utils.TokenTypeAccess)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	if _, err := s.sessions.Get(ctx, claims.SessionID, s.now()); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	if user.Suspended {
		return nil, nil, ErrForbidden
	}
	return user, claims, nil
}

// ValidateSession reports the user behind a session id.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.sessions.Get(ctx, sessionID, s.now())
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	user, err := s.users.Get(ctx, session.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if user.Suspended {
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string, userID uint) error {
	err := s.sessions.Delete(ctx, sessionID, userID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil
	}
	return err
}

func (s *AuthService) Sessions(ctx context.Context, userID uint) ([]models.Session, error) {
	return s.sessions.Active(ctx, userID, s.now())
}

// CleanupSessions removes sessions that expired more than grace ago.
func (s *AuthService) CleanupSessions(ctx context.Context, grace time.Duration) (int64, error) {
	return s.sessions.CleanupExpired(ctx, s.now().Add(-grace))
}
