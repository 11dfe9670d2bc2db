package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labquote/models"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

// Sessions persists signed-in devices and their refresh tokens.
type Sessions struct {
	db *gorm.DB
}

func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

// Save stores a new session. Unless allowMultiple is set, the user's other
// sessions are removed first.
func (s *Sessions) Save(ctx context.Context, session *models.Session, allowMultiple bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !allowMultiple {
			if err := tx.Where("user_id = ?", session.UserID).Delete(&models.Session{}).Error; err != nil {
				return fmt.Errorf("failed to delete user sessions: %w", err)
			}
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// Get returns a session that has not expired.
func (s *Sessions) Get(ctx context.Context, sessionID string, now time.Time) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND expires_at > ?", sessionID, now).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveRefreshToken rotates the refresh token bound to a session.
func (s *Sessions) SaveRefreshToken(ctx context.Context, sessionID string, userID uint, token string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"refresh_token":            token,
			"refresh_token_expires_at": expiresAt,
			"expires_at":               expiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes one session of a user.
func (s *Sessions) Delete(ctx context.Context, sessionID string, userID uint) error {
	res := s.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&models.Session{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteForUser signs a user out everywhere.
func (s *Sessions) DeleteForUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// Active lists a user's live sessions, newest first.
func (s *Sessions) Active(ctx context.Context, userID uint, now time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// CleanupExpired deletes sessions that expired before the cutoff.
func (s *Sessions) CleanupExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", cutoff).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
