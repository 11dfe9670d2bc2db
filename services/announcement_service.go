package services

import (
	"context"
	"strings"
	"time"

	"labquote/models"

	"gorm.io/gorm"
)

type AnnouncementService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnnouncementService(db *gorm.DB) *AnnouncementService {
	return &AnnouncementService{db: db, now: time.Now}
}

func (s *AnnouncementService) clean(a *models.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return validation("title is required")
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = s.now()
	}
	if a.ExpiresAt != nil && !a.ExpiresAt.After(a.PublishedAt) {
		return validation("expiry must be after publication")
	}
	return nil
}

func (s *AnnouncementService) Create(ctx context.Context, actor Actor, in models.Announcement) (*models.Announcement, error) {
	in.ID = 0
	in.AuthorID = actor.UserID
	if err := s.clean(&in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&in).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityAnnouncement, in.ID, "create", "%s", in.Title)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *AnnouncementService) Update(ctx context.Context, actor Actor, id uint, in models.Announcement) (*models.Announcement, error) {
	var a models.Announcement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return translate(err, "announcement")
		}
		if in.PublishedAt.IsZero() {
			in.PublishedAt = a.PublishedAt
		}
		if err := s.clean(&in); err != nil {
			return err
		}
		a.Title = in.Title
		a.Body = in.Body
		a.Pinned = in.Pinned
		a.PublishedAt = in.PublishedAt
		a.ExpiresAt = in.ExpiresAt
		if err := tx.Save(&a).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityAnnouncement, a.ID, "update", "%s", a.Title)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AnnouncementService) Get(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, "announcement")
	}
	return &a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Announcement
		if err := tx.First(&a, id).Error; err != nil {
			return translate(err, "announcement")
		}
		if err := tx.Delete(&a).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityAnnouncement, id, "delete", "%s", a.Title)
	})
}

// List returns every announcement, newest first.
func (s *AnnouncementService) List(ctx context.Context, page, size int) ([]models.Announcement, int64, error) {
	var list []models.Announcement
	total, err := findPage(s.db.WithContext(ctx).Model(&models.Announcement{}), "published_at DESC, id DESC", page, size, &list)
	return list, total, err
}

// Active returns published, unexpired announcements with pinned ones first.
func (s *AnnouncementService) Active(ctx context.Context, limit int) ([]models.Announcement, error) {
	now := s.now()
	q := s.db.WithContext(ctx).
		Where("published_at <= ? AND (expires_at IS NULL OR expires_at > ?)", now, now).
		Order("pinned DESC, published_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []models.Announcement
	err := q.Find(&list).Error
	return list, err
}
