package services

import (
	"context"
	"fmt"
	"time"

	"labquote/models"

	"gorm.io/gorm"
)

// Actor identifies who performs a mutating call.
type Actor struct {
	UserID    uint
	Name      string
	Role      string
	IPAddress string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Entity types recorded in the activity log.
const (
	EntityUser         = "user"
	EntityCustomer     = "customer"
	EntityRequester    = "requester"
	EntityLead         = "lead"
	EntityConsultation = "consultation"
	EntityCatalog      = "catalog"
	EntityQuotation    = "quotation"
	EntityContract     = "contract"
	EntityAnnouncement = "announcement"
)

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// record writes an audit row inside the caller's transaction.
func record(tx *gorm.DB, actor Actor, entityType string, entityID uint, action, format string, args ...interface{}) error {
	entry := models.ActivityLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Detail:     fmt.Sprintf(format, args...),
		IPAddress:  actor.IPAddress,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// ActivityFilter narrows the audit listing.
type ActivityFilter struct {
	UserID     uint
	EntityType string
	EntityID   uint
	Query      string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

func (s *ActivityService) List(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		q = q.Where("(LOWER(detail) LIKE ? OR LOWER(user_name) LIKE ?)", like, like)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var logs []models.ActivityLog
	total, err := findPage(q, "created_at DESC, id DESC", f.Page, f.PageSize, &logs)
	return logs, total, err
}
