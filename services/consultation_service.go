package services

import (
	"context"
	"strings"
	"time"

	"labquote/models"

	"gorm.io/gorm"
)

type ConsultationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewConsultationService(db *gorm.DB) *ConsultationService {
	return &ConsultationService{db: db, now: time.Now}
}

type ConsultationFilter struct {
	CustomerID  uint
	LeadID      uint
	UserID      uint
	PendingOnly bool
	Page        int
	PageSize    int
}

func (s *ConsultationService) check(tx *gorm.DB, c *models.Consultation) error {
	c.Subject = strings.TrimSpace(c.Subject)
	if c.Subject == "" {
		return validation("subject is required")
	}
	if c.CustomerID == nil && c.LeadID == nil {
		return validation("a consultation needs a customer or a lead")
	}
	if c.Channel == "" {
		c.Channel = models.ChannelPhone
	}
	if !contains(models.ConsultationChannels, c.Channel) {
		return validation("unknown channel %q", c.Channel)
	}
	if c.ConsultedAt.IsZero() {
		c.ConsultedAt = s.now()
	}
	if c.CustomerID != nil {
		if err := tx.Select("id").First(&models.Customer{}, *c.CustomerID).Error; err != nil {
			return translate(err, "customer")
		}
	}
	if c.LeadID != nil {
		if err := tx.Select("id").First(&models.Lead{}, *c.LeadID).Error; err != nil {
			return translate(err, "lead")
		}
	}
	if c.RequesterID != nil {
		if c.CustomerID == nil {
			return validation("a requester needs a customer")
		}
		var n int64
		if err := tx.Model(&models.Requester{}).Where("id = ? AND customer_id = ?", *c.RequesterID, *c.CustomerID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return validation("requester %d does not belong to customer %d", *c.RequesterID, *c.CustomerID)
		}
	}
	return nil
}

func (s *ConsultationService) Create(ctx context.Context, actor Actor, in models.Consultation) (*models.Consultation, error) {
	in.ID = 0
	in.UserID = actor.UserID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.check(tx, &in); err != nil {
			return err
		}
		if err := tx.Create(&in).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityConsultation, in.ID, "create", "%s", in.Subject)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *ConsultationService) Update(ctx context.Context, actor Actor, id uint, in models.Consultation) (*models.Consultation, error) {
	var c models.Consultation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "consultation")
		}
		in.ID = c.ID
		in.UserID = c.UserID
		in.CreatedAt = c.CreatedAt
		if in.ConsultedAt.IsZero() {
			in.ConsultedAt = c.ConsultedAt
		}
		if err := s.check(tx, &in); err != nil {
			return err
		}
		c = in
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityConsultation, c.ID, "update", "%s", c.Subject)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ConsultationService) Get(ctx context.Context, id uint) (*models.Consultation, error) {
	var c models.Consultation
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "consultation")
	}
	return &c, nil
}

func (s *ConsultationService) List(ctx context.Context, f ConsultationFilter) ([]models.Consultation, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Consultation{})
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.LeadID != 0 {
		q = q.Where("lead_id = ?", f.LeadID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.PendingOnly {
		q = q.Where("follow_up_done = ? AND follow_up_date IS NOT NULL", false)
	}
	var list []models.Consultation
	total, err := findPage(q, "consulted_at DESC, id DESC", f.Page, f.PageSize, &list)
	return list, total, err
}

// CompleteFollowUp marks the follow-up of a consultation as done.
func (s *ConsultationService) CompleteFollowUp(ctx context.Context, actor Actor, id uint) (*models.Consultation, error) {
	var c models.Consultation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "consultation")
		}
		if c.FollowUpDate == nil {
			return validation("consultation %d has no follow-up", id)
		}
		c.FollowUpDone = true
		if err := tx.Model(&c).Update("follow_up_done", true).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityConsultation, c.ID, "follow_up_done", "%s", c.Subject)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ConsultationService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Consultation
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "consultation")
		}
		if !actor.IsAdmin() && c.UserID != actor.UserID {
			return ErrForbidden
		}
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityConsultation, id, "delete", "%s", c.Subject)
	})
}

// PendingFollowUps returns open follow-ups due on or before until.
func (s *ConsultationService) PendingFollowUps(ctx context.Context, until time.Time) ([]models.Consultation, error) {
	var list []models.Consultation
	err := s.db.WithContext(ctx).
		Where("follow_up_done = ? AND follow_up_date IS NOT NULL AND follow_up_date <= ?", false, until).
		Order("follow_up_date, id").
		Find(&list).Error
	return list, err
}
