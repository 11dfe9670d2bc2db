package services

import (
	"context"
	"fmt"
	"strings"

	"labquote/models"

	"gorm.io/gorm"
)

type LeadService struct {
	db *gorm.DB
}

func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{db: db}
}

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Stage      string
	Source     string
	AssignedTo uint
	Query      string
	Open       bool
	Page       int
	PageSize   int
}

func cleanLead(l *models.Lead) error {
	l.CompanyName = strings.TrimSpace(l.CompanyName)
	if l.CompanyName == "" {
		return validation("company name is required")
	}
	if l.Source == "" {
		l.Source = models.LeadSourceOther
	}
	if !contains(models.LeadSources, l.Source) {
		return validation("unknown lead source %q", l.Source)
	}
	for _, t := range l.InterestedTypes {
		if !contains(models.QuotationTypes, t) {
			return validation("unknown quotation type %q", t)
		}
	}
	return nil
}

func (s *LeadService) Create(ctx context.Context, actor Actor, in models.Lead) (*models.Lead, error) {
	if err := cleanLead(&in); err != nil {
		return nil, err
	}
	in.ID = 0
	in.CustomerID = nil
	if in.Stage == "" {
		in.Stage = models.LeadStageNew
	}
	if in.Stage == models.LeadStageConverted || !contains(models.LeadStages, in.Stage) {
		return nil, validation("a new lead cannot start in stage %q", in.Stage)
	}
	if in.AssignedTo == nil && actor.UserID != 0 {
		uid := actor.UserID
		in.AssignedTo = &uid
	}
	if in.InterestedTypes == nil {
		in.InterestedTypes = models.StringList{}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&in).Error; err != nil {
			return translate(err, "lead")
		}
		return record(tx, actor, EntityLead, in.ID, "create", "%s created", in.CompanyName)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Update edits the contact details; stage moves go through ChangeStage.
func (s *LeadService) Update(ctx context.Context, actor Actor, id uint, in models.Lead) (*models.Lead, error) {
	if err := cleanLead(&in); err != nil {
		return nil, err
	}
	var l models.Lead
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&l, id).Error; err != nil {
			return translate(err, "lead")
		}
		l.CompanyName = in.CompanyName
		l.ContactName = in.ContactName
		l.Email = in.Email
		l.Phone = in.Phone
		l.Source = in.Source
		l.InterestedTypes = in.InterestedTypes
		if l.InterestedTypes == nil {
			l.InterestedTypes = models.StringList{}
		}
		l.Notes = in.Notes
		l.AssignedTo = in.AssignedTo
		l.NextFollowUp = in.NextFollowUp
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityLead, l.ID, "update", "%s updated", l.CompanyName)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LeadService) Get(ctx context.Context, id uint) (*models.Lead, error) {
	var l models.Lead
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, translate(err, "lead")
	}
	return &l, nil
}

func (s *LeadService) List(ctx context.Context, f LeadFilter) ([]models.Lead, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Lead{})
	if f.Stage != "" {
		q = q.Where("stage = ?", f.Stage)
	}
	if f.Open {
		q = q.Where("stage NOT IN ?", []string{models.LeadStageConverted, models.LeadStageLost})
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.AssignedTo != 0 {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		q = q.Where("(LOWER(company_name) LIKE ? OR LOWER(contact_name) LIKE ? OR LOWER(email) LIKE ?)", like, like, like)
	}
	var list []models.Lead
	total, err := findPage(q, "updated_at DESC, id DESC", f.Page, f.PageSize, &list)
	return list, total, err
}

// ChangeStage moves an open lead to another non-converted stage.
func (s *LeadService) ChangeStage(ctx context.Context, actor Actor, id uint, stage string) (*models.Lead, error) {
	if !contains(models.LeadStages, stage) {
		return nil, validation("unknown lead stage %q", stage)
	}
	if stage == models.LeadStageConverted {
		return nil, fmt.Errorf("%w: use convert to turn a lead into a customer", ErrInvalidTransition)
	}
	var l models.Lead
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&l, id).Error; err != nil {
			return translate(err, "lead")
		}
		if l.Stage == models.LeadStageConverted {
			return fmt.Errorf("%w: lead %d is already converted", ErrInvalidTransition, id)
		}
		from := l.Stage
		l.Stage = stage
		if err := tx.Model(&l).Update("stage", stage).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityLead, l.ID, "stage", "%s: %s -> %s", l.CompanyName, from, stage)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Convert turns a lead into a customer. The lead contact becomes the first
// requester. Converted or lost leads cannot be converted.
func (s *LeadService) Convert(ctx context.Context, actor Actor, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Lead
		if err := tx.First(&l, id).Error; err != nil {
			return translate(err, "lead")
		}
		if l.Stage == models.LeadStageConverted || l.Stage == models.LeadStageLost {
			return fmt.Errorf("%w: lead %d is %s", ErrInvalidTransition, id, l.Stage)
		}

		customer = models.Customer{
			CompanyName: l.CompanyName,
			Email:       l.Email,
			Phone:       l.Phone,
			Notes:       l.Notes,
			CreatedBy:   actor.UserID,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return translate(err, "customer")
		}
		if strings.TrimSpace(l.ContactName) != "" {
			r := models.Requester{
				CustomerID: customer.ID,
				Name:       l.ContactName,
				Email:      l.Email,
				Phone:      l.Phone,
			}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			customer.Requesters = []models.Requester{r}
		}

		if err := tx.Model(&l).Updates(map[string]interface{}{
			"stage":       models.LeadStageConverted,
			"customer_id": customer.ID,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Consultation{}).
			Where("lead_id = ? AND customer_id IS NULL", l.ID).
			Update("customer_id", customer.ID).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityLead, l.ID, "convert", "%s converted to customer %d", l.CompanyName, customer.ID)
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *LeadService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Lead
		if err := tx.First(&l, id).Error; err != nil {
			return translate(err, "lead")
		}
		if l.Stage == models.LeadStageConverted {
			return fmt.Errorf("%w: converted leads are kept for history", ErrInvalidTransition)
		}
		if err := tx.Delete(&l).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityLead, id, "delete", "%s deleted", l.CompanyName)
	})
}

// CountOpen counts leads that are neither converted nor lost.
func (s *LeadService) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("stage NOT IN ?", []string{models.LeadStageConverted, models.LeadStageLost}).
		Count(&n).Error
	return n, err
}
