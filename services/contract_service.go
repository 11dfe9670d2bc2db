package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labquote/models"
	"labquote/repository"

	"gorm.io/gorm"
)

type ContractService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{db: db, now: time.Now}
}

type ContractFilter struct {
	Status     string
	CustomerID uint
	Query      string
	Page       int
	PageSize   int
}

func checkContractDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return validation("end date %s is before start date %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return nil
}

func checkAdvanceRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return validation("advance rate %.2f must be between 0 and 100", rate)
	}
	return nil
}

// Create signs a contract for a won quotation. Customer, title and amount are
// copied from the quotation.
func (s *ContractService) Create(ctx context.Context, actor Actor, req models.ContractRequest) (*models.Contract, error) {
	if err := checkContractDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := checkAdvanceRate(req.AdvanceRate); err != nil {
		return nil, err
	}
	var c models.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Quotation
		if err := tx.First(&q, req.QuotationID).Error; err != nil {
			return translate(err, "quotation")
		}
		if q.Status != models.QuotationStatusWon {
			return fmt.Errorf("%w: %s is %s, only won quotations can be contracted", ErrInvalidTransition, q.QuotationNumber, q.Status)
		}
		contractDate := dateOnly(s.now())
		if req.ContractDate != nil && !req.ContractDate.IsZero() {
			contractDate = dateOnly(*req.ContractDate)
		}
		c = models.Contract{
			ContractNumber: repository.ContractNumber(q.QuotationNumber),
			QuotationID:    q.ID,
			CustomerID:     q.CustomerID,
			Title:          q.Title,
			ContractDate:   contractDate,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Amount:         q.GrandTotal,
			AdvanceRate:    req.AdvanceRate,
			Status:         models.ContractStatusActive,
			Notes:          req.Notes,
			CreatedBy:      actor.UserID,
		}
		if err := tx.Create(&c).Error; err != nil {
			return translate(err, "contract for "+q.QuotationNumber)
		}
		return record(tx, actor, EntityContract, c.ID, "create", "%s amount %d", c.ContractNumber, c.Amount)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, c.ID)
}

func (s *ContractService) Get(ctx context.Context, id uint) (*models.Contract, error) {
	var c models.Contract
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Quotation").
		Preload("Quotation.Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Quotation.Requester").
		First(&c, id).Error
	if err != nil {
		return nil, translate(err, "contract")
	}
	return &c, nil
}

func (s *ContractService) List(ctx context.Context, f ContractFilter) ([]models.Contract, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Contract{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		q = q.Where("(LOWER(contract_number) LIKE ? OR LOWER(title) LIKE ?)", like, like)
	}
	var list []models.Contract
	total, err := findPage(q, "contract_date DESC, id DESC", f.Page, f.PageSize, &list, "Customer")
	return list, total, err
}

// Update edits an active contract.
func (s *ContractService) Update(ctx context.Context, actor Actor, id uint, req models.ContractUpdateRequest) (*models.Contract, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Contract
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "contract")
		}
		if c.Status != models.ContractStatusActive {
			return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, c.ContractNumber, c.Status)
		}
		if t := strings.TrimSpace(req.Title); t != "" {
			c.Title = t
		}
		if req.StartDate != nil {
			c.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			c.EndDate = req.EndDate
		}
		if err := checkContractDates(c.StartDate, c.EndDate); err != nil {
			return err
		}
		if req.AdvanceRate != nil {
			if err := checkAdvanceRate(*req.AdvanceRate); err != nil {
				return err
			}
			c.AdvanceRate = *req.AdvanceRate
		}
		if req.Notes != nil {
			c.Notes = *req.Notes
		}
		if err := tx.Omit("Quotation", "Customer").Save(&c).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityContract, c.ID, "update", "%s updated", c.ContractNumber)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ContractService) setStatus(ctx context.Context, actor Actor, id uint, status, action string) (*models.Contract, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Contract
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "contract")
		}
		if c.Status != models.ContractStatusActive {
			return fmt.Errorf("%w: cannot %s %s while %s", ErrInvalidTransition, action, c.ContractNumber, c.Status)
		}
		updates := map[string]interface{}{"status": status}
		if status == models.ContractStatusCompleted && c.EndDate == nil {
			end := dateOnly(s.now())
			updates["end_date"] = end
		}
		if err := tx.Model(&c).Updates(updates).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityContract, c.ID, action, "%s %s", c.ContractNumber, status)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ContractService) Complete(ctx context.Context, actor Actor, id uint) (*models.Contract, error) {
	return s.setStatus(ctx, actor, id, models.ContractStatusCompleted, "complete")
}

func (s *ContractService) Terminate(ctx context.Context, actor Actor, id uint) (*models.Contract, error) {
	return s.setStatus(ctx, actor, id, models.ContractStatusTerminated, "terminate")
}

// CountActive counts contracts still running.
func (s *ContractService) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Contract{}).Where("status = ?", models.ContractStatusActive).Count(&n).Error
	return n, err
}
