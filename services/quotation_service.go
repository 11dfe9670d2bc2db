package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"labquote/models"
	"labquote/pricing"
	"labquote/repository"
	"labquote/storage"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/gorm"
)

type QuotationConfig struct {
	ValidDays     int
	NumberRetries uint
}

// QuotationService runs the quotation lifecycle: draft, submitted, then won,
// lost or expired. Only drafts are editable.
type QuotationService struct {
	db      *gorm.DB
	catalog *CatalogService
	cfg     QuotationConfig
	now     func() time.Time
	backoff func() backoff.BackOff
}

func NewQuotationService(db *gorm.DB, catalog *CatalogService, cfg QuotationConfig) *QuotationService {
	if cfg.ValidDays <= 0 {
		cfg.ValidDays = 30
	}
	if cfg.NumberRetries == 0 {
		cfg.NumberRetries = 5
	}
	return &QuotationService{
		db:      db,
		catalog: catalog,
		cfg:     cfg,
		now:     time.Now,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 20 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			return b
		},
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Calculate prices a request without saving anything.
func (s *QuotationService) Calculate(ctx context.Context, req models.QuotationRequest) (*pricing.Result, error) {
	if !contains(models.QuotationTypes, req.QuotationType) {
		return nil, validation("unknown quotation type %q", req.QuotationType)
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	res, err := pricing.Quote(snap, snap.Fees(), req.QuotationType, req.Modality, req.Items, discountOf(req))
	if err != nil {
		return nil, translate(err, "pricing")
	}
	return &res, nil
}

func discountOf(req models.QuotationRequest) pricing.Discount {
	t := req.DiscountType
	if t == "" {
		t = models.DiscountNone
	}
	return pricing.Discount{Type: t, Value: req.DiscountValue}
}

// checkParties verifies the customer, requester and lead references.
func checkParties(tx *gorm.DB, req models.QuotationRequest) (*models.Customer, error) {
	if req.CustomerID == 0 {
		return nil, validation("customer is required")
	}
	var customer models.Customer
	if err := tx.First(&customer, req.CustomerID).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, validation("customer %d does not exist", req.CustomerID)
		}
		return nil, err
	}
	if req.RequesterID != nil {
		var n int64
		if err := tx.Model(&models.Requester{}).Where("id = ? AND customer_id = ?", *req.RequesterID, req.CustomerID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, validation("requester %d does not belong to customer %d", *req.RequesterID, req.CustomerID)
		}
	}
	if req.LeadID != nil {
		if err := tx.Select("id").First(&models.Lead{}, *req.LeadID).Error; err != nil {
			if storage.IsNotFound(err) {
				return nil, validation("lead %d does not exist", *req.LeadID)
			}
			return nil, err
		}
	}
	return &customer, nil
}

func applyPricing(q *models.Quotation, req models.QuotationRequest, res *pricing.Result) {
	q.Items = res.Items
	q.Subtotal = res.Summary.Subtotal
	q.AnalysisCost = res.Summary.AnalysisCost
	q.DiscountType = discountOf(req).Type
	q.DiscountValue = req.DiscountValue
	if q.DiscountType == models.DiscountNone {
		q.DiscountValue = 0
	}
	q.DiscountAmount = res.Summary.DiscountAmount
	q.Total = res.Summary.Total
	q.VAT = res.Summary.VAT
	q.GrandTotal = res.Summary.GrandTotal
}

func (s *QuotationService) dates(req models.QuotationRequest) (time.Time, time.Time) {
	issue := dateOnly(s.now())
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issue = dateOnly(*req.IssueDate)
	}
	days := req.ValidDays
	if days <= 0 {
		days = s.cfg.ValidDays
	}
	return issue, issue.AddDate(0, 0, days)
}

func (s *QuotationService) issuer(ctx context.Context, actor Actor) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, actor.UserID).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return &user, nil
}

// Create saves a new draft and assigns it the next quotation number for the
// issuer's user code and year.
func (s *QuotationService) Create(ctx context.Context, actor Actor, req models.QuotationRequest) (*models.Quotation, error) {
	res, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}
	user, err := s.issuer(ctx, actor)
	if err != nil {
		return nil, err
	}
	if _, err := checkParties(s.db.WithContext(ctx), req); err != nil {
		return nil, err
	}

	issue, validUntil := s.dates(req)
	draft := models.Quotation{
		QuotationType: req.QuotationType,
		Title:         strings.TrimSpace(req.Title),
		CustomerID:    req.CustomerID,
		RequesterID:   req.RequesterID,
		LeadID:        req.LeadID,
		CreatedBy:     user.ID,
		Modality:      req.Modality,
		Status:        models.QuotationStatusDraft,
		IssueDate:     issue,
		ValidUntil:    validUntil,
		Notes:         req.Notes,
	}
	applyPricing(&draft, req, res)

	return s.insertNumbered(ctx, actor, user.UserCode, draft, "create")
}

// insertNumbered allocates max(sequence)+1 and inserts. A concurrent insert
// of the same number fails on the unique index and is retried.
func (s *QuotationService) insertNumbered(ctx context.Context, actor Actor, userCode string, draft models.Quotation, action string) (*models.Quotation, error) {
	year := draft.IssueDate.Year()
	code, err := repository.NormalizeUserCode(userCode)
	if err != nil {
		return nil, validation("issuer has an invalid user code: %v", err)
	}

	op := func() (*models.Quotation, error) {
		q := draft
		q.ID = 0
		q.Items = make([]models.QuotationItem, len(draft.Items))
		for i, it := range draft.Items {
			it.ID = 0
			it.QuotationID = 0
			q.Items[i] = it
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int
			if err := tx.Model(&models.Quotation{}).
				Where("number_year = ? AND number_user_code = ?", year, code).
				Select("COALESCE(MAX(number_sequence), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			seq, err := repository.NextSequence(last)
			if err != nil {
				return err
			}
			number, err := repository.FormatQuotationNumber(year, code, q.QuotationType, seq)
			if err != nil {
				return err
			}
			q.QuotationNumber = number
			q.NumberYear = year
			q.NumberUserCode = code
			q.NumberSequence = seq
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
			return record(tx, actor, EntityQuotation, q.ID, action, "%s %s", number, q.Title)
		})
		if err != nil {
			if storage.IsUniqueViolation(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return &q, nil
	}

	q, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.backoff()),
		backoff.WithMaxTries(s.cfg.NumberRetries))
	if err != nil {
		return nil, translate(err, "quotation number")
	}
	return q, nil
}

// Update replaces the header and items of a draft and reprices it.
func (s *QuotationService) Update(ctx context.Context, actor Actor, id uint, req models.QuotationRequest) (*models.Quotation, error) {
	res, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}
	var q models.Quotation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&q, id).Error; err != nil {
			return translate(err, "quotation")
		}
		if err := canModify(actor, &q); err != nil {
			return err
		}
		if !q.Editable() {
			return fmt.Errorf("%w: %s is %s, only drafts can be edited", ErrInvalidTransition, q.QuotationNumber, q.Status)
		}
		if req.QuotationType != q.QuotationType {
			return validation("quotation type cannot change from %s to %s", q.QuotationType, req.QuotationType)
		}
		if _, err := checkParties(tx, req); err != nil {
			return err
		}

		if req.IssueDate != nil || req.ValidDays > 0 {
			if req.IssueDate == nil {
				issue := q.IssueDate
				req.IssueDate = &issue
			}
			q.IssueDate, q.ValidUntil = s.dates(req)
		}
		q.Title = strings.TrimSpace(req.Title)
		q.CustomerID = req.CustomerID
		q.RequesterID = req.RequesterID
		q.LeadID = req.LeadID
		q.Modality = req.Modality
		q.Notes = req.Notes
		applyPricing(&q, req, res)

		// Only a row that is still a draft is overwritten, so a submit that
		// lands between the read and this write is never reverted.
		saved := tx.Model(&q).
			Where("status = ?", models.QuotationStatusDraft).
			Select("*").
			Omit("Items", "Customer", "Requester", "Status", "SubmittedAt", "DecidedAt", "LostReason").
			Updates(&q)
		if saved.Error != nil {
			return saved.Error
		}
		if saved.RowsAffected == 0 {
			return fmt.Errorf("%w: %s changed concurrently", ErrConflict, q.QuotationNumber)
		}

		if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationItem{}).Error; err != nil {
			return err
		}
		for i := range q.Items {
			q.Items[i].QuotationID = q.ID
		}
		if len(q.Items) > 0 {
			if err := tx.Create(&q.Items).Error; err != nil {
				return err
			}
		}
		return record(tx, actor, EntityQuotation, q.ID, "update", "%s total %d", q.QuotationNumber, q.GrandTotal)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func canModify(actor Actor, q *models.Quotation) error {
	if actor.IsAdmin() || q.CreatedBy == actor.UserID {
		return nil
	}
	return fmt.Errorf("%w: %s belongs to another user", ErrForbidden, q.QuotationNumber)
}

func (s *QuotationService) Get(ctx context.Context, id uint) (*models.Quotation, error) {
	var q models.Quotation
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Preload("Customer").
		Preload("Requester").
		First(&q, id).Error
	if err != nil {
		return nil, translate(err, "quotation")
	}
	return &q, nil
}

// GetByNumber looks a quotation up by its printed number.
func (s *QuotationService) GetByNumber(ctx context.Context, number string) (*models.Quotation, error) {
	if _, err := repository.ParseQuotationNumber(number); err != nil {
		return nil, validation("%v", err)
	}
	var q models.Quotation
	if err := s.db.WithContext(ctx).Select("id").Where("quotation_number = ?", number).First(&q).Error; err != nil {
		return nil, translate(err, "quotation "+number)
	}
	return s.Get(ctx, q.ID)
}

func (s *QuotationService) filtered(ctx context.Context, f models.QuotationFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Quotation{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.QuotationType != "" {
		q = q.Where("quotation_type = ?", f.QuotationType)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.CreatedBy != 0 {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.Year != 0 {
		q = q.Where("number_year = ?", f.Year)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		sub := s.db.Model(&models.Customer{}).Select("id").Where("LOWER(company_name) LIKE ?", like)
		q = q.Where("(LOWER(quotation_number) LIKE ? OR LOWER(title) LIKE ? OR customer_id IN (?))", like, like, sub)
	}
	return q
}

func (s *QuotationService) List(ctx context.Context, f models.QuotationFilter) ([]models.Quotation, int64, error) {
	var list []models.Quotation
	total, err := findPage(s.filtered(ctx, f), "issue_date DESC, id DESC", f.Page, f.PageSize, &list, "Customer")
	return list, total, err
}

// ListAll returns every quotation matching f with items, for exports.
func (s *QuotationService) ListAll(ctx context.Context, f models.QuotationFilter) ([]models.Quotation, error) {
	var list []models.Quotation
	err := s.filtered(ctx, f).
		Preload("Customer").
		Preload("Requester").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Order("issue_date DESC, id DESC").
		Find(&list).Error
	return list, err
}

// Delete removes a draft and its items.
func (s *QuotationService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Quotation
		if err := tx.First(&q, id).Error; err != nil {
			return translate(err, "quotation")
		}
		if err := canModify(actor, &q); err != nil {
			return err
		}
		if !q.Editable() {
			return fmt.Errorf("%w: only drafts can be deleted, %s is %s", ErrInvalidTransition, q.QuotationNumber, q.Status)
		}
		if err := tx.Where("quotation_id = ?", q.ID).Delete(&models.QuotationItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&q).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityQuotation, id, "delete", "%s deleted", q.QuotationNumber)
	})
}

// transition moves a quotation from one of the from states to to.
func (s *QuotationService) transition(ctx context.Context, actor Actor, id uint, action string, from []string, to string, mutate func(tx *gorm.DB, q *models.Quotation) error) (*models.Quotation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Quotation
		if err := tx.First(&q, id).Error; err != nil {
			return translate(err, "quotation")
		}
		if err := canModify(actor, &q); err != nil {
			return err
		}
		if !contains(from, q.Status) {
			return fmt.Errorf("%w: cannot %s %s while %s", ErrInvalidTransition, action, q.QuotationNumber, q.Status)
		}
		prev := q.Status
		q.Status = to
		if mutate != nil {
			if err := mutate(tx, &q); err != nil {
				return err
			}
		}
		res := tx.Model(&models.Quotation{}).
			Where("id = ? AND status = ?", q.ID, prev).
			Updates(map[string]interface{}{
				"status":       q.Status,
				"submitted_at": q.SubmittedAt,
				"decided_at":   q.DecidedAt,
				"lost_reason":  q.LostReason,
				"updated_at":   s.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s changed concurrently", ErrConflict, q.QuotationNumber)
		}
		return record(tx, actor, EntityQuotation, q.ID, action, "%s: %s -> %s", q.QuotationNumber, prev, to)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Submit sends a draft to the customer.
func (s *QuotationService) Submit(ctx context.Context, actor Actor, id uint) (*models.Quotation, error) {
	return s.transition(ctx, actor, id, "submit", []string{models.QuotationStatusDraft}, models.QuotationStatusSubmitted,
		func(tx *gorm.DB, q *models.Quotation) error {
			var items int64
			if err := tx.Model(&models.QuotationItem{}).Where("quotation_id = ?", q.ID).Count(&items).Error; err != nil {
				return err
			}
			if items == 0 {
				return validation("%s has no items", q.QuotationNumber)
			}
			now := s.now()
			if q.ValidUntil.Before(dateOnly(now)) {
				return validation("%s validity ended on %s", q.QuotationNumber, q.ValidUntil.Format("2006-01-02"))
			}
			q.SubmittedAt = &now
			return nil
		})
}

// Revise pulls a submitted quotation back to draft for editing.
func (s *QuotationService) Revise(ctx context.Context, actor Actor, id uint) (*models.Quotation, error) {
	return s.transition(ctx, actor, id, "revise", []string{models.QuotationStatusSubmitted}, models.QuotationStatusDraft,
		func(tx *gorm.DB, q *models.Quotation) error {
			q.SubmittedAt = nil
			return nil
		})
}

// Win records the customer's acceptance.
func (s *QuotationService) Win(ctx context.Context, actor Actor, id uint) (*models.Quotation, error) {
	return s.transition(ctx, actor, id, "win", []string{models.QuotationStatusSubmitted}, models.QuotationStatusWon,
		func(tx *gorm.DB, q *models.Quotation) error {
			now := s.now()
			q.DecidedAt = &now
			q.LostReason = ""
			return nil
		})
}

// Lose records a rejection with its reason.
func (s *QuotationService) Lose(ctx context.Context, actor Actor, id uint, reason string) (*models.Quotation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validation("a reason is required to mark a quotation lost")
	}
	return s.transition(ctx, actor, id, "lose", []string{models.QuotationStatusSubmitted}, models.QuotationStatusLost,
		func(tx *gorm.DB, q *models.Quotation) error {
			now := s.now()
			q.DecidedAt = &now
			q.LostReason = reason
			return nil
		})
}

// Duplicate copies a quotation's header and items into a new draft issued
// today by the actor.
func (s *QuotationService) Duplicate(ctx context.Context, actor Actor, id uint) (*models.Quotation, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.issuer(ctx, actor)
	if err != nil {
		return nil, err
	}
	issue := dateOnly(s.now())
	validDays := int(src.ValidUntil.Sub(src.IssueDate).Hours() / 24)
	if validDays <= 0 {
		validDays = s.cfg.ValidDays
	}

	draft := *src
	draft.Customer = nil
	draft.Requester = nil
	draft.CreatedBy = user.ID
	draft.Status = models.QuotationStatusDraft
	draft.IssueDate = issue
	draft.ValidUntil = issue.AddDate(0, 0, validDays)
	draft.SubmittedAt = nil
	draft.DecidedAt = nil
	draft.LostReason = ""
	draft.CreatedAt = time.Time{}
	draft.UpdatedAt = time.Time{}
	for i := range draft.Items {
		draft.Items[i].CreatedAt = time.Time{}
		draft.Items[i].UpdatedAt = time.Time{}
	}

	q, err := s.insertNumbered(ctx, actor, user.UserCode, draft, "duplicate")
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, q.ID)
}

// ExpireLapsed marks submitted quotations whose validity ended before today
// as expired.
func (s *QuotationService) ExpireLapsed(ctx context.Context) (int, error) {
	now := s.now()
	today := dateOnly(now)
	var lapsed []models.Quotation
	if err := s.db.WithContext(ctx).
		Where("status = ? AND valid_until < ?", models.QuotationStatusSubmitted, today).
		Find(&lapsed).Error; err != nil {
		return 0, err
	}

	expired := 0
	system := Actor{Name: "system"}
	for _, q := range lapsed {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Quotation{}).
				Where("id = ? AND status = ?", q.ID, models.QuotationStatusSubmitted).
				Updates(map[string]interface{}{
					"status":     models.QuotationStatusExpired,
					"decided_at": now,
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			expired++
			return record(tx, system, EntityQuotation, q.ID, "expire", "%s expired, valid until %s", q.QuotationNumber, q.ValidUntil.Format("2006-01-02"))
		})
		if err != nil {
			return expired, fmt.Errorf("expire %s: %w", q.QuotationNumber, err)
		}
	}
	return expired, nil
}

// SubmittedDueBy lists submitted quotations whose validity ends in [from, until].
func (s *QuotationService) SubmittedDueBy(ctx context.Context, from, until time.Time) ([]models.Quotation, error) {
	var list []models.Quotation
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ? AND valid_until >= ? AND valid_until <= ?", models.QuotationStatusSubmitted, from, until).
		Order("valid_until, id").
		Find(&list).Error
	return list, err
}
