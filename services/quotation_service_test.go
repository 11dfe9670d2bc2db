package services

import (
	"testing"
	"time"

	"labquote/models"
	"labquote/repository"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// racingBackOff runs between retry attempts, after the failed transaction
// has rolled back.
type racingBackOff struct {
	retries int
	between func()
}

func (b *racingBackOff) NextBackOff() time.Duration {
	b.retries++
	if b.between != nil {
		b.between()
	}
	return 0
}

func (b *racingBackOff) Reset() {}

func TestQuotationCreate_numbersAndTotals(t *testing.T) {
	fx := newFixture(t)

	q := fx.createQuotation(t, fx.sales)
	assert.Equal(t, "25-MK-01-0001", q.QuotationNumber)
	assert.Equal(t, models.QuotationStatusDraft, q.Status)
	assert.Equal(t, int64(60_000_000), q.Subtotal)
	assert.Equal(t, int64(60_000_000), q.Total)
	assert.Equal(t, int64(6_000_000), q.VAT)
	assert.Equal(t, int64(66_000_000), q.GrandTotal)
	assert.Equal(t, testNow.AddDate(0, 0, 30).Format("2006-01-02"), q.ValidUntil.Format("2006-01-02"))
	require.Len(t, q.Items, 2)
	assert.Equal(t, "TX-SD-R", q.Items[0].CatalogCode)
	assert.Equal(t, 1, q.Items[0].SortOrder)
	require.NotNil(t, q.Customer)
	assert.Equal(t, "Hanbit Pharma", q.Customer.CompanyName)

	second := fx.createQuotation(t, fx.sales)
	assert.Equal(t, "25-MK-01-0002", second.QuotationNumber)

	efficacy, err := fx.quotations.Create(fx.ctx, fx.sales, models.QuotationRequest{
		QuotationType: models.QuotationTypeEfficacy,
		CustomerID:    fx.customer.ID,
		Items:         []models.QuotationItemInput{{CatalogCode: "EF-CIA-M"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "25-MK-02-0003", efficacy.QuotationNumber, "sequence is shared across types")

	other := fx.createQuotation(t, fx.other)
	assert.Equal(t, "25-JP-01-0001", other.QuotationNumber, "each user code has its own sequence")

	byNumber, err := fx.quotations.GetByNumber(fx.ctx, "25-MK-01-0002")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byNumber.ID)
}

func TestQuotationCreate_retriesTakenNumber(t *testing.T) {
	fx := newFixture(t)
	first := fx.createQuotation(t, fx.sales)
	require.Equal(t, "25-MK-01-0001", first.QuotationNumber)

	// Another writer grabs 0002 after our read of the last sequence: the
	// insert hits the unique index, and the rival row is committed by the
	// time we try again.
	var rival *models.Quotation
	require.NoError(t, fx.db.Callback().Create().Before("gorm:create").Register("test:take_number", func(db *gorm.DB) {
		q, ok := db.Statement.Dest.(*models.Quotation)
		if !ok || rival != nil {
			return
		}
		taken := *q
		taken.ID = 0
		taken.Items = nil
		taken.Title = "concurrent request"
		rival = &taken
		inTx := taken
		db.Session(&gorm.Session{NewDB: true}).Omit(clause.Associations).Create(&inTx)
	}))

	var commitErr error
	b := &racingBackOff{between: func() {
		committed := *rival
		commitErr = fx.db.Omit(clause.Associations).Create(&committed).Error
	}}
	fx.quotations.backoff = func() backoff.BackOff { return b }

	q, err := fx.quotations.Create(fx.ctx, fx.sales, fx.toxicityRequest())
	require.NoError(t, err)
	require.NoError(t, commitErr)
	assert.Equal(t, 1, b.retries)
	assert.Equal(t, "25-MK-01-0003", q.QuotationNumber)
	assert.Equal(t, 3, q.NumberSequence)
	require.Len(t, q.Items, 2)

	taken, err := fx.quotations.GetByNumber(fx.ctx, "25-MK-01-0002")
	require.NoError(t, err)
	assert.Equal(t, "concurrent request", taken.Title)
}

func TestQuotationCreate_givesUpAfterRetries(t *testing.T) {
	fx := newFixture(t)
	fx.quotations.cfg.NumberRetries = 3
	b := &racingBackOff{}
	fx.quotations.backoff = func() backoff.BackOff { return b }

	require.NoError(t, fx.db.Callback().Create().Before("gorm:create").Register("test:always_taken", func(db *gorm.DB) {
		if _, ok := db.Statement.Dest.(*models.Quotation); ok {
			db.AddError(gorm.ErrDuplicatedKey)
		}
	}))

	_, err := fx.quotations.Create(fx.ctx, fx.sales, fx.toxicityRequest())
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 2, b.retries, "three attempts, two waits")
}

func TestQuotationCreate_sequenceExhausted(t *testing.T) {
	fx := newFixture(t)
	q := fx.createQuotation(t, fx.sales)
	require.NoError(t, fx.db.Model(&models.Quotation{}).Where("id = ?", q.ID).
		UpdateColumn("number_sequence", repository.MaxSequence).Error)

	b := &racingBackOff{}
	fx.quotations.backoff = func() backoff.BackOff { return b }
	_, err := fx.quotations.Create(fx.ctx, fx.sales, fx.toxicityRequest())
	require.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, repository.ErrSequenceExhausted)
	assert.Zero(t, b.retries, "exhaustion is not retried")

	other := fx.createQuotation(t, fx.other)
	assert.Equal(t, "25-JP-01-0001", other.QuotationNumber, "other user codes are unaffected")
}

func TestQuotationCreate_rejects(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*models.QuotationRequest)
	}{
		{"unknown type", func(r *models.QuotationRequest) { r.QuotationType = "genomics" }},
		{"unknown code", func(r *models.QuotationRequest) { r.Items[0].CatalogCode = "TX-NOPE" }},
		{"missing customer", func(r *models.QuotationRequest) { r.CustomerID = 9999 }},
		{"foreign requester", func(r *models.QuotationRequest) { id := uint(9999); r.RequesterID = &id }},
		{"modality mismatch", func(r *models.QuotationRequest) { r.Modality = "cell_therapy" }},
		{"negative discount", func(r *models.QuotationRequest) {
			r.DiscountType = models.DiscountRate
			r.DiscountValue = -5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fx.toxicityRequest()
			tt.mutate(&req)
			_, err := fx.quotations.Create(fx.ctx, fx.sales, req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestQuotationUpdate_doesNotRevertConcurrentSubmit(t *testing.T) {
	fx := newFixture(t)
	q := fx.createQuotation(t, fx.sales)

	// The quotation is submitted after Update has read it as a draft.
	submitted := false
	require.NoError(t, fx.db.Callback().Update().Before("gorm:update").Register("test:submit_first", func(db *gorm.DB) {
		if _, ok := db.Statement.Dest.(*models.Quotation); !ok || submitted {
			return
		}
		submitted = true
		db.Session(&gorm.Session{NewDB: true}).Model(&models.Quotation{}).
			Where("id = ?", q.ID).UpdateColumn("status", models.QuotationStatusSubmitted)
	}))

	req := fx.toxicityRequest()
	req.Title = "rewritten"
	req.Items = req.Items[:1]
	_, err := fx.quotations.Update(fx.ctx, fx.sales, q.ID, req)
	require.ErrorIs(t, err, ErrConflict)
	assert.True(t, submitted)

	got, err := fx.quotations.Get(fx.ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Title, got.Title)
	assert.Len(t, got.Items, 2, "items are left alone")
}

func TestQuotationUpdate(t *testing.T) {
	fx := newFixture(t)
	q := fx.createQuotation(t, fx.sales)

	req := fx.toxicityRequest()
	req.Items = req.Items[:1]
	req.DiscountType = models.DiscountRate
	req.DiscountValue = 10
	updated, err := fx.quotations.Update(fx.ctx, fx.sales, q.ID, req)
	require.NoError(t, err)
	assert.Equal(t, q.QuotationNumber, updated.QuotationNumber)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(12_000_000), updated.Subtotal)
	assert.Equal(t, int64(1_200_000), updated.DiscountAmount)
	assert.Equal(t, int64(10_800_000), updated.Total)

	_, err = fx.quotations.Update(fx.ctx, fx.other, q.ID, req)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = fx.quotations.Update(fx.ctx, fx.admin, q.ID, req)
	require.NoError(t, err, "admins may edit any draft")

	req.QuotationType = models.QuotationTypeEfficacy
	_, err = fx.quotations.Update(fx.ctx, fx.sales, q.ID, req)
	require.Error(t, err)

	_, err = fx.quotations.Submit(fx.ctx, fx.sales, q.ID)
	require.NoError(t, err)
	_, err = fx.quotations.Update(fx.ctx, fx.sales, q.ID, fx.toxicityRequest())
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestQuotationLifecycle(t *testing.T) {
	fx := newFixture(t)
	q := fx.submitted(t, fx.sales)
	assert.Equal(t, models.QuotationStatusSubmitted, q.Status)
	require.NotNil(t, q.SubmittedAt)

	_, err := fx.quotations.Submit(fx.ctx, fx.sales, q.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	q, err = fx.quotations.Revise(fx.ctx, fx.sales, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusDraft, q.Status)
	assert.Nil(t, q.SubmittedAt)

	_, err = fx.quotations.Submit(fx.ctx, fx.sales, q.ID)
	require.NoError(t, err)

	_, err = fx.quotations.Lose(fx.ctx, fx.sales, q.ID, "  ")
	require.ErrorIs(t, err, ErrValidation)

	won, err := fx.quotations.Win(fx.ctx, fx.sales, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusWon, won.Status)
	require.NotNil(t, won.DecidedAt)

	for name, call := range map[string]func() error{
		"revise": func() error { _, err := fx.quotations.Revise(fx.ctx, fx.sales, q.ID); return err },
		"lose":   func() error { _, err := fx.quotations.Lose(fx.ctx, fx.sales, q.ID, "price"); return err },
		"delete": func() error { return fx.quotations.Delete(fx.ctx, fx.sales, q.ID) },
	} {
		require.ErrorIs(t, call(), ErrInvalidTransition, name)
	}

	lost := fx.submitted(t, fx.sales)
	lost, err = fx.quotations.Lose(fx.ctx, fx.sales, lost.ID, "budget cut")
	require.NoError(t, err)
	assert.Equal(t, "budget cut", lost.LostReason)

	logs, total, err := fx.activity.List(fx.ctx, ActivityFilter{EntityType: EntityQuotation, EntityID: q.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total, "create, submit, revise, submit, win")
	assert.Len(t, logs, 5)
}

func TestQuotationSubmit_requiresItemsAndValidity(t *testing.T) {
	fx := newFixture(t)

	req := fx.toxicityRequest()
	req.Items = nil
	empty, err := fx.quotations.Create(fx.ctx, fx.sales, req)
	require.NoError(t, err)
	_, err = fx.quotations.Submit(fx.ctx, fx.sales, empty.ID)
	require.ErrorIs(t, err, ErrValidation)

	req = fx.toxicityRequest()
	issued := testNow.AddDate(0, -2, 0)
	req.IssueDate = &issued
	stale, err := fx.quotations.Create(fx.ctx, fx.sales, req)
	require.NoError(t, err)
	_, err = fx.quotations.Submit(fx.ctx, fx.sales, stale.ID)
	require.ErrorIs(t, err, ErrValidation)
}

func TestQuotationDuplicate(t *testing.T) {
	fx := newFixture(t)
	src := fx.submitted(t, fx.sales)

	dup, err := fx.quotations.Duplicate(fx.ctx, fx.other, src.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, "25-JP-01-0001", dup.QuotationNumber)
	assert.Equal(t, models.QuotationStatusDraft, dup.Status)
	assert.Equal(t, fx.other.UserID, dup.CreatedBy)
	assert.Equal(t, src.GrandTotal, dup.GrandTotal)
	require.Len(t, dup.Items, len(src.Items))
	for i := range dup.Items {
		assert.NotEqual(t, src.Items[i].ID, dup.Items[i].ID)
		assert.Equal(t, src.Items[i].CatalogCode, dup.Items[i].CatalogCode)
	}

	again, err := fx.quotations.Get(fx.ctx, src.ID)
	require.NoError(t, err)
	assert.Len(t, again.Items, 2, "source items untouched")
}

func TestQuotationDelete(t *testing.T) {
	fx := newFixture(t)
	q := fx.createQuotation(t, fx.sales)

	require.ErrorIs(t, fx.quotations.Delete(fx.ctx, fx.other, q.ID), ErrForbidden)
	require.NoError(t, fx.quotations.Delete(fx.ctx, fx.sales, q.ID))
	_, err := fx.quotations.Get(fx.ctx, q.ID)
	require.ErrorIs(t, err, ErrNotFound)

	var items int64
	require.NoError(t, fx.db.Model(&models.QuotationItem{}).Where("quotation_id = ?", q.ID).Count(&items).Error)
	assert.Zero(t, items)
}

func TestQuotationList(t *testing.T) {
	fx := newFixture(t)
	fx.createQuotation(t, fx.sales)
	fx.submitted(t, fx.sales)
	fx.createQuotation(t, fx.other)

	list, total, err := fx.quotations.List(fx.ctx, models.QuotationFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)

	_, total, err = fx.quotations.List(fx.ctx, models.QuotationFilter{Status: models.QuotationStatusSubmitted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = fx.quotations.List(fx.ctx, models.QuotationFilter{CreatedBy: fx.other.UserID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = fx.quotations.List(fx.ctx, models.QuotationFilter{Query: "hanbit"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total, "matches customer name")

	list, total, err = fx.quotations.List(fx.ctx, models.QuotationFilter{Query: "25-jp"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "25-JP-01-0001", list[0].QuotationNumber)

	list, total, err = fx.quotations.List(fx.ctx, models.QuotationFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 1)

	all, err := fx.quotations.ListAll(fx.ctx, models.QuotationFilter{Year: 2025})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Len(t, all[0].Items, 2)
}

func TestExpireLapsed(t *testing.T) {
	fx := newFixture(t)
	q := fx.submitted(t, fx.sales)
	draft := fx.createQuotation(t, fx.sales)

	n, err := fx.quotations.ExpireLapsed(fx.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	fx.quotations.now = func() time.Time { return testNow.AddDate(0, 0, 31) }
	n, err = fx.quotations.ExpireLapsed(fx.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := fx.quotations.Get(fx.ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusExpired, got.Status)

	got, err = fx.quotations.Get(fx.ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QuotationStatusDraft, got.Status, "drafts never expire")

	n, err = fx.quotations.ExpireLapsed(fx.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCalculate(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.quotations.Calculate(fx.ctx, fx.toxicityRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(66_000_000), res.Summary.GrandTotal)

	var count int64
	require.NoError(t, fx.db.Model(&models.Quotation{}).Count(&count).Error)
	assert.Zero(t, count)
}
