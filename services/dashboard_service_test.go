package services

import (
	"testing"
	"time"

	"labquote/models"
	"labquote/urgent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(fx *fixture) *DashboardService {
	d := NewDashboardService(fx.db, fx.quotations, fx.consultations, fx.contracts, fx.leads, fx.announcements, urgent.Options{})
	d.now = func() time.Time { return testNow }
	return d
}

func TestDashboardSummary(t *testing.T) {
	fx := newFixture(t)

	fx.createQuotation(t, fx.sales)
	won := fx.submitted(t, fx.sales)
	_, err := fx.quotations.Win(fx.ctx, fx.sales, won.ID)
	require.NoError(t, err)
	lost := fx.submitted(t, fx.sales)
	_, err = fx.quotations.Lose(fx.ctx, fx.sales, lost.ID, "price")
	require.NoError(t, err)
	lost2 := fx.submitted(t, fx.other)
	_, err = fx.quotations.Lose(fx.ctx, fx.other, lost2.ID, "timeline")
	require.NoError(t, err)
	fx.submitted(t, fx.other)

	_, err = fx.contracts.Create(fx.ctx, fx.sales, models.ContractRequest{QuotationID: won.ID})
	require.NoError(t, err)
	_, err = fx.leads.Create(fx.ctx, fx.sales, models.Lead{CompanyName: "Saebom Bio"})
	require.NoError(t, err)
	_, err = fx.announcements.Create(fx.ctx, fx.admin, models.Announcement{Title: "2025 price list", PublishedAt: testNow.Add(-time.Hour)})
	require.NoError(t, err)

	sum, err := newDashboard(fx).Summary(fx.ctx)
	require.NoError(t, err)

	counts := map[string]int64{}
	for _, c := range sum.StatusCounts {
		counts[c.Status] = c.Count
	}
	assert.Equal(t, map[string]int64{
		models.QuotationStatusDraft:     1,
		models.QuotationStatusSubmitted: 1,
		models.QuotationStatusWon:       1,
		models.QuotationStatusLost:      2,
		models.QuotationStatusExpired:   0,
	}, counts)
	assert.Len(t, sum.StatusCounts, len(models.QuotationStatuses))
	assert.InDelta(t, 1.0/3.0, sum.WinRate, 1e-9)
	assert.Equal(t, int64(66_000_000), sum.WonAmountYear)
	assert.EqualValues(t, 1, sum.ActiveContracts)
	assert.EqualValues(t, 1, sum.OpenLeads)
	require.Len(t, sum.Announcements, 1)
	assert.Empty(t, sum.UrgentItems, "nothing lapses within a week")
	assert.True(t, sum.GeneratedAt.Equal(testNow))
}

func TestDashboardSummary_empty(t *testing.T) {
	fx := newFixture(t)
	sum, err := newDashboard(fx).Summary(fx.ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.WinRate)
	assert.Zero(t, sum.WonAmountYear)
	assert.NotNil(t, sum.UrgentItems)
	assert.NotNil(t, sum.Announcements)
}

func TestDashboardUrgent(t *testing.T) {
	fx := newFixture(t)

	req := fx.toxicityRequest()
	req.ValidDays = 3
	soon, err := fx.quotations.Create(fx.ctx, fx.sales, req)
	require.NoError(t, err)
	_, err = fx.quotations.Submit(fx.ctx, fx.sales, soon.ID)
	require.NoError(t, err)
	fx.submitted(t, fx.sales)

	overdue := testNow.AddDate(0, 0, -2)
	_, err = fx.consultations.Create(fx.ctx, fx.sales, models.Consultation{
		CustomerID:   &fx.customer.ID,
		Subject:      "Send revised scope",
		FollowUpDate: &overdue,
	})
	require.NoError(t, err)

	items, err := newDashboard(fx).Urgent(fx.ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.UrgentKindConsultation, items[0].Kind)
	assert.True(t, items[0].Overdue)
	assert.Equal(t, models.UrgentKindQuotation, items[1].Kind)
	assert.Equal(t, soon.ID, items[1].ID)
	assert.Equal(t, 3, items[1].DaysLeft)

	items, err = newDashboard(fx).Urgent(fx.ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
