package urgent

import (
	"testing"
	"time"

	"labquote/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2025, 3, 10+offset, 9, 0, 0, 0, time.UTC)
}

func dayPtr(offset int) *time.Time {
	d := day(offset)
	return &d
}

func submitted(id uint, validOffset int) models.Quotation {
	return models.Quotation{
		ID:              id,
		QuotationNumber: "25-MK-01-000" + string(rune('0'+id)),
		Status:          models.QuotationStatusSubmitted,
		ValidUntil:      day(validOffset),
	}
}

func TestFilter_quotationWindow(t *testing.T) {
	quotes := []models.Quotation{
		submitted(1, -1), // lapsed, left to the expiry job
		submitted(2, 0),
		submitted(3, 7),
		submitted(4, 8), // beyond horizon
		{ID: 5, Status: models.QuotationStatusDraft, ValidUntil: day(1)},
		{ID: 6, Status: models.QuotationStatusWon, ValidUntil: day(1)},
	}

	got := Filter(quotes, nil, now, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].ID)
	assert.Equal(t, 0, got[0].DaysLeft)
	assert.Equal(t, uint(3), got[1].ID)
	assert.Equal(t, 7, got[1].DaysLeft)
	for _, it := range got {
		assert.Equal(t, models.UrgentKindQuotation, it.Kind)
		assert.False(t, it.Overdue)
	}
}

func TestFilter_consultations(t *testing.T) {
	cons := []models.Consultation{
		{ID: 1, Subject: "overdue call", FollowUpDate: dayPtr(-3)},
		{ID: 2, Subject: "done", FollowUpDate: dayPtr(1), FollowUpDone: true},
		{ID: 3, Subject: "no date"},
		{ID: 4, Subject: "next week", FollowUpDate: dayPtr(5)},
		{ID: 5, Subject: "far", FollowUpDate: dayPtr(30)},
	}

	got := Filter(nil, cons, now, Options{})
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.True(t, got[0].Overdue)
	assert.Equal(t, -3, got[0].DaysLeft)
	assert.Equal(t, uint(4), got[1].ID)
	assert.False(t, got[1].Overdue)
}

func TestFilter_ordering(t *testing.T) {
	quotes := []models.Quotation{submitted(9, 2), submitted(3, 2), submitted(4, 1)}
	cons := []models.Consultation{
		{ID: 1, Subject: "same day as quotes", FollowUpDate: dayPtr(2)},
		{ID: 2, Subject: "earliest", FollowUpDate: dayPtr(-1)},
	}

	got := Filter(quotes, cons, now, Options{})
	var order []string
	for _, it := range got {
		order = append(order, it.Kind+":"+string(rune('0'+it.ID)))
	}
	assert.Equal(t, []string{"consultation:2", "quotation:4", "quotation:3", "quotation:9", "consultation:1"}, order)
}

func TestFilter_limitAndHorizon(t *testing.T) {
	var quotes []models.Quotation
	for i := uint(1); i <= 9; i++ {
		quotes = append(quotes, submitted(i, int(i%3)))
	}

	got := Filter(quotes, nil, now, Options{Limit: 4})
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].DueDate.Before(got[i-1].DueDate))
	}

	got = Filter(quotes, nil, now, Options{Horizon: 24 * time.Hour})
	for _, it := range got {
		assert.LessOrEqual(t, it.DaysLeft, 1)
	}
	assert.Len(t, got, 6)
}

func TestFilter_defaultLimit(t *testing.T) {
	var cons []models.Consultation
	for i := uint(1); i <= 15; i++ {
		cons = append(cons, models.Consultation{ID: i, Subject: "call", FollowUpDate: dayPtr(-1)})
	}
	assert.Len(t, Filter(nil, cons, now, Options{}), DefaultLimit)
}

func TestFilter_titleUsesCustomer(t *testing.T) {
	q := submitted(1, 1)
	q.Customer = &models.Customer{CompanyName: "Hanbit Pharma"}
	got := Filter([]models.Quotation{q}, nil, now, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, "25-MK-01-0001 Hanbit Pharma", got[0].Title)
}

func TestFilter_empty(t *testing.T) {
	got := Filter(nil, nil, now, Options{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}
