// Package urgent picks the quotations and follow-ups that need attention soon.
package urgent

import (
	"fmt"
	"sort"
	"time"

	"labquote/models"
)

const (
	DefaultHorizon = 7 * 24 * time.Hour
	DefaultLimit   = 10
)

// Options tune Filter. Zero values fall back to the defaults.
type Options struct {
	Horizon time.Duration
	Limit   int
}

func (o Options) withDefaults() Options {
	if o.Horizon <= 0 {
		o.Horizon = DefaultHorizon
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b in a's location.
func daysBetween(a, b time.Time) int {
	from := startOfDay(a)
	to := startOfDay(b.In(a.Location()))
	return int(to.Sub(from).Hours() / 24)
}

// Filter merges submitted quotations nearing valid_until with open
// consultation follow-ups, soonest first.
func Filter(quotations []models.Quotation, consultations []models.Consultation, now time.Time, opts Options) []models.UrgentItem {
	opts = opts.withDefaults()
	today := startOfDay(now)
	cutoff := today.Add(opts.Horizon)

	items := make([]models.UrgentItem, 0)

	for _, q := range quotations {
		if q.Status != models.QuotationStatusSubmitted {
			continue
		}
		due := startOfDay(q.ValidUntil.In(now.Location()))
		if due.Before(today) || due.After(cutoff) {
			continue
		}
		title := q.QuotationNumber
		if q.Customer != nil && q.Customer.CompanyName != "" {
			title = fmt.Sprintf("%s %s", q.QuotationNumber, q.Customer.CompanyName)
		} else if q.Title != "" {
			title = fmt.Sprintf("%s %s", q.QuotationNumber, q.Title)
		}
		items = append(items, models.UrgentItem{
			Kind:     models.UrgentKindQuotation,
			ID:       q.ID,
			Title:    title,
			DueDate:  due,
			DaysLeft: daysBetween(today, due),
		})
	}

	for _, c := range consultations {
		if c.FollowUpDone || c.FollowUpDate == nil {
			continue
		}
		due := startOfDay(c.FollowUpDate.In(now.Location()))
		if due.After(cutoff) {
			continue
		}
		left := daysBetween(today, due)
		items = append(items, models.UrgentItem{
			Kind:     models.UrgentKindConsultation,
			ID:       c.ID,
			Title:    c.Subject,
			DueDate:  due,
			DaysLeft: left,
			Overdue:  left < 0,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if a.Kind != b.Kind {
			return a.Kind == models.UrgentKindQuotation
		}
		return a.ID < b.ID
	})

	if len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items
}
