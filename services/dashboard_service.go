package services

import (
	"context"
	"time"

	"labquote/models"
	"labquote/urgent"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type DashboardService struct {
	db            *gorm.DB
	quotations    *QuotationService
	consultations *ConsultationService
	contracts     *ContractService
	leads         *LeadService
	announcements *AnnouncementService
	opts          urgent.Options
	now           func() time.Time
}

func NewDashboardService(db *gorm.DB, quotations *QuotationService, consultations *ConsultationService,
	contracts *ContractService, leads *LeadService, announcements *AnnouncementService, opts urgent.Options) *DashboardService {
	return &DashboardService{
		db:            db,
		quotations:    quotations,
		consultations: consultations,
		contracts:     contracts,
		leads:         leads,
		announcements: announcements,
		opts:          opts,
		now:           time.Now,
	}
}

// Urgent returns quotations about to lapse and follow-ups coming due.
func (s *DashboardService) Urgent(ctx context.Context, limit int) ([]models.UrgentItem, error) {
	now := s.now()
	opts := s.opts
	if limit > 0 {
		opts.Limit = limit
	}
	horizon := opts.Horizon
	if horizon <= 0 {
		horizon = urgent.DefaultHorizon
	}
	today := dateOnly(now)
	until := today.Add(horizon)

	var (
		quotations    []models.Quotation
		consultations []models.Consultation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quotations, err = s.quotations.SubmittedDueBy(gctx, today, until)
		return err
	})
	g.Go(func() error {
		var err error
		consultations, err = s.consultations.PendingFollowUps(gctx, until)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urgent.Filter(quotations, consultations, now, opts), nil
}

// Summary builds the landing-page overview. The queries run concurrently.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0)

	out := &models.DashboardSummary{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var rows []models.StatusCount
		if err := s.db.WithContext(gctx).Model(&models.Quotation{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error; err != nil {
			return err
		}
		byStatus := make(map[string]int64, len(rows))
		for _, r := range rows {
			byStatus[r.Status] = r.Count
		}
		counts := make([]models.StatusCount, 0, len(models.QuotationStatuses))
		for _, st := range models.QuotationStatuses {
			counts = append(counts, models.StatusCount{Status: st, Count: byStatus[st]})
		}
		out.StatusCounts = counts
		if decided := byStatus[models.QuotationStatusWon] + byStatus[models.QuotationStatusLost]; decided > 0 {
			out.WinRate = float64(byStatus[models.QuotationStatusWon]) / float64(decided)
		}
		return nil
	})
	g.Go(func() error {
		var sum struct{ Total int64 }
		if err := s.db.WithContext(gctx).Model(&models.Quotation{}).
			Select("COALESCE(SUM(grand_total), 0) AS total").
			Where("status = ? AND decided_at >= ? AND decided_at < ?", models.QuotationStatusWon, yearStart, yearEnd).
			Scan(&sum).Error; err != nil {
			return err
		}
		out.WonAmountYear = sum.Total
		return nil
	})
	g.Go(func() error {
		n, err := s.contracts.CountActive(gctx)
		out.ActiveContracts = n
		return err
	})
	g.Go(func() error {
		n, err := s.leads.CountOpen(gctx)
		out.OpenLeads = n
		return err
	})
	g.Go(func() error {
		items, err := s.Urgent(gctx, 0)
		out.UrgentItems = items
		return err
	})
	g.Go(func() error {
		list, err := s.announcements.Active(gctx, 5)
		out.Announcements = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if out.Announcements == nil {
		out.Announcements = []models.Announcement{}
	}
	return out, nil
}
