package services

import (
	"testing"
	"time"

	"labquote/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadConvert(t *testing.T) {
	fx := newFixture(t)

	lead, err := fx.leads.Create(fx.ctx, fx.sales, models.Lead{
		CompanyName: "Saebom Bio",
		ContactName: "Park Seoyeon",
		Email:       "sy.park@saebom.example",
		Source:      models.LeadSourceConference,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStageNew, lead.Stage)
	require.NotNil(t, lead.AssignedTo)
	assert.Equal(t, fx.sales.UserID, *lead.AssignedTo)

	consult, err := fx.consultations.Create(fx.ctx, fx.sales, models.Consultation{
		LeadID:  &lead.ID,
		Subject: "Ames test inquiry",
	})
	require.NoError(t, err)
	assert.Nil(t, consult.CustomerID)

	_, err = fx.leads.ChangeStage(fx.ctx, fx.sales, lead.ID, models.LeadStageConverted)
	require.ErrorIs(t, err, ErrInvalidTransition, "conversion goes through Convert")

	lead, err = fx.leads.ChangeStage(fx.ctx, fx.sales, lead.ID, models.LeadStageQualified)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStageQualified, lead.Stage)

	customer, err := fx.leads.Convert(fx.ctx, fx.sales, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Saebom Bio", customer.CompanyName)
	require.Len(t, customer.Requesters, 1)
	assert.Equal(t, "Park Seoyeon", customer.Requesters[0].Name)

	lead, err = fx.leads.Get(fx.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStageConverted, lead.Stage)
	require.NotNil(t, lead.CustomerID)
	assert.Equal(t, customer.ID, *lead.CustomerID)

	consult, err = fx.consultations.Get(fx.ctx, consult.ID)
	require.NoError(t, err)
	require.NotNil(t, consult.CustomerID)
	assert.Equal(t, customer.ID, *consult.CustomerID)

	_, err = fx.leads.Convert(fx.ctx, fx.sales, lead.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, fx.leads.Delete(fx.ctx, fx.sales, lead.ID), ErrInvalidTransition)
}

func TestLeadLostCannotConvert(t *testing.T) {
	fx := newFixture(t)
	lead, err := fx.leads.Create(fx.ctx, fx.sales, models.Lead{CompanyName: "Gone Co"})
	require.NoError(t, err)
	_, err = fx.leads.ChangeStage(fx.ctx, fx.sales, lead.ID, models.LeadStageLost)
	require.NoError(t, err)

	_, err = fx.leads.Convert(fx.ctx, fx.sales, lead.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	open, err := fx.leads.CountOpen(fx.ctx)
	require.NoError(t, err)
	assert.Zero(t, open)

	require.NoError(t, fx.leads.Delete(fx.ctx, fx.sales, lead.ID))
}

func TestLeadCreate_rejects(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.leads.Create(fx.ctx, fx.sales, models.Lead{CompanyName: " "})
	require.ErrorIs(t, err, ErrValidation)
	_, err = fx.leads.Create(fx.ctx, fx.sales, models.Lead{CompanyName: "X", Stage: models.LeadStageConverted})
	require.Error(t, err)
	_, err = fx.leads.Create(fx.ctx, fx.sales, models.Lead{CompanyName: "X", Source: "billboard"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCustomerLifecycle(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.customers.Create(fx.ctx, fx.sales, models.Customer{CompanyName: "Copycat", BusinessNumber: "123-45-67890"})
	require.ErrorIs(t, err, ErrConflict)

	r, err := fx.customers.AddRequester(fx.ctx, fx.sales, fx.customer.ID, models.Requester{Name: "Choi Yuna", Email: "yuna@hanbit.example"})
	require.NoError(t, err)
	list, err := fx.customers.ListRequesters(fx.ctx, fx.customer.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	r.Department = "QA"
	r, err = fx.customers.UpdateRequester(fx.ctx, fx.sales, fx.customer.ID, r.ID, *r)
	require.NoError(t, err)
	assert.Equal(t, "QA", r.Department)

	req := fx.toxicityRequest()
	req.RequesterID = &r.ID
	q, err := fx.quotations.Create(fx.ctx, fx.sales, req)
	require.NoError(t, err)

	require.NoError(t, fx.customers.DeleteRequester(fx.ctx, fx.sales, fx.customer.ID, r.ID))
	q, err = fx.quotations.Get(fx.ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, q.RequesterID)

	require.ErrorIs(t, fx.customers.Delete(fx.ctx, fx.sales, fx.customer.ID), ErrConflict)

	customers, total, err := fx.customers.List(fx.ctx, "hanbit", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, customers, 1)

	empty, err := fx.customers.Create(fx.ctx, fx.sales, models.Customer{CompanyName: "Empty Inc"})
	require.NoError(t, err)
	require.NoError(t, fx.customers.Delete(fx.ctx, fx.sales, empty.ID))
	_, err = fx.customers.Get(fx.ctx, empty.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConsultations(t *testing.T) {
	fx := newFixture(t)
	requester := fx.customer.Requesters[0].ID
	due := testNow.AddDate(0, 0, 3)

	c, err := fx.consultations.Create(fx.ctx, fx.sales, models.Consultation{
		CustomerID:   &fx.customer.ID,
		RequesterID:  &requester,
		Subject:      "28-day study scope",
		Channel:      models.ChannelVisit,
		FollowUpDate: &due,
	})
	require.NoError(t, err)
	assert.True(t, c.ConsultedAt.Equal(testNow))

	_, err = fx.consultations.Create(fx.ctx, fx.sales, models.Consultation{Subject: "orphan"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = fx.consultations.Create(fx.ctx, fx.sales, models.Consultation{CustomerID: &fx.customer.ID, Subject: "x", Channel: "pigeon"})
	require.ErrorIs(t, err, ErrValidation)

	pending, err := fx.consultations.PendingFollowUps(fx.ctx, testNow.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = fx.consultations.CompleteFollowUp(fx.ctx, fx.sales, c.ID)
	require.NoError(t, err)
	pending, err = fx.consultations.PendingFollowUps(fx.ctx, testNow.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, total, err := fx.consultations.List(fx.ctx, ConsultationFilter{CustomerID: fx.customer.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.ErrorIs(t, fx.consultations.Delete(fx.ctx, fx.other, c.ID), ErrForbidden)
	require.NoError(t, fx.consultations.Delete(fx.ctx, fx.admin, c.ID))
}

func TestAnnouncementsActive(t *testing.T) {
	fx := newFixture(t)
	past := testNow.Add(-time.Hour)
	expired := testNow.Add(-time.Minute)
	future := testNow.Add(time.Hour)

	_, err := fx.announcements.Create(fx.ctx, fx.admin, models.Announcement{Title: "old news", PublishedAt: past.Add(-time.Hour), ExpiresAt: &expired})
	require.NoError(t, err)
	_, err = fx.announcements.Create(fx.ctx, fx.admin, models.Announcement{Title: "regular", PublishedAt: past})
	require.NoError(t, err)
	_, err = fx.announcements.Create(fx.ctx, fx.admin, models.Announcement{Title: "pinned", Pinned: true, PublishedAt: past.Add(-2 * time.Hour)})
	require.NoError(t, err)
	_, err = fx.announcements.Create(fx.ctx, fx.admin, models.Announcement{Title: "scheduled", PublishedAt: future})
	require.NoError(t, err)

	_, err = fx.announcements.Create(fx.ctx, fx.admin, models.Announcement{Title: ""})
	require.ErrorIs(t, err, ErrValidation)

	active, err := fx.announcements.Active(fx.ctx, 0)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "pinned", active[0].Title)
	assert.Equal(t, "regular", active[1].Title)

	_, total, err := fx.announcements.List(fx.ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}
