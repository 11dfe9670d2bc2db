package models

import (
	"time"
)

// Customer is a client company.
type Customer struct {
	ID             uint        `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CompanyName    string      `gorm:"column:company_name;index;not null" json:"company_name" binding:"required" example:"Hanbit Pharma"`
	BusinessNumber string      `gorm:"column:business_number;index" json:"business_number" example:"123-45-67890"`
	Industry       string      `gorm:"column:industry" json:"industry" example:"biotech"`
	Address        string      `gorm:"column:address" json:"address" example:"123 Teheran-ro, Seoul"`
	Phone          string      `gorm:"column:phone" json:"phone" example:"02-555-0100"`
	Email          string      `gorm:"column:email" json:"email" example:"contact@hanbit.example"`
	Notes          string      `gorm:"column:notes" json:"notes"`
	CreatedBy      uint        `gorm:"column:created_by" json:"created_by"`
	Requesters     []Requester `gorm:"foreignKey:CustomerID" json:"requesters,omitempty"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customer"
}

// Requester is a contact person at a customer who requests studies.
type Requester struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CustomerID uint      `gorm:"column:customer_id;index;not null" json:"customer_id" example:"1"`
	Name       string    `gorm:"column:name;not null" json:"name" binding:"required" example:"Lee Jiho"`
	Department string    `gorm:"column:department" json:"department" example:"Non-clinical Team"`
	Position   string    `gorm:"column:position" json:"position" example:"Manager"`
	Email      string    `gorm:"column:email" json:"email" example:"jiho.lee@hanbit.example"`
	Phone      string    `gorm:"column:phone" json:"phone" example:"010-2222-3333"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Requester) TableName() string {
	return "requester"
}

// Lead sources
const (
	LeadSourceWeb        = "web"
	LeadSourceReferral   = "referral"
	LeadSourceConference = "conference"
	LeadSourceColdCall   = "cold_call"
	LeadSourceOther      = "other"
)

// Lead stages
const (
	LeadStageNew       = "new"
	LeadStageContacted = "contacted"
	LeadStageQualified = "qualified"
	LeadStageProposal  = "proposal"
	LeadStageConverted = "converted"
	LeadStageLost      = "lost"
)

// LeadSources and LeadStages enumerate the accepted values.
var (
	LeadSources = []string{LeadSourceWeb, LeadSourceReferral, LeadSourceConference, LeadSourceColdCall, LeadSourceOther}
	LeadStages  = []string{LeadStageNew, LeadStageContacted, LeadStageQualified, LeadStageProposal, LeadStageConverted, LeadStageLost}
)

// Lead is a prospective customer not yet on the books.
type Lead struct {
	ID              uint       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CompanyName     string     `gorm:"column:company_name;not null" json:"company_name" binding:"required" example:"Saebom Bio"`
	ContactName     string     `gorm:"column:contact_name" json:"contact_name" example:"Park Seoyeon"`
	Email           string     `gorm:"column:email" json:"email" example:"sy.park@saebom.example"`
	Phone           string     `gorm:"column:phone" json:"phone" example:"010-9999-0000"`
	Source          string     `gorm:"column:source;default:'other'" json:"source" example:"conference"`
	Stage           string     `gorm:"column:stage;index;default:'new'" json:"stage" example:"new"`
	InterestedTypes StringList `gorm:"column:interested_types" json:"interested_types" swaggertype:"array,string"`
	Notes           string     `gorm:"column:notes" json:"notes"`
	AssignedTo      *uint      `gorm:"column:assigned_to" json:"assigned_to,omitempty"`
	NextFollowUp    *time.Time `gorm:"column:next_follow_up" json:"next_follow_up,omitempty"`
	CustomerID      *uint      `gorm:"column:customer_id" json:"customer_id,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Lead) TableName() string {
	return "sales_lead"
}

// Consultation channels
const (
	ChannelPhone  = "phone"
	ChannelEmail  = "email"
	ChannelVisit  = "visit"
	ChannelOnline = "online"
)

var ConsultationChannels = []string{ChannelPhone, ChannelEmail, ChannelVisit, ChannelOnline}

// Consultation records a conversation with a customer or lead.
type Consultation struct {
	ID           uint       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CustomerID   *uint      `gorm:"column:customer_id;index" json:"customer_id,omitempty"`
	LeadID       *uint      `gorm:"column:lead_id;index" json:"lead_id,omitempty"`
	RequesterID  *uint      `gorm:"column:requester_id" json:"requester_id,omitempty"`
	UserID       uint       `gorm:"column:user_id" json:"user_id"`
	ConsultedAt  time.Time  `gorm:"column:consulted_at" json:"consulted_at"`
	Channel      string     `gorm:"column:channel;default:'phone'" json:"channel" example:"phone"`
	Subject      string     `gorm:"column:subject;not null" json:"subject" binding:"required" example:"28-day repeated dose study inquiry"`
	Content      string     `gorm:"column:content" json:"content"`
	FollowUpDate *time.Time `gorm:"column:follow_up_date;index" json:"follow_up_date,omitempty"`
	FollowUpDone bool       `gorm:"column:follow_up_done;default:false" json:"follow_up_done"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Consultation) TableName() string {
	return "consultation"
}
