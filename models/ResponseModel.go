package models

import (
	"time"
)

// ErrorResponse is used in @Failure annotations.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input"`
	Details string `json:"details,omitempty" example:""`
}

// MessageResponse is used for plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message" example:"Deleted successfully"`
}

// LoginRequest is used in @Param for login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password"`
}

// LoginResponse is used in @Success for login
type LoginResponse struct {
	Message      string    `json:"message" example:"User successfully logged in"`
	AccessToken  string    `json:"access_token" example:"eyJhbGc..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGc..."`
	SessionID    string    `json:"session_id" example:"9b2f..."`
	Role         string    `json:"role" example:"sales"`
	User         LoginUser `json:"user"`
}

// LoginUser is the user object inside LoginResponse
type LoginUser struct {
	ID       uint   `json:"id" example:"1"`
	Email    string `json:"email" example:"user@example.com"`
	Name     string `json:"name" example:"Kim Minji"`
	UserCode string `json:"user_code" example:"MK"`
}

// RefreshTokenRequest carries the refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserRequest creates or updates a user. Password is optional on update.
type UserRequest struct {
	Email     string `json:"email" binding:"required" example:"sales@example.com"`
	Password  string `json:"password" example:"s3cret!"`
	Name      string `json:"name" binding:"required" example:"Kim Minji"`
	UserCode  string `json:"user_code" binding:"required" example:"MK"`
	Role      string `json:"role" example:"sales"`
	Phone     string `json:"phone"`
	Suspended bool   `json:"suspended"`
}

// PageResponse wraps a paginated listing.
type PageResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total" example:"42"`
	Page     int         `json:"page" example:"1"`
	PageSize int         `json:"page_size" example:"20"`
}

// StatusCount is one bucket of the dashboard status breakdown.
type StatusCount struct {
	Status string `json:"status" example:"submitted"`
	Count  int64  `json:"count" example:"7"`
}

// DashboardSummary is the landing-page overview.
type DashboardSummary struct {
	StatusCounts    []StatusCount  `json:"status_counts"`
	WonAmountYear   int64          `json:"won_amount_year" example:"520000000"`
	WinRate         float64        `json:"win_rate" example:"0.42"`
	ActiveContracts int64          `json:"active_contracts" example:"12"`
	OpenLeads       int64          `json:"open_leads" example:"9"`
	UrgentItems     []UrgentItem   `json:"urgent_items"`
	Announcements   []Announcement `json:"announcements"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// Urgent item kinds
const (
	UrgentKindQuotation    = "quotation"
	UrgentKindConsultation = "consultation"
)

// UrgentItem is a dashboard reminder for something due soon.
type UrgentItem struct {
	Kind     string    `json:"kind" example:"quotation"`
	ID       uint      `json:"id" example:"3"`
	Title    string    `json:"title" example:"25-MK-01-0004 Hanbit Pharma"`
	DueDate  time.Time `json:"due_date"`
	DaysLeft int       `json:"days_left" example:"2"`
	Overdue  bool      `json:"overdue" example:"false"`
}

// ValidateSessionResponse reports the user behind a valid access token.
type ValidateSessionResponse struct {
	Valid     bool   `json:"valid" example:"true"`
	SessionID string `json:"session_id" example:"9b2f..."`
	User      User   `json:"user"`
}

// MeResponse is the signed-in user with their open sessions.
type MeResponse struct {
	User     User      `json:"user"`
	Sessions []Session `json:"sessions"`
}

// SuspendRequest toggles a user's suspension.
type SuspendRequest struct {
	Suspended bool `json:"suspended" example:"true"`
}

// StageRequest moves a lead to another stage.
type StageRequest struct {
	Stage string `json:"stage" binding:"required" example:"qualified"`
}

// LoseRequest records why a quotation was lost.
type LoseRequest struct {
	Reason string `json:"reason" example:"Budget moved to next year"`
}

// QuotationVerification is the public view behind a quotation QR code.
type QuotationVerification struct {
	QuotationNumber string    `json:"quotation_number" example:"25-MK-01-0004"`
	CustomerName    string    `json:"customer_name" example:"Hanbit Pharma"`
	Status          string    `json:"status" example:"submitted"`
	IssueDate       time.Time `json:"issue_date"`
	ValidUntil      time.Time `json:"valid_until"`
	GrandTotal      int64     `json:"grand_total" example:"104742000"`
}

// EmailPreviewRequest renders a template against sample or quotation data.
type EmailPreviewRequest struct {
	Template    EmailTemplate `json:"template"`
	QuotationID uint          `json:"quotation_id" example:"1"`
	Data        EmailData     `json:"data"`
}

// EmailPreviewResponse is a rendered subject and plain-text body.
type EmailPreviewResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
