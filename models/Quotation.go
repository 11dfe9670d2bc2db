package models

import (
	"time"
)

// Quotation types
const (
	QuotationTypeToxicity          = "toxicity"
	QuotationTypeEfficacy          = "efficacy"
	QuotationTypeClinicalPathology = "clinical_pathology"
)

var QuotationTypes = []string{QuotationTypeToxicity, QuotationTypeEfficacy, QuotationTypeClinicalPathology}

// Quotation statuses
const (
	QuotationStatusDraft     = "draft"
	QuotationStatusSubmitted = "submitted"
	QuotationStatusWon       = "won"
	QuotationStatusLost      = "lost"
	QuotationStatusExpired   = "expired"
)

var QuotationStatuses = []string{
	QuotationStatusDraft,
	QuotationStatusSubmitted,
	QuotationStatusWon,
	QuotationStatusLost,
	QuotationStatusExpired,
}

// Discount types
const (
	DiscountNone   = "none"
	DiscountRate   = "rate"
	DiscountAmount = "amount"
)

// Quotation is a priced proposal for a set of contract-testing services.
// NumberYear, NumberUserCode and NumberSequence carry the parts of
// QuotationNumber and are unique together.
type Quotation struct {
	ID              uint       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	QuotationNumber string     `gorm:"column:quotation_number;uniqueIndex;not null" json:"quotation_number" example:"25-MK-01-0004"`
	NumberYear      int        `gorm:"column:number_year;not null;uniqueIndex:idx_quotation_number_parts" json:"-"`
	NumberUserCode  string     `gorm:"column:number_user_code;type:varchar(2);not null;uniqueIndex:idx_quotation_number_parts" json:"-"`
	NumberSequence  int        `gorm:"column:number_sequence;not null;uniqueIndex:idx_quotation_number_parts" json:"-"`
	QuotationType   string     `gorm:"column:quotation_type;index;not null" json:"quotation_type" example:"toxicity"`
	Title           string     `gorm:"column:title" json:"title" example:"HB-101 4-week GLP toxicity package"`
	CustomerID      uint       `gorm:"column:customer_id;index;not null" json:"customer_id" example:"1"`
	RequesterID     *uint      `gorm:"column:requester_id" json:"requester_id,omitempty"`
	LeadID          *uint      `gorm:"column:lead_id" json:"lead_id,omitempty"`
	CreatedBy       uint       `gorm:"column:created_by;index" json:"created_by"`
	Modality        string     `gorm:"column:modality" json:"modality" example:"small_molecule"`
	Status          string     `gorm:"column:status;index;not null;default:'draft'" json:"status" example:"draft"`
	IssueDate       time.Time  `gorm:"column:issue_date" json:"issue_date"`
	ValidUntil      time.Time  `gorm:"column:valid_until;index" json:"valid_until"`
	Subtotal        int64      `gorm:"column:subtotal" json:"subtotal" example:"96000000"`
	AnalysisCost    int64      `gorm:"column:analysis_cost" json:"analysis_cost" example:"9800000"`
	DiscountType    string     `gorm:"column:discount_type;default:'none'" json:"discount_type" example:"rate"`
	DiscountValue   float64    `gorm:"column:discount_value" json:"discount_value" example:"10"`
	DiscountAmount  int64      `gorm:"column:discount_amount" json:"discount_amount" example:"10580000"`
	Total           int64      `gorm:"column:total" json:"total" example:"95220000"`
	VAT             int64      `gorm:"column:vat" json:"vat" example:"9522000"`
	GrandTotal      int64      `gorm:"column:grand_total" json:"grand_total" example:"104742000"`
	Notes           string     `gorm:"column:notes" json:"notes"`
	LostReason      string     `gorm:"column:lost_reason" json:"lost_reason,omitempty"`
	SubmittedAt     *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	DecidedAt       *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Items     []QuotationItem `gorm:"foreignKey:QuotationID" json:"items"`
	Customer  *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Requester *Requester      `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
}

func (Quotation) TableName() string {
	return "quotation"
}

// Editable reports whether items and header may still change.
func (q *Quotation) Editable() bool {
	return q.Status == QuotationStatusDraft
}

// QuotationItem is one priced line of a quotation.
type QuotationItem struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	QuotationID     uint      `gorm:"column:quotation_id;index;not null" json:"quotation_id"`
	CatalogCode     string    `gorm:"column:catalog_code" json:"catalog_code" example:"TX-RD4W-R"`
	Name            string    `gorm:"column:name;not null" json:"name" example:"4-week repeated dose toxicity (rat)"`
	Category        string    `gorm:"column:category" json:"category" example:"repeated_dose"`
	GLP             bool      `gorm:"column:glp" json:"glp"`
	Quantity        int       `gorm:"column:quantity;not null;default:1" json:"quantity" example:"1"`
	UnitPrice       int64     `gorm:"column:unit_price" json:"unit_price" example:"48000000"`
	Amount          int64     `gorm:"column:amount" json:"amount" example:"48000000"`
	Groups          int       `gorm:"column:groups" json:"groups" example:"4"`
	AnimalsPerGroup int       `gorm:"column:animals_per_group" json:"animals_per_group" example:"10"`
	Timepoints      int       `gorm:"column:timepoints" json:"timepoints" example:"6"`
	Samples         int       `gorm:"column:samples" json:"samples" example:"0"`
	WithAnalysis    bool      `gorm:"column:with_analysis" json:"with_analysis"`
	SortOrder       int       `gorm:"column:sort_order" json:"sort_order"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"-"`
}

func (QuotationItem) TableName() string {
	return "quotation_item"
}

// QuotationItemInput is a requested line before it is priced against the catalog.
type QuotationItemInput struct {
	CatalogCode     string `json:"catalog_code" binding:"required" example:"TX-RD4W-R"`
	Quantity        int    `json:"quantity" example:"1"`
	Groups          int    `json:"groups" example:"4"`
	AnimalsPerGroup int    `json:"animals_per_group" example:"10"`
	Timepoints      int    `json:"timepoints" example:"6"`
	Samples         int    `json:"samples" example:"0"`
	WithAnalysis    bool   `json:"with_analysis"`
}

// QuotationRequest is the body for creating or updating a draft. Every wizard
// step posts the full request.
type QuotationRequest struct {
	QuotationType string               `json:"quotation_type" binding:"required" example:"toxicity"`
	Title         string               `json:"title" example:"HB-101 4-week GLP toxicity package"`
	CustomerID    uint                 `json:"customer_id" binding:"required" example:"1"`
	RequesterID   *uint                `json:"requester_id"`
	LeadID        *uint                `json:"lead_id"`
	Modality      string               `json:"modality" example:"small_molecule"`
	IssueDate     *time.Time           `json:"issue_date"`
	ValidDays     int                  `json:"valid_days" example:"30"`
	DiscountType  string               `json:"discount_type" example:"rate"`
	DiscountValue float64              `json:"discount_value" example:"10"`
	Notes         string               `json:"notes"`
	Items         []QuotationItemInput `json:"items"`
}

// QuotationFilter narrows quotation listings.
type QuotationFilter struct {
	Status        string
	QuotationType string
	CustomerID    uint
	CreatedBy     uint
	Year          int
	Query         string
	Page          int
	PageSize      int
}
