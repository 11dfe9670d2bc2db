package models

import (
	"time"
)

// Contract statuses
const (
	ContractStatusActive     = "active"
	ContractStatusCompleted  = "completed"
	ContractStatusTerminated = "terminated"
)

// Contract is signed from a won quotation.
type Contract struct {
	ID             uint       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	ContractNumber string     `gorm:"column:contract_number;uniqueIndex;not null" json:"contract_number" example:"CT-25-MK-01-0004"`
	QuotationID    uint       `gorm:"column:quotation_id;uniqueIndex;not null" json:"quotation_id" example:"1"`
	CustomerID     uint       `gorm:"column:customer_id;index;not null" json:"customer_id" example:"1"`
	Title          string     `gorm:"column:title" json:"title"`
	ContractDate   time.Time  `gorm:"column:contract_date" json:"contract_date"`
	StartDate      *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate        *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	Amount         int64      `gorm:"column:amount" json:"amount" example:"104742000"`
	AdvanceRate    float64    `gorm:"column:advance_rate" json:"advance_rate" example:"50"`
	Status         string     `gorm:"column:status;index;default:'active'" json:"status" example:"active"`
	Notes          string     `gorm:"column:notes" json:"notes"`
	CreatedBy      uint       `gorm:"column:created_by" json:"created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Quotation *Quotation `gorm:"foreignKey:QuotationID" json:"quotation,omitempty"`
	Customer  *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Contract) TableName() string {
	return "contract"
}

// AdvanceAmount is the part of the contract amount invoiced up front.
func (c *Contract) AdvanceAmount() int64 {
	return int64(float64(c.Amount) * c.AdvanceRate / 100)
}

// ContractRequest creates a contract from a won quotation.
type ContractRequest struct {
	QuotationID  uint       `json:"quotation_id" binding:"required" example:"1"`
	ContractDate *time.Time `json:"contract_date"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	AdvanceRate  float64    `json:"advance_rate" example:"50"`
	Notes        string     `json:"notes"`
}

// ContractUpdateRequest edits the mutable parts of a contract.
type ContractUpdateRequest struct {
	Title       string     `json:"title"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	AdvanceRate *float64   `json:"advance_rate"`
	Notes       *string    `json:"notes"`
}
