package models

import (
	"time"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleSales  = "sales"
	RoleViewer = "viewer"
)

// User is an employee account. UserCode is the two-letter code stamped into
// quotation numbers issued by the user.
type User struct {
	ID           uint       `gorm:"primaryKey;column:id" json:"id" example:"1"`
	Email        string     `gorm:"column:email;uniqueIndex;not null" json:"email" example:"sales@example.com"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Name         string     `gorm:"column:name;not null" json:"name" example:"Kim Minji"`
	UserCode     string     `gorm:"column:user_code;type:varchar(2);uniqueIndex;not null" json:"user_code" example:"MK"`
	Role         string     `gorm:"column:role;not null;default:'sales'" json:"role" example:"sales"`
	Phone        string     `gorm:"column:phone" json:"phone" example:"010-1234-5678"`
	Suspended    bool       `gorm:"column:suspended;default:false" json:"suspended" example:"false"`
	LastAccess   *time.Time `gorm:"column:last_access" json:"last_access,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session binds a signed-in device to a refresh token.
type Session struct {
	ID                    uint      `gorm:"primaryKey;column:id" json:"-"`
	UserID                uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	SessionID             string    `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`
	IPAddress             string    `gorm:"column:ip_address" json:"ip_address"`
	UserAgent             string    `gorm:"column:user_agent" json:"user_agent"`
	ExpiresAt             time.Time `gorm:"column:expires_at;index;not null" json:"expires_at"`
	RefreshToken          string    `gorm:"column:refresh_token" json:"-"`
	RefreshTokenExpiresAt time.Time `gorm:"column:refresh_token_expires_at" json:"-"`
	CreatedAt             time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Session) TableName() string {
	return "session"
}

// ActivityLog is an audit trail row written for every mutating operation.
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	UserID     uint      `gorm:"column:user_id;index" json:"user_id" example:"1"`
	UserName   string    `gorm:"column:user_name" json:"user_name" example:"Kim Minji"`
	EntityType string    `gorm:"column:entity_type;index" json:"entity_type" example:"quotation"`
	EntityID   uint      `gorm:"column:entity_id" json:"entity_id" example:"12"`
	Action     string    `gorm:"column:action" json:"action" example:"submit"`
	Detail     string    `gorm:"column:detail" json:"detail" example:"25-MK-01-0004 submitted"`
	IPAddress  string    `gorm:"column:ip_address" json:"ip_address" example:"192.168.1.1"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at" example:"2024-01-15T10:30:00Z"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}

// Announcement is a notice shown on the dashboard.
type Announcement struct {
	ID          uint       `gorm:"primaryKey;column:id" json:"id"`
	Title       string     `gorm:"column:title;not null" json:"title" binding:"required" example:"Price list update"`
	Body        string     `gorm:"column:body" json:"body" example:"The 2025 catalog is live."`
	Pinned      bool       `gorm:"column:pinned;default:false" json:"pinned"`
	AuthorID    uint       `gorm:"column:author_id" json:"author_id"`
	PublishedAt time.Time  `gorm:"column:published_at;index" json:"published_at"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Announcement) TableName() string {
	return "announcement"
}
