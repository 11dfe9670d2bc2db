// Package config holds the runtime settings shared by every command. Values
// come from flags or the environment (a .env file is loaded first).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

type DB struct {
	Driver          string        `help:"database driver" default:"postgres" enum:"postgres,sqlite" env:"DB_DRIVER"`
	SQLitePath      string        `help:"sqlite database file when driver is sqlite" default:"labquote.db" env:"DB_SQLITE_PATH"`
	Host            string        `help:"database host" default:"localhost" env:"DB_HOST"`
	Port            int           `help:"database port" default:"5432" env:"DB_PORT"`
	User            string        `help:"database user" default:"postgres" env:"DB_USER"`
	Password        string        `help:"database password" default:"" env:"DB_PASSWORD"`
	Name            string        `help:"database name" default:"labquote" env:"DB_NAME"`
	SSLMode         string        `help:"postgres sslmode" default:"disable" env:"DB_SSLMODE"`
	TimeZone        string        `help:"session time zone" default:"Asia/Seoul" env:"DB_TIMEZONE"`
	MaxOpenConns    int           `help:"maximum open connections" default:"20" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `help:"maximum idle connections" default:"5" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `help:"close connections after this long" default:"5m" env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `help:"close idle connections after this long" default:"2m" env:"DB_CONN_MAX_IDLE_TIME"`
	LogQueries      bool          `help:"log every SQL statement" default:"false" env:"DB_LOG_QUERIES"`
}

// DSN is the lib/pq keyword/value connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.TimeZone)
}

type Auth struct {
	JWTSecret             string        `help:"HMAC secret for access and refresh tokens" default:"" env:"JWT_SECRET"`
	AccessTTL             time.Duration `help:"access token lifetime" default:"15m" env:"JWT_ACCESS_TTL"`
	RefreshTTL            time.Duration `help:"refresh token lifetime" default:"360h" env:"JWT_REFRESH_TTL"`
	AllowMultipleSessions bool          `help:"keep existing sessions when a user signs in again" default:"true" env:"ALLOW_MULTIPLE_SESSIONS"`
	SecureCookies         bool          `help:"mark auth cookies Secure" default:"false" env:"SECURE_COOKIES"`
}

type SMTP struct {
	Host     string `help:"SMTP host" default:"" env:"SMTP_HOST"`
	Port     int    `help:"SMTP port" default:"587" env:"SMTP_PORT"`
	Username string `help:"SMTP user" default:"" env:"SMTP_USERNAME"`
	Password string `help:"SMTP password" default:"" env:"SMTP_PASSWORD"`
	From     string `help:"sender address" default:"" env:"SMTP_FROM"`
	FromName string `help:"sender display name" default:"" env:"SMTP_FROM_NAME"`
}

// Enabled reports whether enough is configured to send mail.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.From != ""
}

type Company struct {
	Name      string `help:"company name printed on documents" default:"LabQuote CRO" env:"COMPANY_NAME"`
	Address   string `help:"company address printed on documents" default:"" env:"COMPANY_ADDRESS"`
	Phone     string `help:"company phone printed on documents" default:"" env:"COMPANY_PHONE"`
	PublicURL string `help:"base URL used in QR codes and emails" default:"http://localhost:8080" env:"PUBLIC_URL"`
}

// QuotationURL is the verification link encoded in quotation QR codes.
func (c Company) QuotationURL(number string) string {
	return fmt.Sprintf("%s/quotations/verify/%s", c.PublicURL, url.PathEscape(number))
}

// Documents points PDF rendering at TrueType fonts with Hangul glyphs.
type Documents struct {
	PDFFont     string `help:"TrueType font embedded into PDFs; the built-in DejaVu Sans has no Hangul" default:"" env:"PDF_FONT_FILE"`
	PDFBoldFont string `help:"bold TrueType font for PDFs; the regular font when empty" default:"" env:"PDF_BOLD_FONT_FILE"`
}

type Jobs struct {
	ExpirySpec         string        `help:"cron spec for expiring lapsed quotations" default:"5 0 * * *" env:"CRON_EXPIRE_QUOTATIONS"`
	SessionCleanupSpec string        `help:"cron spec for removing expired sessions" default:"30 3 * * *" env:"CRON_SESSION_CLEANUP"`
	SessionGrace       time.Duration `help:"keep expired sessions this long before cleanup" default:"24h" env:"SESSION_GRACE"`
}

type Quotation struct {
	ValidDays     int           `help:"default validity of a new quotation in days" default:"30" env:"QUOTATION_VALID_DAYS"`
	NumberRetries uint          `help:"attempts to allocate a quotation number" default:"5" env:"QUOTATION_NUMBER_RETRIES"`
	UrgentHorizon time.Duration `help:"look-ahead window for urgent items" default:"168h" env:"URGENT_HORIZON"`
	UrgentLimit   int           `help:"maximum urgent items on the dashboard" default:"10" env:"URGENT_LIMIT"`
}

// Config is embedded into the CLI so every command sees the same settings.
type Config struct {
	Listen      string   `help:"HTTP listen address" default:":8080" env:"LISTEN_ADDR"`
	CORSOrigins []string `help:"allowed CORS origins" default:"http://localhost:3000" env:"CORS_ORIGINS"`
	CatalogFile string   `help:"catalog YAML file; the built-in price list when empty" default:"" env:"CATALOG_FILE"`

	DB        DB        `embed:"" prefix:"db-"`
	Auth      Auth      `embed:"" prefix:"auth-"`
	SMTP      SMTP      `embed:"" prefix:"smtp-"`
	Company   Company   `embed:"" prefix:"company-"`
	Documents Documents `embed:"" prefix:"documents-"`
	Jobs      Jobs      `embed:"" prefix:"jobs-"`
	Quotation Quotation `embed:"" prefix:"quotation-"`
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set to at least 16 characters")

// ValidateServe checks the settings the HTTP server cannot start without.
func (c *Config) ValidateServe() error {
	if len(c.Auth.JWTSecret) < 16 {
		return ErrMissingSecret
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= c.Auth.AccessTTL {
		return fmt.Errorf("refresh token lifetime (%s) must exceed access token lifetime (%s)", c.Auth.RefreshTTL, c.Auth.AccessTTL)
	}
	if c.Quotation.ValidDays <= 0 {
		return fmt.Errorf("quotation validity must be positive, got %d days", c.Quotation.ValidDays)
	}
	return nil
}
