package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Auth:      Auth{JWTSecret: "0123456789abcdef", AccessTTL: 15 * time.Minute, RefreshTTL: 360 * time.Hour},
		Quotation: Quotation{ValidDays: 30},
	}
}

func TestValidateServe(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.ValidateServe())

	c.Auth.JWTSecret = "short"
	require.ErrorIs(t, c.ValidateServe(), ErrMissingSecret)

	c = validConfig()
	c.Auth.RefreshTTL = time.Minute
	require.Error(t, c.ValidateServe())

	c = validConfig()
	c.Quotation.ValidDays = 0
	require.Error(t, c.ValidateServe())
}

func TestDSN(t *testing.T) {
	d := DB{Host: "db", Port: 5433, User: "app", Password: "pw", Name: "quotes", SSLMode: "require", TimeZone: "Asia/Seoul"}
	require.Equal(t, "host=db port=5433 user=app password=pw dbname=quotes sslmode=require TimeZone=Asia/Seoul", d.DSN())
}

func TestQuotationURL(t *testing.T) {
	c := Company{PublicURL: "https://quotes.example.com"}
	require.Equal(t, "https://quotes.example.com/quotations/verify/25-MK-01-0004", c.QuotationURL("25-MK-01-0004"))
}

func TestSMTPEnabled(t *testing.T) {
	require.False(t, SMTP{}.Enabled())
	require.True(t, SMTP{Host: "smtp.example.com", From: "sales@example.com"}.Enabled())
}
