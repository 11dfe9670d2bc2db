package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"labquote/models"
)

// MaxSequence is the largest sequence a YY-CC-TT-SSSS number can carry.
const MaxSequence = 9999

var (
	ErrInvalidUserCode      = errors.New("user code must be two letters A-Z")
	ErrInvalidQuotationType = errors.New("unknown quotation type")
	ErrSequenceExhausted    = errors.New("quotation sequence exhausted for the year")
	ErrInvalidNumber        = errors.New("invalid quotation number")
	ErrInvalidYear          = errors.New("quotation year must not be negative")
)

var (
	userCodePattern        = regexp.MustCompile(`^[A-Z]{2}$`)
	quotationNumberPattern = regexp.MustCompile(`^(\d{2})-([A-Z]{2})-(\d{2})-(\d{4})$`)
)

var typeCodes = map[string]string{
	models.QuotationTypeToxicity:          "01",
	models.QuotationTypeEfficacy:          "02",
	models.QuotationTypeClinicalPathology: "03",
}

// QuotationNumberParts is a decoded quotation number.
type QuotationNumberParts struct {
	Year          int // two-digit year
	UserCode      string
	QuotationType string
	Sequence      int
}

// TypeCode returns the two-digit code for a quotation type.
func TypeCode(quotationType string) (string, error) {
	code, ok := typeCodes[quotationType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidQuotationType, quotationType)
	}
	return code, nil
}

// NormalizeUserCode upper-cases and validates a user code.
func NormalizeUserCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !userCodePattern.MatchString(code) {
		return "", ErrInvalidUserCode
	}
	return code, nil
}

// FormatQuotationNumber builds "YY-CC-TT-SSSS", e.g. 25-MK-01-0004.
func FormatQuotationNumber(year int, userCode, quotationType string, sequence int) (string, error) {
	if year < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	code, err := NormalizeUserCode(userCode)
	if err != nil {
		return "", err
	}
	tc, err := TypeCode(quotationType)
	if err != nil {
		return "", err
	}
	if sequence < 1 || sequence > MaxSequence {
		return "", fmt.Errorf("sequence %d out of range 1..%d", sequence, MaxSequence)
	}
	return fmt.Sprintf("%02d-%s-%s-%04d", year%100, code, tc, sequence), nil
}

// ParseQuotationNumber is the inverse of FormatQuotationNumber.
func ParseQuotationNumber(number string) (QuotationNumberParts, error) {
	m := quotationNumberPattern.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return QuotationNumberParts{}, fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	var qt string
	for t, c := range typeCodes {
		if c == m[3] {
			qt = t
			break
		}
	}
	if qt == "" {
		return QuotationNumberParts{}, fmt.Errorf("%w: unknown type code %s", ErrInvalidNumber, m[3])
	}
	year, _ := strconv.Atoi(m[1])
	seq, _ := strconv.Atoi(m[4])
	if seq == 0 {
		return QuotationNumberParts{}, fmt.Errorf("%w: sequence 0000", ErrInvalidNumber)
	}
	return QuotationNumberParts{Year: year, UserCode: m[2], QuotationType: qt, Sequence: seq}, nil
}

// NextSequence returns the sequence following last (0 when none issued yet).
func NextSequence(last int) (int, error) {
	if last < 0 {
		last = 0
	}
	if last >= MaxSequence {
		return 0, ErrSequenceExhausted
	}
	return last + 1, nil
}

// ContractNumber derives the contract number from the quotation it was won on.
func ContractNumber(quotationNumber string) string {
	return "CT-" + quotationNumber
}
