package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func ErrorResponse(c *gin.Context, message string, code int) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims are the JWT claims for both token types. Both are bound to the
// session that issued them.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and validates HS256 tokens with one secret.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateJWT creates a short-lived access token.
func (t *Tokens) GenerateJWT(userID uint, email, role, sessionID string) (string, error) {
	return t.sign(Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		Type:      TokenTypeAccess,
		SessionID: sessionID,
	}, t.accessTTL)
}

// GenerateRefreshToken creates a long-lived token bound to one session.
func (t *Tokens) GenerateRefreshToken(userID uint, email, sessionID string) (string, time.Time, error) {
	expires := t.now().Add(t.refreshTTL)
	signed, err := t.sign(Claims{
		UserID:    userID,
		Email:     email,
		Type:      TokenTypeRefresh,
		SessionID: sessionID,
	}, t.refreshTTL)
	return signed, expires, err
}

func (t *Tokens) sign(claims Claims, ttl time.Duration) (string, error) {
	now := t.now()
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ValidateJWT parses a token and checks its signature, expiry and type.
func (t *Tokens) ValidateJWT(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// PasswordCost is the bcrypt cost for new hashes.
var PasswordCost = 12

func ValidatePassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}
