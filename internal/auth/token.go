package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

const (
	purposeSession = "session"
	purposeReset   = "reset"
)

// Claims is the payload of both token kinds. Session tokens carry the account
// id, reset credentials carry the email and a unique id.
type Claims struct {
	AccountID string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens with one shared secret.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewTokenService(secret string, sessionTTL, resetTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
		now:        time.Now,
	}, nil
}

// IssueSession returns a session token bound to the account id.
func (s *TokenService) IssueSession(accountID primitive.ObjectID) (string, error) {
	return s.sign(&Claims{AccountID: accountID.Hex(), Purpose: purposeSession}, s.sessionTTL)
}

// VerifySession returns the account id carried by a valid session token.
func (s *TokenService) VerifySession(tokenString string) (primitive.ObjectID, error) {
	claims, err := s.parse(tokenString, purposeSession)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := primitive.ObjectIDFromHex(claims.AccountID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

// IssueReset returns a reset credential bound to email.
func (s *TokenService) IssueReset(email string) (string, error) {
	claims := &Claims{Email: email, Purpose: purposeReset}
	claims.ID = uuid.NewString()
	return s.sign(claims, s.resetTTL)
}

// VerifyReset returns the claims of a valid reset credential.
func (s *TokenService) VerifyReset(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString, purposeReset)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) sign(claims *Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) parse(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
