package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess = "access"
	// Resume tokens let a client pick an interrupted onboarding session
	// back up without a full re-auth round trip.
	TokenTypeResume = "resume"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"token_type"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`

	jwtlib.RegisteredClaims
}

type Service interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GenerateResumeToken(userID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (Claims, error)
	IsResumeToken(claims Claims) bool
}

type HMACService struct {
	secret []byte

	accessExpiresIn time.Duration
	resumeExpiresIn time.Duration

	now func() time.Time
}

func NewHMACService(secret string, accessExpiresIn, resumeExpiresIn time.Duration) *HMACService {
	return &HMACService{
		secret:          []byte(secret),
		accessExpiresIn: accessExpiresIn,
		resumeExpiresIn: resumeExpiresIn,
		now:             time.Now,
	}
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.generate(TokenTypeAccess, userID, email)
}

func (s *HMACService) GenerateResumeToken(userID uuid.UUID) (string, error) {
	return s.generate(TokenTypeResume, userID, "")
}

func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	p := jwtlib.NewParser(jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	now := s.now().UTC()
	if !c.ExpiredAt.IsZero() && now.After(c.ExpiredAt.UTC()) {
		return Claims{}, ErrTokenExpired
	}

	if c.TokenType != TokenTypeAccess && c.TokenType != TokenTypeResume {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}

func (s *HMACService) IsResumeToken(claims Claims) bool {
	return claims.TokenType == TokenTypeResume
}

func (s *HMACService) generate(tokenType string, userID uuid.UUID, email string) (string, error) {
	expIn, err := s.expiry(tokenType)
	if err != nil {
		return "", err
	}

	now := s.now()
	exp := now.Add(expIn)

	c := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		IssuedAt:  now.UTC(),
		ExpiredAt: exp.UTC(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now.UTC()),
			ExpiresAt: jwtlib.NewNumericDate(exp.UTC()),
			Subject:   userID.String(),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

func (s *HMACService) expiry(tokenType string) (time.Duration, error) {
	if len(s.secret) == 0 {
		return 0, ErrTokenInvalid
	}
	switch tokenType {
	case TokenTypeAccess:
		if s.accessExpiresIn <= 0 {
			return 0, ErrTokenInvalid
		}
		return s.accessExpiresIn, nil
	case TokenTypeResume:
		if s.resumeExpiresIn <= 0 {
			return 0, ErrTokenInvalid
		}
		return s.resumeExpiresIn, nil
	default:
		return 0, ErrTokenInvalid
	}
}
