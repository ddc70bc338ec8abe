package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
)

const (
	tokenContextKey = "respondentToken"
	tokenAudience   = "Academia"
)

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the portal's identity service; Subject is the respondent id.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// NewClaims returns claims for r, valid for ttl (conf.Server.JWTExpirationDelta when 0).
func NewClaims(conf *core.Config, r core.Respondent, ttl time.Duration) *Claims {
	if ttl <= 0 {
		ttl = conf.Server.JWTExpirationDelta
	}
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   r.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: r.Username,
		Email:    r.Email,
		Roles:    r.Roles,
	}
}

func (c Claims) Respondent() core.Respondent {
	return core.Respondent{
		ID:       c.Subject,
		Username: c.Username,
		Email:    c.Email,
		Roles:    c.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextRespondent returns the respondent the request acts on behalf of.
func contextRespondent(ctx echo.Context) (core.Respondent, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Respondent{}, err
	}
	if claims.Subject == "" {
		return core.Respondent{}, errUnauthorized
	}
	return claims.Respondent(), nil
}
