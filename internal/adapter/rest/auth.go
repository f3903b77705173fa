package rest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

const callerContextKey = "caller"

var errMissingToken = errors.New("missing bearer token")

// Claims はアクセストークンのペイロードです。
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator は Bearer トークンを検証し、呼び出し元をリクエストに紐付けます。
type Authenticator struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewAuthenticator は HMAC 署名のトークンを検証する Authenticator を生成します。
func NewAuthenticator(secret, issuer string, logger *zap.Logger) *Authenticator {
	if secret == "" {
		logger.Warn("jwt secret is not configured, authenticated routes will reject all requests")
	}
	return &Authenticator{secret: []byte(secret), issuer: issuer, logger: logger}
}

// Require は有効なトークンを持たないリクエストを 401 で拒否します。
func (a *Authenticator) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := a.authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				if !errors.Is(err, errMissingToken) {
					a.logger.Debug("rejected bearer token", zap.Error(err))
				}
				return port.ErrUnauthenticated
			}

			c.Set(callerContextKey, caller)
			return next(c)
		}
	}
}

func (a *Authenticator) authenticate(header string) (port.Caller, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return port.Caller{}, errMissingToken
	}
	if len(a.secret) == 0 {
		return port.Caller{}, errors.New("jwt secret not configured")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...); err != nil {
		return port.Caller{}, fmt.Errorf("failed to parse token: %w", err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return port.Caller{}, errors.New("token has no user id")
	}
	return port.Caller{UserID: userID, Role: claims.Role}, nil
}

// RequireRoles は呼び出し元のロールが roles のいずれかでない場合 403 を返します。
// Require の後に適用する必要があります。
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := callerFrom(c)
			if !ok {
				return port.ErrUnauthenticated
			}
			if !caller.HasAnyRole(roles...) {
				return port.ErrForbidden
			}
			return next(c)
		}
	}
}

func callerFrom(c echo.Context) (port.Caller, bool) {
	caller, ok := c.Get(callerContextKey).(port.Caller)
	return caller, ok
}
