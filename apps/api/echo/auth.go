package echoapi

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/access"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/student"
)

const (
	contextTokenKey     = "userToken"
	contextPrincipalKey = "principal"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int         `json:"id"`
	Username string      `json:"username"`
	Role     access.Role `json:"role"`
	FullName string      `json:"fullName"`
}

func (c Claims) Identity() access.Identity {
	return access.Identity{
		ID:       c.UserID,
		Username: c.Username,
		Role:     c.Role,
		FullName: c.FullName,
	}
}

// GetClaims builds the claims of a freshly authenticated principal.
func GetClaims(p access.Principal, conf *core.Config) *Claims {
	id := p.Identity()
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    conf.AppName,
			Subject:   string(id.Role) + ":" + strconv.Itoa(id.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   id.ID,
		Username: id.Username,
		Role:     id.Role,
		FullName: id.FullName,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

type authMiddlewares struct {
	jwt       echo.MiddlewareFunc // token required
	optional  echo.MiddlewareFunc // anonymous requests pass, bad tokens do not
	principal echo.MiddlewareFunc
}

func (m authMiddlewares) required() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{m.jwt, m.principal}
}

func (m authMiddlewares) maybe() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{m.optional, m.principal}
}

func newJWTMiddleware(secret string, optional bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(Claims) },
		ErrorHandler: func(ctx echo.Context, err error) error {
			if optional && ctx.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return nil
			}
			return errUnauthorized
		},
		ContinueOnIgnoredError: optional,
	})
}

func getContextClaims(ctx echo.Context) (*Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return claims, nil
		}
	}
	return nil, errUnauthorized
}

// principalMiddleware loads the staff member or student behind the token.
// Principals that no longer exist are unauthenticated; deactivated students are refused.
func principalMiddleware(staffSvc *staff.Service, studentSvc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return next(ctx) // anonymous
			}
			reqCtx := ctx.Request().Context()

			var p access.Principal
			if claims.Role == access.RoleStudent {
				st, err := studentSvc.Lookup(reqCtx, claims.UserID)
				if err != nil {
					if core.IsNotFound(err) {
						return errUnauthorized
					}
					return errors.Wrap(err, "finding student")
				}
				if !st.IsActive {
					return errAccountDisabled
				}
				p = st
			} else {
				s, err := staffSvc.GetByID(reqCtx, claims.UserID)
				if err != nil {
					if core.IsNotFound(err) {
						return errUnauthorized
					}
					return errors.Wrap(err, "finding staff")
				}
				p = s
			}

			ctx.Set(contextPrincipalKey, p)
			return next(ctx)
		}
	}
}

func getContextPrincipal(ctx echo.Context) (access.Principal, error) {
	if p, ok := ctx.Get(contextPrincipalKey).(access.Principal); ok {
		return p, nil
	}
	return nil, errUnauthorized
}

// identity is the current principal's identity, or the anonymous one.
func identity(ctx echo.Context) access.Identity {
	if p, err := getContextPrincipal(ctx); err == nil {
		return p.Identity()
	}
	return access.Identity{}
}
