package fakebackend

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentora/access-layer/internal/core/domain"
)

// MessageInvalidToken is returned for a missing, malformed or expired bearer
// token.
const MessageInvalidToken = "Invalid or expired token"

const ctxRole = "role"

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  sessionUser `json:"user"`
}

type sessionUser struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IssueToken signs a token for subject in role. A negative ttl yields a token
// that is already expired.
func (s *Server) IssueToken(subject string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return t.SignedString(s.secret)
}

// login handles the login endpoint of a single role. Accounts of another
// role are rejected as invalid credentials.
func (s *Server) login(role domain.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}

		acc, ok := s.accounts[req.Email]
		if !ok || acc.role != role || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}

		token, err := s.IssueToken(acc.email, acc.role, s.ttl)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, loginResponse{
			Token: token,
			User:  sessionUser{Email: acc.email, Role: string(acc.role)},
		})
	}
}

// auth validates the bearer token and stores its role in the context.
func (s *Server) auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}

		var cl claims
		tkn, err := jwt.ParseWithClaims(parts[1], &cl, func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !tkn.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, MessageInvalidToken)
		}

		c.Set(ctxRole, domain.Role(cl.Role))
		return next(c)
	}
}

func requireRole(allowed ...domain.Role) echo.MiddlewareFunc {
	set := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ctxRole).(domain.Role)
			if _, ok := set[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
