package middleware

import (
	"errors"
	"strings"

	"simia-portal/internal/adapters/persistence/repositories"
	"simia-portal/internal/config"
	"simia-portal/internal/pkg/jwt"
	"simia-portal/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the authenticated caller attached to the request context
type Identity struct {
	ID       string
	Username string
	Role     string
}

// Authenticator resolves the identity for a request. Implementations are
// chosen once at wiring time; handlers never branch on auth mode.
type Authenticator interface {
	Authenticate(c *fiber.Ctx) (*Identity, error)
}

// NewAuthenticator selects the authenticator for the current configuration.
// Demo mode is refused in prod by config.Load, so a production build can
// only ever get the JWT authenticator.
func NewAuthenticator(cfg *config.Config, userRepo repositories.UserRepository) Authenticator {
	if cfg.DemoAuth {
		return &DemoAuthenticator{}
	}
	return &JWTAuthenticator{cfg: cfg, userRepo: userRepo}
}

// JWTAuthenticator verifies a bearer token and resolves the referenced user
type JWTAuthenticator struct {
	cfg      *config.Config
	userRepo repositories.UserRepository
}

func (a *JWTAuthenticator) Authenticate(c *fiber.Ctx) (*Identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, ErrNoToken
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, ErrNoToken
	}

	claims, err := jwt.ValidateToken(token, a.cfg.JWT.Secret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// The token references a user record; a deleted user invalidates the
	// token even before it expires.
	user, err := a.userRepo.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return &Identity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// DemoAuthenticator injects a fixed admin identity unconditionally.
// Local development only; config.Load refuses it in prod mode.
type DemoAuthenticator struct{}

func (a *DemoAuthenticator) Authenticate(c *fiber.Ctx) (*Identity, error) {
	return &Identity{
		ID:       "demo-admin",
		Username: "admin",
		Role:     "admin",
	}, nil
}

// AuthMiddleware creates authentication middleware over the given strategy.
// Missing token is 401; invalid/expired token or missing user is 403.
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := auth.Authenticate(c)
		if err != nil {
			switch {
			case errors.Is(err, ErrNoToken):
				return response.Unauthorized(c, "No token provided")
			case errors.Is(err, ErrInvalidToken):
				return response.Forbidden(c, "Invalid or expired token")
			default:
				return response.InternalServerError(c, "Authentication failed")
			}
		}

		c.Locals("userID", identity.ID)
		c.Locals("username", identity.Username)
		c.Locals("role", identity.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware("admin")
}
