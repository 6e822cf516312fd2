package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/carelink-ai/carelink/internal/identity"
)

const identityKey = "identity"

// identityMiddleware resolves the request identity from an optional Bearer
// token. No token means anonymous; a token that is present but invalid is
// rejected so one user's history can't be read under a forged namespace.
func (s *Server) identityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			c.Locals(identityKey, (*identity.Identity)(nil))
			return c.Next()
		}

		tokenString := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.Auth.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		id := &identity.Identity{}
		if sub, ok := claims["sub"].(string); ok {
			id.ID = sub
		}
		if name, ok := claims["name"].(string); ok {
			id.DisplayName = name
		}
		if email, ok := claims["email"].(string); ok {
			id.Email = email
		}
		if picture, ok := claims["picture"].(string); ok {
			id.AvatarURL = picture
		}

		if id.ID == "" {
			return c.Status(401).JSON(fiber.Map{"error": "token missing subject"})
		}

		c.Locals(identityKey, id)
		return c.Next()
	}
}

func requestIdentity(c *fiber.Ctx) *identity.Identity {
	if id, ok := c.Locals(identityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}

// socketIdentity reads the identity the middleware stored before the
// websocket upgrade
func socketIdentity(conn *websocket.Conn) *identity.Identity {
	if id, ok := conn.Locals(identityKey).(*identity.Identity); ok {
		return id
	}
	return nil
}
