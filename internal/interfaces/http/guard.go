package http

import (
	"crypto/subtle"
	"net"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-desktop/internal/application/dto"
)

// LocalGuard protege la API local frente a páginas web abiertas en el mismo equipo:
// rechaza peticiones de otro origen, exige el Bearer token de este arranque (si token
// no está vacío) y solo acepta cuerpos JSON en los métodos que modifican estado.
func LocalGuard(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if site := c.Get("Sec-Fetch-Site"); site != "" && site != "same-origin" && site != "none" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "CROSS_SITE", Message: "petición de otro sitio"})
		}
		if origin := c.Get(fiber.HeaderOrigin); origin != "" && !loopbackOrigin(origin) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "CROSS_SITE", Message: "origen no permitido"})
		}

		if token != "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if authHeader == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
			}
			got := strings.TrimSpace(parts[1])
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido"})
			}
		}

		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
			// Un formulario HTML nunca puede enviar application/json.
			if len(c.Body()) > 0 && !c.Is("json") {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(dto.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "se requiere Content-Type application/json"})
			}
		}
		return c.Next()
	}
}

func loopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
