package middleware

import (
	"strings"

	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/gofiber/fiber/v3"
)

// maxOperatorIDLength bounds the stored identity; longer values are ignored
const maxOperatorIDLength = 255

// OperatorIdentity copies the operator identity set by the upstream auth proxy
// from header into the request locals. A missing or oversized header leaves it unset.
func OperatorIdentity(header string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if v := strings.TrimSpace(c.Get(header)); v != "" && len(v) <= maxOperatorIDLength {
			c.Locals(utils.OperatorLocalsKey, v)
		}
		return c.Next()
	}
}
