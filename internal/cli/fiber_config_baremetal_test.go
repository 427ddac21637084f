//go:build !docker

package cli

import (
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
)

func TestCreateFiberConfigBareMetal(t *testing.T) {
	config := createFiberConfig("Test App", nil)

	assert.Equal(t, fiber.HeaderXForwardedFor, config.ProxyHeader)
	assert.False(t, config.TrustProxy, "bare metal builds read X-Forwarded-For without a proxy allow-list")
}
