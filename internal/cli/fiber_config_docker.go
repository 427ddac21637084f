//go:build docker

package cli

import "github.com/gofiber/fiber/v3"

// createFiberConfig returns Fiber configuration for Docker deployments.
// Forwarded headers are only honoured from proxies on private networks.
func createFiberConfig(appName string, errorHandler fiber.ErrorHandler) fiber.Config {
	return fiber.Config{
		AppName:      appName,
		ErrorHandler: errorHandler,
		ProxyHeader:  fiber.HeaderXForwardedFor,
		TrustProxy:   true,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Private:  true,
			Loopback: true,
		},
	}
}
