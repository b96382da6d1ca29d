package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/opdpulse/opdpulse/internal/logging"
)

// generateAPIKey generates a valid API key of specified length
func generateAPIKey(length int) string {
	key := make([]byte, length)
	for i := range key {
		key[i] = 'a' + byte(i%26)
	}
	return string(key)
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"valid key - exactly 32 chars", generateAPIKey(32), true},
		{"valid key - longer than 32 chars", generateAPIKey(64), true},
		{"invalid key - too short", generateAPIKey(31), false},
		{"invalid key - empty string", "", false},
		{"invalid key - 32 spaces", "                                ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAPIKey(tt.key); got != tt.expected {
				t.Errorf("ValidateAPIKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"abcdefghijklmnop", "abcd****"},
		{"abcd", "****"},
		{"", "****"},
		{"abcde", "abcd****"},
	}

	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.expected {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	logger := logging.NewDevelopment()
	app := fiber.New()

	app.Use(APIKeyAuth(logger, []string{}, false))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to test request: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	logger := logging.NewDevelopment()
	validKey := generateAPIKey(32)

	app := fiber.New()
	app.Use(APIKeyAuth(logger, []string{validKey}, true))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"X-API-Key header", "X-API-Key", validKey},
		{"Authorization Bearer header", "Authorization", "Bearer " + validKey},
		{"Authorization plain header", "Authorization", validKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set(tt.headerName, tt.headerVal)

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}

			if resp.StatusCode != fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status 200, got %d, body: %s", resp.StatusCode, string(body))
			}
		})
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	logger := logging.NewDevelopment()
	validKey := generateAPIKey(32)

	app := fiber.New()
	app.Use(APIKeyAuth(logger, []string{validKey}, true))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"missing API key", "", ""},
		{"wrong API key", "X-API-Key", generateAPIKey(32) + "wrong"},
		{"short API key in request", "X-API-Key", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.headerName != "" {
				req.Header.Set(tt.headerName, tt.headerVal)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to test request: %v", err)
			}

			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", resp.StatusCode)
			}
		})
	}
}

func TestAPIKeyAuth_WeakKeysRejected(t *testing.T) {
	logger := logging.NewDevelopment()

	weakKeys := []string{
		"a",
		"short",
		generateAPIKey(31),
	}

	app := fiber.New()
	app.Use(APIKeyAuth(logger, weakKeys, true))
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Weak keys never make it into the valid key map, so even a matching
	// request key must be rejected
	for _, weakKey := range weakKeys {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-API-Key", weakKey)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to test request: %v", err)
		}

		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("Weak key %q (len=%d) should be rejected, got status %d",
				maskAPIKey(weakKey), len(weakKey), resp.StatusCode)
		}
	}
}
