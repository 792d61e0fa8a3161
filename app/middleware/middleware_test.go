package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/dispupr-numbering/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorIdentity(t *testing.T) {
	app := fiber.New()
	app.Use(OperatorIdentity("X-User-ID"))
	app.Get("/whoami", func(c fiber.Ctx) error {
		operator, _ := c.Locals(utils.OperatorLocalsKey).(string)
		return c.SendString(operator)
	})

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "present", header: "operator-7", expected: "operator-7"},
		{name: "trimmed", header: "  operator-8 ", expected: "operator-8"},
		{name: "absent", header: "", expected: ""},
		{name: "oversized", header: strings.Repeat("a", maxOperatorIDLength+1), expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("X-User-ID", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(body))
		})
	}
}

func TestMetricsRecordsRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics("/metrics"))
	app.Get("/items/:id", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/metrics", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "nope")
	})

	recorded := httpRequestsTotal.WithLabelValues(fiber.MethodGet, "/items/:id", "204")
	before := testutil.ToFloat64(recorded)

	for _, id := range []string{"1", "2", "3"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	assert.Equal(t, before+3, testutil.ToFloat64(recorded))

	teapot := httpRequestsTotal.WithLabelValues(fiber.MethodGet, "/boom", "418")
	beforeTeapot := testutil.ToFloat64(teapot)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, beforeTeapot+1, testutil.ToFloat64(teapot))

	scrape := httpRequestsTotal.WithLabelValues(fiber.MethodGet, "/metrics", "200")
	beforeScrape := testutil.ToFloat64(scrape)
	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, beforeScrape, testutil.ToFloat64(scrape))
}
