package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"fin-extractor/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(max int) *fiber.App {
	app := fiber.New()
	app.Post("/limited",
		func(c *fiber.Ctx) error {
			if user := c.Get("X-Test-User"); user != "" {
				c.Locals(LocalUserID, user)
			}
			return c.Next()
		},
		RateLimit(RateLimitConfig{
			Route:   "test",
			Max:     max,
			Window:  time.Minute,
			Storage: memory.New(),
		}, metrics.New()),
		func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		},
	)
	return app
}

type result struct {
	status     int
	retryAfter string
	body       []byte
}

func post(t *testing.T, app *fiber.App, user string) result {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/limited", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{
		status:     resp.StatusCode,
		retryAfter: resp.Header.Get(fiber.HeaderRetryAfter),
		body:       body,
	}
}

func TestRateLimitPerUser(t *testing.T) {
	app := newLimitedApp(2)
	before := testutil.ToFloat64(metrics.New().RateLimitedTotal.WithLabelValues("test"))

	assert.Equal(t, fiber.StatusNoContent, post(t, app, "alice").status)
	assert.Equal(t, fiber.StatusNoContent, post(t, app, "alice").status)

	rejected := post(t, app, "alice")
	assert.Equal(t, fiber.StatusTooManyRequests, rejected.status)
	assert.NotEmpty(t, rejected.retryAfter)

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	require.NoError(t, json.Unmarshal(rejected.body, &body))
	assert.Equal(t, "Rate limit exceeded", body.Error)
	assert.Greater(t, body.RetryAfter, 0)
	assert.LessOrEqual(t, body.RetryAfter, 60)

	// Budgets are independent per user.
	assert.Equal(t, fiber.StatusNoContent, post(t, app, "bob").status)

	after := testutil.ToFloat64(metrics.New().RateLimitedTotal.WithLabelValues("test"))
	assert.Equal(t, before+1, after)
}

func TestRateLimitRequiresUser(t *testing.T) {
	app := newLimitedApp(2)

	res := post(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(res.body))
}

func TestRateLimitersShareUserCounter(t *testing.T) {
	storage := memory.New()
	m := metrics.New()
	setUser := func(c *fiber.Ctx) error {
		c.Locals(LocalUserID, "carol")
		return c.Next()
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	app := fiber.New()
	app.Post("/extract", setUser, RateLimit(RateLimitConfig{Route: "extract", Max: 2, Window: time.Minute, Storage: storage}, m), ok)
	app.Post("/save", setUser, RateLimit(RateLimitConfig{Route: "save", Max: 3, Window: time.Minute, Storage: storage}, m), ok)

	call := func(path string) int {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusNoContent, call("/save"))
	assert.Equal(t, fiber.StatusNoContent, call("/extract"))
	assert.Equal(t, fiber.StatusNoContent, call("/save"))
	// Only the second extract call, but the fourth hit on carol's counter.
	assert.Equal(t, fiber.StatusTooManyRequests, call("/extract"))
}
