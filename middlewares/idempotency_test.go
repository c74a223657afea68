package middlewares

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"tandril-backend/database"
	"tandril-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tandril_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.IdempotencyKey{}))
	database.DB = db

	calls := 0
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "user-1")
		return c.Next()
	})
	app.Use(Idempotency())
	app.Post("/thing", func(c *fiber.Ctx) error {
		calls++
		return c.JSON(fiber.Map{"success": true, "calls": calls})
	})
	return app, &calls
}

func post(t *testing.T, app *fiber.App, key string, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/thing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	resp := post(t, app, "key-1", []byte(`{"a":1}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first, _ := io.ReadAll(resp.Body)

	resp = post(t, app, "key-1", []byte(`{"a":1}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second, _ := io.ReadAll(resp.Body)

	// Handler ran once; the retry got the stored body verbatim.
	assert.Equal(t, 1, *calls)
	assert.Equal(t, string(first), string(second))
}

func TestIdempotencyKeyReuseConflict(t *testing.T) {
	app, _ := setupIdempotencyApp(t)

	resp := post(t, app, "key-1", []byte(`{"a":1}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, app, "key-1", []byte(`{"a":2}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIdempotencyWithoutKeyRunsEveryTime(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	post(t, app, "", []byte(`{"a":1}`))
	post(t, app, "", []byte(`{"a":1}`))
	assert.Equal(t, 2, *calls)
}
