package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tandril-backend/database"
	"tandril-backend/middlewares"
	"tandril-backend/models"
	"tandril-backend/routes"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET_KEY", "test-jwt-secret")
	os.Setenv("SHOPIFY_API_KEY", "shopify-key")
	os.Setenv("SHOPIFY_API_SECRET", "shopify-secret")
	os.Setenv("EBAY_CLIENT_ID", "ebay-client")
	os.Setenv("EBAY_CLIENT_SECRET", "ebay-secret")
	os.Setenv("EBAY_VERIFICATION_TOKEN", "ebay-verification-token")
	os.Setenv("EBAY_ENDPOINT_URL", "https://app.tandril.io/api/webhooks/ebay")
	os.Setenv("EBAY_RU_NAME", "Tandril-ru-name")
	os.Setenv("APP_URL", "https://app.tandril.io")
	os.Exit(m.Run())
}

// setupApp points database.DB at a throwaway sqlite file and registers the
// production route table.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tandril_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PlatformConnection{},
		&models.StateToken{},
		&models.WebhookLog{},
		&models.IdempotencyKey{},
	))
	database.DB = db

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	routes.Register(app)
	return app
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := middlewares.GenerateJWT(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func jsonRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, database.DB.Model(model).Count(&n).Error)
	return n
}
