package routes

import (
	"github.com/gofiber/fiber/v2"

	"tandril-backend/controllers"
	"tandril-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)

	// Provider webhook receivers (HMAC-gated, no bearer auth: the caller is the
	// platform, not a browser session)
	api.Post("/webhooks/shopify", controllers.HandleShopifyWebhook)
	api.Get("/webhooks/ebay", controllers.HandleEbayChallenge)
	api.Post("/webhooks/ebay", controllers.HandleEbayWebhook)

	// OAuth callbacks land unauthenticated; the state token is the credential
	api.Get("/oauth/shopify/callback", controllers.ShopifyOAuthCallback)
	api.Get("/oauth/ebay/callback", controllers.EbayOAuthCallback)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard for mutating merchant calls
	protected.Use(middlewares.Idempotency())

	// OAuth initiation
	protected.Post("/oauth/shopify/begin", controllers.BeginShopifyOAuth)
	protected.Post("/oauth/ebay/begin", controllers.BeginEbayOAuth)

	// Platform connections
	protected.Get("/connections", controllers.GetConnections)
	protected.Delete("/connections/:id", controllers.DeleteConnection)

	// Inventory proxy
	protected.Post("/inventory/update", controllers.UpdateInventory)
}
