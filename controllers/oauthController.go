package controllers

import (
	"errors"
	"log"
	"net/url"
	"os"
	"strings"

	"tandril-backend/database"
	"tandril-backend/middlewares"
	"tandril-backend/models"
	"tandril-backend/platform"
	"tandril-backend/store"
	"tandril-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Scope sets are fixed per provider, not configurable per call.
const (
	shopifyScopes = "read_products,write_products,read_orders,read_inventory,write_inventory"
	ebayScopes    = "https://api.ebay.com/oauth/api_scope " +
		"https://api.ebay.com/oauth/api_scope/sell.inventory " +
		"https://api.ebay.com/oauth/api_scope/sell.account"
)

// PlatformAPI is the outbound provider client; tests point its base URLs at
// stub servers.
var PlatformAPI = platform.NewClient()

type shopifyBeginDTO struct {
	StoreName string `json:"store_name" validate:"required"`
}

func appURL() string {
	return strings.TrimSuffix(os.Getenv("APP_URL"), "/")
}

// BeginShopifyOAuth mints a state token and builds the shop's authorization URL.
// A state-store write failure is fatal here: continuing without a stored state
// would disable CSRF validation at the callback.
func BeginShopifyOAuth(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var dto shopifyBeginDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	storeName, err := utils.NormalizeStoreName(dto.StoreName)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	clientID := os.Getenv("SHOPIFY_API_KEY")
	if clientID == "" {
		log.Println("shopify oauth: SHOPIFY_API_KEY not configured")
		return fiber.NewError(fiber.StatusInternalServerError, "authorization not configured")
	}

	st, err := store.NewStateTokens(database.DB).Issue(userID, "shopify")
	if err != nil {
		log.Printf("shopify oauth: state issue failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not start authorization")
	}

	shopDomain := storeName + ".myshopify.com"
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("scope", shopifyScopes)
	q.Set("redirect_uri", appURL()+"/api/oauth/shopify/callback")
	q.Set("response_type", "code")
	q.Set("state", st.Token)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"authorization_url": "https://" + shopDomain + "/admin/oauth/authorize?" + q.Encode(),
			"state":             st.Token,
			"shop_domain":       shopDomain,
		},
	})
}

// BeginEbayOAuth mints a state token and builds eBay's authorization URL.
func BeginEbayOAuth(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	clientID := os.Getenv("EBAY_CLIENT_ID")
	ruName := os.Getenv("EBAY_RU_NAME")
	if clientID == "" || ruName == "" {
		log.Println("ebay oauth: EBAY_CLIENT_ID or EBAY_RU_NAME not configured")
		return fiber.NewError(fiber.StatusInternalServerError, "authorization not configured")
	}

	st, err := store.NewStateTokens(database.DB).Issue(userID, "ebay")
	if err != nil {
		log.Printf("ebay oauth: state issue failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not start authorization")
	}

	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", ruName)
	q.Set("scope", ebayScopes)
	q.Set("state", st.Token)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"authorization_url": "https://auth.ebay.com/oauth2/authorize?" + q.Encode(),
			"state":             st.Token,
		},
	})
}

// ShopifyOAuthCallback consumes the state token, exchanges the code, and stores
// the connection. NotFound and Expired states get the same client-facing error;
// the distinction goes to the server log only.
func ShopifyOAuthCallback(c *fiber.Ctx) error {
	st, err := consumeState(c.Query("state"), "shopify")
	if err != nil {
		return rejectCallback(c, err)
	}

	code := c.Query("code")
	shop := strings.ToLower(c.Query("shop"))
	if code == "" || shop == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "code and shop are required",
		})
	}
	if !strings.HasSuffix(shop, ".myshopify.com") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid shop domain",
		})
	}

	tok, err := PlatformAPI.ExchangeShopifyCode(shop, os.Getenv("SHOPIFY_API_KEY"), os.Getenv("SHOPIFY_API_SECRET"), code)
	if err != nil {
		log.Printf("shopify oauth: code exchange failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "authorization could not be completed")
	}

	conn := models.PlatformConnection{
		UserID:      st.UserID,
		Platform:    "shopify",
		ShopDomain:  shop,
		AccessToken: tok.AccessToken,
		Scopes:      tok.Scope,
		Status:      "active",
	}
	if err := store.NewConnections(database.DB).Upsert(&conn); err != nil {
		log.Printf("shopify oauth: connection upsert failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not store connection")
	}

	return c.JSON(fiber.Map{"success": true, "data": conn})
}

// EbayOAuthCallback consumes the state token and exchanges the code.
func EbayOAuthCallback(c *fiber.Ctx) error {
	st, err := consumeState(c.Query("state"), "ebay")
	if err != nil {
		return rejectCallback(c, err)
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "code is required",
		})
	}

	tok, err := PlatformAPI.ExchangeEbayCode(os.Getenv("EBAY_CLIENT_ID"), os.Getenv("EBAY_CLIENT_SECRET"), os.Getenv("EBAY_RU_NAME"), code)
	if err != nil {
		log.Printf("ebay oauth: code exchange failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "authorization could not be completed")
	}

	// A connection stored without the eBay account identity could never be
	// matched by an account-deletion redact, so the lookup is not optional.
	ebayUser, err := PlatformAPI.GetEbayUser(tok.AccessToken)
	if err != nil {
		log.Printf("ebay oauth: identity lookup failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "authorization could not be completed")
	}

	conn := models.PlatformConnection{
		UserID:           st.UserID,
		Platform:         "ebay",
		ProviderUserID:   ebayUser.UserID,
		ProviderUsername: ebayUser.Username,
		AccessToken:      tok.AccessToken,
		Scopes:           ebayScopes,
		Status:           "active",
	}
	if err := store.NewConnections(database.DB).Upsert(&conn); err != nil {
		log.Printf("ebay oauth: connection upsert failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not store connection")
	}

	return c.JSON(fiber.Map{"success": true, "data": conn})
}

func consumeState(token, provider string) (*models.StateToken, error) {
	if token == "" {
		return nil, store.ErrStateTokenNotFound
	}
	st, err := store.NewStateTokens(database.DB).Consume(token)
	if err != nil {
		return nil, err
	}
	if st.Provider != provider {
		return nil, store.ErrStateTokenNotFound
	}
	return st, nil
}

// rejectCallback answers every failed state check the same way so a caller
// cannot probe whether a token ever existed.
func rejectCallback(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrStateTokenNotFound), errors.Is(err, store.ErrStateTokenExpired):
		log.Printf("oauth callback rejected: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid or expired authorization state",
		})
	default:
		log.Printf("oauth callback state check failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "authorization could not be completed")
	}
}
