package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"os"

	"tandril-backend/database"
	"tandril-backend/security"
	"tandril-backend/store"

	"github.com/gofiber/fiber/v2"
)

// Response messages the providers' compliance tooling matches on.
const (
	msgDataRequest    = "Customer data request received and logged"
	msgCustomerRedact = "Customer data redaction request received and processed"
	msgShopRedact     = "Shop data redaction request received and processed"
	msgAccountRedact  = "Account data redaction request received and processed"
	msgUnknownTopic   = "Webhook received"
)

type shopifyWebhookPayload struct {
	ShopID     json.Number `json:"shop_id"`
	ShopDomain string      `json:"shop_domain"`
	Customer   struct {
		ID    json.Number `json:"id"`
		Email string      `json:"email"`
		Phone string      `json:"phone"`
	} `json:"customer"`
	DataRequest struct {
		ID json.Number `json:"id"`
	} `json:"data_request"`
}

type ebayWebhookPayload struct {
	Metadata struct {
		Topic string `json:"topic"`
	} `json:"metadata"`
	Notification struct {
		NotificationID string `json:"notificationId"`
		Data           struct {
			Username  string `json:"username"`
			UserID    string `json:"userId"`
			EiasToken string `json:"eiasToken"`
		} `json:"data"`
	} `json:"notification"`
}

// webhookResult is what a topic handler reports back for the acknowledgment.
type webhookResult struct {
	message            string
	connectionsRemoved int64
}

// shopifyTopicHandlers maps Shopify GDPR topics to their domain action. Topics
// not listed here are acknowledged with a no-op 200 so Shopify stops redelivering.
var shopifyTopicHandlers = map[string]func(conns *store.Connections, p *shopifyWebhookPayload, shopDomain string) (webhookResult, error){
	"customers/data_request": func(conns *store.Connections, p *shopifyWebhookPayload, shopDomain string) (webhookResult, error) {
		// Recorded for manual export via the audit log; nothing is deleted.
		return webhookResult{message: msgDataRequest}, nil
	},
	"customers/redact": func(conns *store.Connections, p *shopifyWebhookPayload, shopDomain string) (webhookResult, error) {
		n, err := conns.RedactAccount("shopify", p.Customer.ID.String(), p.Customer.Email)
		return webhookResult{message: msgCustomerRedact, connectionsRemoved: n}, err
	},
	"shop/redact": func(conns *store.Connections, p *shopifyWebhookPayload, shopDomain string) (webhookResult, error) {
		n, err := conns.RedactShop("shopify", shopDomain)
		return webhookResult{message: msgShopRedact, connectionsRemoved: n}, err
	},
}

// HandleShopifyWebhook ingests one signed Shopify delivery:
// verify -> parse -> dispatch -> audit log -> acknowledge.
// Signature and parse failures are terminal 4xx with no log and no mutation;
// Shopify redelivers on anything non-2xx.
func HandleShopifyWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if err := security.Verify(body, c.Get("X-Shopify-Hmac-Sha256"), os.Getenv("SHOPIFY_API_SECRET")); err != nil {
		if errors.Is(err, security.ErrNoSecret) {
			log.Println("shopify webhook: secret not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "webhook receiver not configured",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid webhook signature",
		})
	}

	var payload shopifyWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "malformed payload",
		})
	}

	topic := c.Get("X-Shopify-Topic")
	shopDomain := payload.ShopDomain
	if shopDomain == "" {
		shopDomain = c.Get("X-Shopify-Shop-Domain")
	}

	result := webhookResult{message: msgUnknownTopic}
	var actionErr error
	if handler, ok := shopifyTopicHandlers[topic]; ok {
		result, actionErr = handler(store.NewConnections(database.DB), &payload, shopDomain)
	}

	// Verified deliveries are always logged, even when the action failed.
	warnings := appendAuditLog("shopify", shopDomain, topic, body)

	if actionErr != nil {
		log.Printf("shopify webhook %s: %v", topic, actionErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "webhook processing failed",
		})
	}

	return c.JSON(ackBody(result, warnings))
}

// HandleEbayChallenge answers eBay's endpoint-validation probe:
// sha256(challenge_code + verification_token + endpoint_url), hex-encoded.
func HandleEbayChallenge(c *fiber.Ctx) error {
	challenge := c.Query("challenge_code")
	if challenge == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "challenge_code is required",
		})
	}

	token := os.Getenv("EBAY_VERIFICATION_TOKEN")
	endpoint := os.Getenv("EBAY_ENDPOINT_URL")
	if token == "" || endpoint == "" {
		log.Println("ebay webhook: verification token or endpoint URL not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "webhook receiver not configured",
		})
	}

	h := sha256.New()
	h.Write([]byte(challenge))
	h.Write([]byte(token))
	h.Write([]byte(endpoint))

	return c.JSON(fiber.Map{"challengeResponse": hex.EncodeToString(h.Sum(nil))})
}

// HandleEbayWebhook ingests one signed eBay notification. The only topic with a
// domain action is MARKETPLACE_ACCOUNT_DELETION; everything else verified is
// logged and acknowledged.
func HandleEbayWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if err := security.Verify(body, c.Get("X-Ebay-Signature"), os.Getenv("EBAY_VERIFICATION_TOKEN")); err != nil {
		if errors.Is(err, security.ErrNoSecret) {
			log.Println("ebay webhook: verification token not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "webhook receiver not configured",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid webhook signature",
		})
	}

	var payload ebayWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "malformed payload",
		})
	}

	topic := payload.Metadata.Topic
	result := webhookResult{message: msgUnknownTopic}
	var actionErr error
	if topic == "MARKETPLACE_ACCOUNT_DELETION" {
		n, err := store.NewConnections(database.DB).RedactAccount(
			"ebay", payload.Notification.Data.UserID, payload.Notification.Data.Username)
		result = webhookResult{message: msgAccountRedact, connectionsRemoved: n}
		actionErr = err
	}

	warnings := appendAuditLog("ebay", "ebay.com", topic, body)

	if actionErr != nil {
		log.Printf("ebay webhook %s: %v", topic, actionErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "webhook processing failed",
		})
	}

	return c.JSON(ackBody(result, warnings))
}

// appendAuditLog is the best-effort side channel: a failed append is reported
// as a warning on the acknowledgment, never as a failed delivery.
func appendAuditLog(webhookType, sourceDomain, topic string, rawPayload []byte) []string {
	if err := store.NewWebhookLogs(database.DB).Append(webhookType, sourceDomain, topic, rawPayload); err != nil {
		log.Printf("%s webhook audit log append failed: %v", webhookType, err)
		return []string{"audit log append failed"}
	}
	return nil
}

func ackBody(result webhookResult, warnings []string) fiber.Map {
	body := fiber.Map{
		"success":             true,
		"message":             result.message,
		"connections_removed": result.connectionsRemoved,
	}
	if len(warnings) > 0 {
		body["warnings"] = warnings
	}
	return body
}
