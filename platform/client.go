package platform

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tandril-backend/models"
)

// Client performs the outbound provider calls: OAuth code exchange and the
// inventory update proxy. BaseURL overrides exist for tests.
type Client struct {
	HTTP           *http.Client
	ShopifyBaseURL string // default: https://{shop_domain}
	EbayBaseURL    string // default: https://api.ebay.com
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

type TokenResult struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ExchangeShopifyCode trades an authorization code for a shop access token.
func (c *Client) ExchangeShopifyCode(shopDomain, clientID, clientSecret, code string) (*TokenResult, error) {
	endpoint := c.shopifyURL(shopDomain) + "/admin/oauth/access_token"
	payload, _ := json.Marshal(map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"code":          code,
	})

	resp, err := c.HTTP.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("shopify token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify token exchange: status %d", resp.StatusCode)
	}
	var out TokenResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("shopify token exchange: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("shopify token exchange: empty access token")
	}
	return &out, nil
}

// ExchangeEbayCode trades an authorization code for a user access token.
func (c *Client) ExchangeEbayCode(clientID, clientSecret, redirectURI, code string) (*TokenResult, error) {
	endpoint := c.ebayURL() + "/identity/v1/oauth2/token"
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebay token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ebay token exchange: status %d", resp.StatusCode)
	}
	var out TokenResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("ebay token exchange: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("ebay token exchange: empty access token")
	}
	return &out, nil
}

type EbayUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// GetEbayUser fetches the token owner's identity from eBay's Identity API.
// Account-deletion webhooks address connections by this identity, so a
// connection must not be stored without it.
func (c *Client) GetEbayUser(accessToken string) (*EbayUser, error) {
	req, err := http.NewRequest(http.MethodGet, c.ebayURL()+"/commerce/identity/v1/user/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebay identity lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ebay identity lookup: status %d", resp.StatusCode)
	}
	var out EbayUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("ebay identity lookup: %w", err)
	}
	if out.UserID == "" && out.Username == "" {
		return nil, fmt.Errorf("ebay identity lookup: empty identity")
	}
	return &out, nil
}

// UpdateInventory forwards a quantity update to the connected platform.
func (c *Client) UpdateInventory(conn *models.PlatformConnection, sku string, quantity int) error {
	switch conn.Platform {
	case "shopify":
		return c.updateShopifyInventory(conn, sku, quantity)
	case "ebay":
		return c.updateEbayInventory(conn, sku, quantity)
	default:
		return fmt.Errorf("unsupported platform %q", conn.Platform)
	}
}

func (c *Client) updateShopifyInventory(conn *models.PlatformConnection, sku string, quantity int) error {
	endpoint := c.shopifyURL(conn.ShopDomain) + "/admin/api/2024-01/inventory_levels/set.json"
	payload, _ := json.Marshal(map[string]any{
		"sku":       sku,
		"available": quantity,
	})

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", conn.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "shopify inventory update")
}

func (c *Client) updateEbayInventory(conn *models.PlatformConnection, sku string, quantity int) error {
	endpoint := c.ebayURL() + "/sell/inventory/v1/inventory_item/" + url.PathEscape(sku)
	payload, _ := json.Marshal(map[string]any{
		"availability": map[string]any{
			"shipToLocationAvailability": map[string]int{"quantity": quantity},
		},
	})

	req, err := http.NewRequest(http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "ebay inventory update")
}

func (c *Client) do(req *http.Request, op string) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status %d", op, resp.StatusCode)
	}
	return nil
}

func (c *Client) shopifyURL(shopDomain string) string {
	if c.ShopifyBaseURL != "" {
		return strings.TrimSuffix(c.ShopifyBaseURL, "/")
	}
	return "https://" + shopDomain
}

func (c *Client) ebayURL() string {
	if c.EbayBaseURL != "" {
		return strings.TrimSuffix(c.EbayBaseURL, "/")
	}
	return "https://api.ebay.com"
}
