package platform

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tandril-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeShopifyCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/admin/oauth/access_token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key123", body["client_id"])
		assert.Equal(t, "code-abc", body["code"])

		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "shpat_test",
			"scope":        "read_products,write_inventory",
		})
	}))
	defer srv.Close()

	c := NewClient()
	c.ShopifyBaseURL = srv.URL

	tok, err := c.ExchangeShopifyCode("acme.myshopify.com", "key123", "sec456", "code-abc")
	require.NoError(t, err)
	assert.Equal(t, "shpat_test", tok.AccessToken)
	assert.Equal(t, "read_products,write_inventory", tok.Scope)
}

func TestExchangeShopifyCodeRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient()
	c.ShopifyBaseURL = srv.URL

	_, err := c.ExchangeShopifyCode("acme.myshopify.com", "key", "sec", "bad-code")
	assert.Error(t, err)
}

func TestExchangeEbayCodeSendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/identity/v1/oauth2/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ebay-client", user)
		assert.Equal(t, "ebay-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		json.NewEncoder(w).Encode(map[string]string{"access_token": "v^1.1_token"})
	}))
	defer srv.Close()

	c := NewClient()
	c.EbayBaseURL = srv.URL

	tok, err := c.ExchangeEbayCode("ebay-client", "ebay-secret", "https://app.tandril.io/cb", "code-xyz")
	require.NoError(t, err)
	assert.Equal(t, "v^1.1_token", tok.AccessToken)
}

func TestUpdateInventory(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		require.Equal(t, "/admin/api/2024-01/inventory_levels/set.json", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient()
	c.ShopifyBaseURL = srv.URL

	conn := &models.PlatformConnection{Platform: "shopify", ShopDomain: "acme.myshopify.com", AccessToken: "shpat_x"}
	require.NoError(t, c.UpdateInventory(conn, "SKU-1", 12))
	assert.Equal(t, "shpat_x", gotToken)

	conn.Platform = "fax-machine"
	assert.Error(t, c.UpdateInventory(conn, "SKU-1", 12))
}

func TestGetEbayUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/commerce/identity/v1/user/", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{
			"userId":   "E123",
			"username": "seller-a",
		})
	}))
	defer srv.Close()

	c := NewClient()
	c.EbayBaseURL = srv.URL

	u, err := c.GetEbayUser("tok-1")
	require.NoError(t, err)
	assert.Equal(t, "E123", u.UserID)
	assert.Equal(t, "seller-a", u.Username)
}

func TestGetEbayUserRejectsEmptyIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient()
	c.EbayBaseURL = srv.URL

	_, err := c.GetEbayUser("tok-1")
	assert.Error(t, err)
}
