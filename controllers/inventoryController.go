package controllers

import (
	"errors"
	"log"

	"tandril-backend/database"
	"tandril-backend/middlewares"
	"tandril-backend/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type inventoryUpdateDTO struct {
	ConnectionID string `json:"connection_id" validate:"required"`
	SKU          string `json:"sku" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
}

// UpdateInventory proxies a quantity change to the merchant's connected
// platform using the stored access token.
func UpdateInventory(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var dto inventoryUpdateDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	conn, err := store.NewConnections(database.DB).GetForUser(userID, dto.ConnectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "connection not found",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "could not load connection")
	}

	if err := PlatformAPI.UpdateInventory(conn, dto.SKU, dto.Quantity); err != nil {
		log.Printf("inventory update via %s failed: %v", conn.Platform, err)
		return fiber.NewError(fiber.StatusBadGateway, "platform rejected inventory update")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "inventory update forwarded",
		"data": fiber.Map{
			"platform": conn.Platform,
			"sku":      dto.SKU,
			"quantity": dto.Quantity,
		},
	})
}
