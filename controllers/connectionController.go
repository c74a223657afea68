package controllers

import (
	"tandril-backend/database"
	"tandril-backend/store"

	"github.com/gofiber/fiber/v2"
)

func GetConnections(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	conns, err := store.NewConnections(database.DB).ForUser(userID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list connections")
	}

	return c.JSON(fiber.Map{"success": true, "data": conns})
}

// DeleteConnection disconnects a platform. Idempotent: disconnecting an already
// absent connection is success with a zero count.
func DeleteConnection(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	n, err := store.NewConnections(database.DB).DeleteForUser(userID, c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete connection")
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"message":             "connection removed",
		"connections_removed": n,
	})
}
