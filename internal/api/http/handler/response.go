package handler

import "github.com/gofiber/fiber/v3"

// created answers a successful create. Creates answer 200, not 201.
func created(c fiber.Ctx, message, key string, entity any) error {
	return c.JSON(fiber.Map{"success": true, "message": message, key: entity})
}

func ok(c fiber.Ctx, body fiber.Map) error {
	body["success"] = true
	return c.JSON(body)
}

func list(c fiber.Ctx, body fiber.Map) error {
	return c.JSON(body)
}

func fail(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadRequest, msg)
}

func notFound(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusNotFound, msg)
}

func conflict(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusConflict, msg)
}

func internalError(c fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}
