package webhookRoutes

import (
	webhookController "eduwallet/controllers/webhook"
	"eduwallet/middleware"
	webhookValidator "eduwallet/validators/webhook"

	"github.com/gofiber/fiber/v2"
)

func SetupWebhookRoutes(app *fiber.App, controller *webhookController.Controller) {
	webhookGroup := app.Group("/webhooks")

	// Partner event routes
	webhookGroup.Post("/partner", middleware.PartnerSignatureMiddleware, webhookValidator.CourseCompletion(), controller.HandleCourseCompletion)
}
