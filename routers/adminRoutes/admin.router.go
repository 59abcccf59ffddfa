package adminRoutes

import (
	reconcileController "eduwallet/controllers/reconcile"
	"eduwallet/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, controller *reconcileController.Controller) {
	adminGroup := app.Group("/admin")

	// Reconciliation routes
	reconcileGroup := adminGroup.Group("/reconcile")
	reconcileGroup.Post("/run", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), controller.RunReconciliation)
	reconcileGroup.Get("/pending", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), controller.GetPendingTransactions)
}
