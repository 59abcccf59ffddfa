package reconcileController

import (
	"eduwallet/config"
	"eduwallet/middleware"
	"eduwallet/repository"
	"eduwallet/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Controller exposes the on-demand reconciliation surface for admins
type Controller struct {
	reconciler *services.TransactionReconciler
	txRepo     *repository.TransactionRepo
}

func NewController(db *gorm.DB, reconciler *services.TransactionReconciler) *Controller {
	return &Controller{
		reconciler: reconciler,
		txRepo:     repository.NewTransactionRepo(db),
	}
}

// RunReconciliation triggers one reconciliation pass outside the schedule
func (rc *Controller) RunReconciliation(c *fiber.Ctx) error {
	reqData := new(struct {
		Limit int `json:"limit"`
	})
	// Body is optional; an empty body falls back to the configured batch limit
	if err := c.BodyParser(reqData); err != nil && len(c.Body()) > 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	limit := reqData.Limit
	if limit <= 0 {
		limit = config.AppConfig.ReconcileBatchLimit
	}

	processed, err := rc.reconciler.ReconcilePending(c.UserContext(), limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Reconciliation failed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reconciliation completed!", fiber.Map{
		"processed": processed,
	})
}

// GetPendingTransactions lists transactions still awaiting chain confirmation
func (rc *Controller) GetPendingTransactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	txs, err := rc.txRepo.FindPending(limit)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch pending transactions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending transactions fetched successfully!", fiber.Map{
		"transactions": txs,
		"count":        len(txs),
	})
}
