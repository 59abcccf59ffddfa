package webhookController

import (
	"fmt"
	"log"
	"time"

	"eduwallet/blockchain"
	"eduwallet/middleware"
	"eduwallet/models"
	"eduwallet/repository"
	webhookValidator "eduwallet/validators/webhook"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Controller handles signed partner webhooks
type Controller struct {
	chain      blockchain.Client
	userRepo   *repository.UserRepo
	courseRepo *repository.CourseRepo
	enrollRepo *repository.EnrollmentRepo
	txRepo     *repository.TransactionRepo
}

func NewController(db *gorm.DB, chain blockchain.Client) *Controller {
	return &Controller{
		chain:      chain,
		userRepo:   repository.NewUserRepo(db),
		courseRepo: repository.NewCourseRepo(db),
		enrollRepo: repository.NewEnrollmentRepo(db),
		txRepo:     repository.NewTransactionRepo(db),
	}
}

// HandleCourseCompletion processes a course_completed event: the enrollment
// moves to completed, the credential course is upserted, and a pending
// deposit_points transaction is recorded for the reconciler to confirm.
func (wc *Controller) HandleCourseCompletion(c *fiber.Ctx) error {
	partner, ok := c.Locals("partner").(*models.Partner)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedCompletion").(*webhookValidator.CompletionPayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	// The signed body must agree with the authenticated partner
	if reqData.PartnerID != partner.PartnerID {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Partner ID mismatch!", nil)
	}

	user, err := wc.userRepo.FindByID(reqData.StudentID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	completed := reqData.CompletedCourse
	if err := wc.courseRepo.UpsertByExternalID(partner.ID, reqData.CourseID, models.Course{
		Title:       completed.Name,
		Description: completed.Description,
		Category:    completed.Category,
		Level:       completed.Level,
		Credits:     completed.Credits,
	}); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record course!", nil)
	}

	enrollmentID, err := wc.completeEnrollment(reqData, partner, user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update enrollment!", nil)
	}

	if err := wc.userRepo.LogAction(user.ID, models.UserActionCourseCompleted, map[string]interface{}{
		"partnerId": partner.PartnerID,
		"courseId":  reqData.CourseID,
		"credits":   completed.Credits,
	}); err != nil {
		log.Printf("[WEBHOOK] action log for user %d failed: %v", user.ID, err)
	}

	// Request the points deposit on chain and record it pending. A chain
	// failure here is transient and must not fail the completion event; the
	// enrollment update above stays committed either way.
	txHash := ""
	if completed.Credits > 0 && user.WalletAddress != "" {
		hash, err := wc.chain.DepositPoints(c.UserContext(), user.WalletAddress, completed.Credits)
		if err != nil {
			log.Printf("[WEBHOOK] points deposit for user %d failed: %v", user.ID, err)
		} else {
			txHash = hash
			tx := &models.BlockchainTransaction{
				TxType:    models.ChainTxTypeDepositPoints,
				Status:    models.ChainTxStatusPending,
				TxHash:    hash,
				Amount:    fmt.Sprintf("%g", completed.Credits),
				UserID:    &user.ID,
				ToAddress: user.WalletAddress,
				Metadata: datatypes.JSONMap{
					"source":    "partner_webhook",
					"partnerId": partner.PartnerID,
					"courseId":  reqData.CourseID,
					"pzoAmount": completed.Credits,
				},
			}
			if err := wc.txRepo.Create(tx); err != nil {
				log.Printf("[WEBHOOK] failed to record deposit tx %s: %v", hash, err)
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completion recorded successfully!", fiber.Map{
		"enrollmentId": enrollmentID,
		"txHash":       txHash,
	})
}

// completeEnrollment resolves the enrollment the event refers to, creating a
// completed record when the student never started the course locally.
func (wc *Controller) completeEnrollment(reqData *webhookValidator.CompletionPayload, partner *models.Partner, user *models.User) (uint, error) {
	now := time.Now()

	if reqData.EnrollmentID != nil {
		return *reqData.EnrollmentID, wc.enrollRepo.Complete(*reqData.EnrollmentID, now)
	}

	enrollment, err := wc.enrollRepo.FindForWebhook(user.ID, partner.ID, reqData.CourseID)
	if err == nil {
		return enrollment.ID, wc.enrollRepo.Complete(enrollment.ID, now)
	}

	course, err := wc.courseRepo.FindByExternalID(partner.ID, reqData.CourseID)
	if err != nil {
		return 0, err
	}
	created := &models.Enrollment{
		UserID:          user.ID,
		CourseID:        course.ID,
		PartnerID:       &partner.ID,
		Status:          models.EnrollmentStatusCompleted,
		ProgressPercent: 100,
		CompletedAt:     &now,
	}
	if err := wc.enrollRepo.CreateCompleted(created); err != nil {
		return 0, err
	}
	return created.ID, nil
}
