package middleware

import (
	"eduwallet/config"
	"eduwallet/database"
	"eduwallet/models"
	"eduwallet/repository"
	"eduwallet/signature"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Webhook authentication headers sent by partner sites
const (
	HeaderPartnerID        = "X-Partner-Id"
	HeaderPartnerTimestamp = "X-Partner-Timestamp"
	HeaderPartnerSignature = "X-Partner-Signature"
)

// PartnerSignatureMiddleware authenticates inbound partner webhooks. The
// signature covers the timestamp header and the exact raw body bytes; any
// mismatch rejects the request before event processing. Suspended or inactive
// partners authenticate but are refused.
func PartnerSignatureMiddleware(c *fiber.Ctx) error {
	partnerID := c.Get(HeaderPartnerID)
	timestamp := c.Get(HeaderPartnerTimestamp)
	sig := c.Get(HeaderPartnerSignature)

	if partnerID == "" || timestamp == "" || sig == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing partner authentication headers!", nil)
	}

	partnerRepo := repository.NewPartnerRepo(database.Database.Db)
	partner, err := partnerRepo.FindByPartnerID(partnerID)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unknown partner!", nil)
	}

	maxAge := time.Duration(config.AppConfig.WebhookMaxAgeSec) * time.Second
	if err := signature.VerifyWithMaxAge(partner.SharedSecret, timestamp, c.Body(), sig, maxAge, time.Now()); err != nil {
		log.Printf("[WEBHOOK] rejected request from partner %s: %v", partnerID, err)
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid webhook signature!", nil)
	}

	if partner.Status != models.PartnerStatusActive {
		return JsonResponse(c, fiber.StatusForbidden, false, "Partner is not active!", nil)
	}

	c.Locals("partner", partner)
	return c.Next()
}
