package webhookValidator

import (
	"eduwallet/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CompletedCourse carries the credential details reported by the partner
type CompletedCourse struct {
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description"`
	Issuer           string   `json:"issuer" validate:"required"`
	IssueDate        string   `json:"issueDate"`
	Category         string   `json:"category"`
	Level            string   `json:"level"`
	Credits          float64  `json:"credits" validate:"gte=0"`
	Grade            string   `json:"grade"`
	Score            float64  `json:"score"`
	Status           string   `json:"status"`
	Progress         float64  `json:"progress"`
	ModulesCompleted int      `json:"modulesCompleted"`
	TotalModules     int      `json:"totalModules"`
	Skills           []string `json:"skills"`
	VerificationURL  string   `json:"verificationUrl"`
	CertificateURL   string   `json:"certificateUrl"`
	ImageURL         string   `json:"imageUrl"`
}

// CompletionPayload is the body of a course_completed webhook
type CompletionPayload struct {
	PartnerID       string          `json:"partnerId" validate:"required"`
	EventType       string          `json:"eventType" validate:"required,eq=course_completed"`
	StudentID       uint            `json:"studentId" validate:"required"`
	CourseID        string          `json:"courseId" validate:"required"`
	EnrollmentID    *uint           `json:"enrollmentId"`
	CompletedCourse CompletedCourse `json:"completedCourse" validate:"required"`
}

// CourseCompletion validates the partner completion webhook body
func CourseCompletion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompletionPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			if fieldErrors, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range fieldErrors {
					errors[fe.Field()] = "failed on " + fe.Tag()
				}
			} else {
				errors["payload"] = err.Error()
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}
