package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"eduwallet/models"
	"eduwallet/partnerapi"
	"eduwallet/repository"
	"eduwallet/utils"
)

// PartnerClient is the outbound partner API surface the syncer depends on
type PartnerClient interface {
	GetLearningProgress(ctx context.Context, partner *models.Partner, userID uint, externalCourseID string) (*partnerapi.LearningProgress, error)
	GetCourseCatalog(ctx context.Context, partner *models.Partner) ([]partnerapi.CatalogCourse, error)
}

// Syncer keeps enrollment progress and partner course catalogs current by
// polling partner systems. The partner is the source of truth for the fields
// it reports.
type Syncer struct {
	partners    PartnerClient
	enrollRepo  *repository.EnrollmentRepo
	partnerRepo *repository.PartnerRepo
	courseRepo  *repository.CourseRepo
}

func NewSyncer(partners PartnerClient, enrollRepo *repository.EnrollmentRepo, partnerRepo *repository.PartnerRepo, courseRepo *repository.CourseRepo) *Syncer {
	return &Syncer{
		partners:    partners,
		enrollRepo:  enrollRepo,
		partnerRepo: partnerRepo,
		courseRepo:  courseRepo,
	}
}

// SyncProgress refreshes progress for all in-flight enrollments tied to a
// partner. Each enrollment is handled independently; a partner being down for
// one student never aborts the rest of the run.
func (s *Syncer) SyncProgress(ctx context.Context) (int, error) {
	enrollments, err := s.enrollRepo.FindInProgress()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch in-progress enrollments: %v", err)
	}
	if len(enrollments) == 0 {
		return 0, nil
	}
	log.Printf("[PROGRESS-SYNC] refreshing %d enrollments", len(enrollments))

	updated := 0
	_, failures := utils.ForEachIsolated("PROGRESS-SYNC", enrollments, func(enrollment models.Enrollment) error {
		didUpdate, err := s.syncOneEnrollment(ctx, &enrollment)
		if didUpdate {
			updated++
		}
		return err
	})

	if len(failures) > 0 {
		log.Printf("[PROGRESS-SYNC] %d of %d enrollments failed this cycle", len(failures), len(enrollments))
	}
	return updated, nil
}

func (s *Syncer) syncOneEnrollment(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	partner := enrollment.Partner
	if partner.ID == 0 || partner.Status != models.PartnerStatusActive {
		return false, nil
	}
	if partner.LearningProgressURL == "" {
		return false, nil
	}

	progress, err := s.partners.GetLearningProgress(ctx, &partner, enrollment.UserID, enrollment.Course.ExternalCourseID)
	if err != nil {
		return false, err
	}

	var lastAccessed *time.Time
	if progress.LastAccessed != "" {
		if ts, err := time.Parse(time.RFC3339, progress.LastAccessed); err == nil {
			lastAccessed = &ts
		}
	}

	// Partner-reported values overwrite local state unconditionally
	if err := s.enrollRepo.OverwriteProgress(enrollment.ID, progress.CompletionPercentage, progress.TotalTimeSpent, lastAccessed); err != nil {
		return false, fmt.Errorf("failed to persist progress for enrollment %d: %v", enrollment.ID, err)
	}

	// Respect the partner's polling rate between sequential calls
	s.pace(ctx, &partner)
	return true, nil
}

// SyncCatalogs refreshes the catalogs of all active partners exposing a
// courseCatalog endpoint, upserting courses by external course id.
func (s *Syncer) SyncCatalogs(ctx context.Context) (int, error) {
	partners, err := s.partnerRepo.FindActiveWithCatalog()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch partners: %v", err)
	}
	if len(partners) == 0 {
		return 0, nil
	}
	log.Printf("[CATALOG-SYNC] syncing %d partner catalogs", len(partners))

	synced, failures := utils.ForEachIsolated("CATALOG-SYNC", partners, func(partner models.Partner) error {
		courses, err := s.partners.GetCourseCatalog(ctx, &partner)
		if err != nil {
			return err
		}

		for _, course := range courses {
			record := models.Course{
				Title:       course.Name,
				Description: course.Description,
				Category:    course.Category,
				Level:       course.Level,
				Credits:     course.Credits,
			}
			if err := s.courseRepo.UpsertByExternalID(partner.ID, course.CourseID, record); err != nil {
				log.Printf("[CATALOG-SYNC] partner %s: upsert of course %s failed: %v", partner.PartnerID, course.CourseID, err)
			}
		}

		if err := s.partnerRepo.TouchLastSync(partner.ID, time.Now()); err != nil {
			log.Printf("[CATALOG-SYNC] partner %s: failed to record sync time: %v", partner.PartnerID, err)
		}
		return nil
	})

	if len(failures) > 0 {
		log.Printf("[CATALOG-SYNC] %d of %d partners failed this cycle", len(failures), len(partners))
	}
	return synced, nil
}

// pace sleeps long enough between calls to stay inside the partner's
// per-minute rate limit. Sequential processing makes simple spacing enough.
func (s *Syncer) pace(ctx context.Context, partner *models.Partner) {
	if partner.RateLimitPerMinute <= 0 {
		return
	}
	spacing := time.Minute / time.Duration(partner.RateLimitPerMinute)
	_ = utils.SleepWithContext(ctx, spacing)
}
