// Package repository provides typed store queries for the reconciliation core,
// keeping the scheduler and reconciler decoupled from gorm's query DSL.
package repository

import (
	"errors"
	"time"

	"eduwallet/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransactionRepo queries and mutates blockchain transaction records
type TransactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// FindPending returns up to limit transactions that still need reconciliation:
// either status is pending or the block number has never been recorded.
func (r *TransactionRepo) FindPending(limit int) ([]models.BlockchainTransaction, error) {
	var txs []models.BlockchainTransaction
	err := r.db.
		Where("(status = ? OR block_number IS NULL) AND is_deleted = false", models.ChainTxStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// MarkConfirmed transitions a transaction out of pending and records its block
// number. The update is conditional on the row still being pending, so a
// non-pending record is never rewritten; the bool reports whether this call
// performed the transition.
func (r *TransactionRepo) MarkConfirmed(txID uint, status models.ChainTxStatus, blockNumber uint64) (bool, error) {
	result := r.db.Model(&models.BlockchainTransaction{}).
		Where("id = ? AND status = ?", txID, models.ChainTxStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"block_number": blockNumber,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ClaimCredit marks a successful transaction as credited. Conditional on the
// marker being unset, so overlapping reconciliation passes cannot both claim
// the same transaction.
func (r *TransactionRepo) ClaimCredit(txID uint) (bool, error) {
	now := time.Now()
	result := r.db.Model(&models.BlockchainTransaction{}).
		Where("id = ? AND status = ? AND credited_at IS NULL", txID, models.ChainTxStatusSuccess).
		Update("credited_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Create stores a new transaction record
func (r *TransactionRepo) Create(tx *models.BlockchainTransaction) error {
	return r.db.Create(tx).Error
}

// FindByID reloads one transaction record
func (r *TransactionRepo) FindByID(txID uint) (*models.BlockchainTransaction, error) {
	var tx models.BlockchainTransaction
	if err := r.db.First(&tx, txID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// EnrollmentRepo queries and mutates enrollment records
type EnrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// FindInProgress returns enrollments eligible for a progress refresh: in
// progress, tied to a partner, with related records eagerly loaded.
func (r *EnrollmentRepo) FindInProgress() ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.
		Where("status = ? AND partner_id IS NOT NULL AND is_deleted = false", models.EnrollmentStatusInProgress).
		Preload("User").
		Preload("Course").
		Preload("Partner").
		Find(&enrollments).Error
	return enrollments, err
}

// OverwriteProgress applies partner-reported progress values. The partner is
// the source of truth for these fields. Reaching 100 percent also moves the
// enrollment to completed, keeping the progress/status invariant.
func (r *EnrollmentRepo) OverwriteProgress(enrollmentID uint, percent float64, timeSpentSeconds int64, lastAccessed *time.Time) error {
	updates := map[string]interface{}{
		"progress_percent":   percent,
		"time_spent_seconds": timeSpentSeconds,
		"last_accessed_at":   lastAccessed,
	}
	if percent >= 100 {
		now := time.Now()
		updates["progress_percent"] = float64(100)
		updates["status"] = models.EnrollmentStatusCompleted
		updates["completed_at"] = now
	}
	return r.db.Model(&models.Enrollment{}).
		Where("id = ?", enrollmentID).
		Updates(updates).Error
}

// Complete marks an enrollment finished on a partner completion event
func (r *EnrollmentRepo) Complete(enrollmentID uint, completedAt time.Time) error {
	return r.db.Model(&models.Enrollment{}).
		Where("id = ? AND status <> ?", enrollmentID, models.EnrollmentStatusCompleted).
		Updates(map[string]interface{}{
			"status":           models.EnrollmentStatusCompleted,
			"progress_percent": float64(100),
			"completed_at":     completedAt,
		}).Error
}

// CreateCompleted stores an enrollment that arrives already finished, for
// completion events about courses the student never started locally.
func (r *EnrollmentRepo) CreateCompleted(enrollment *models.Enrollment) error {
	return r.db.Create(enrollment).Error
}

// FindForWebhook locates the enrollment a completion event refers to
func (r *EnrollmentRepo) FindForWebhook(userID uint, partnerID uint, externalCourseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.user_id = ? AND enrollments.partner_id = ? AND courses.external_course_id = ? AND enrollments.is_deleted = false",
			userID, partnerID, externalCourseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// PartnerRepo queries and mutates partner records
type PartnerRepo struct {
	db *gorm.DB
}

func NewPartnerRepo(db *gorm.DB) *PartnerRepo {
	return &PartnerRepo{db: db}
}

// FindByPartnerID looks a partner up by its external identifier
func (r *PartnerRepo) FindByPartnerID(partnerID string) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.Where("partner_id = ? AND is_deleted = false", partnerID).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// FindActiveWithCatalog returns active partners that expose a catalog endpoint
func (r *PartnerRepo) FindActiveWithCatalog() ([]models.Partner, error) {
	var partners []models.Partner
	err := r.db.
		Where("status = ? AND course_catalog_url <> '' AND is_deleted = false", models.PartnerStatusActive).
		Find(&partners).Error
	return partners, err
}

// TouchLastSync records a successful sync with the partner
func (r *PartnerRepo) TouchLastSync(id uint, at time.Time) error {
	return r.db.Model(&models.Partner{}).
		Where("id = ?", id).
		Update("last_sync_at", at).Error
}

// WalletRepo reads the admin wallet conversion price
type WalletRepo struct {
	db *gorm.DB
}

func NewWalletRepo(db *gorm.DB) *WalletRepo {
	return &WalletRepo{db: db}
}

// LatestPrice returns the most recent PZO->EDU conversion price
func (r *WalletRepo) LatestPrice() (float64, error) {
	var wallet models.AdminWallet
	err := r.db.
		Where("is_deleted = false").
		Order("created_at desc").
		First(&wallet).Error
	if err != nil {
		return 0, err
	}
	return wallet.EduPrice, nil
}

// UserRepo mutates user reward statistics and the action log
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// IncrementRewardPoints applies an atomic in-database increment, avoiding
// lost updates under concurrent crediting.
func (r *UserRepo) IncrementRewardPoints(userID uint, amount float64) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("reward_points", gorm.Expr("reward_points + ?", amount)).Error
}

// LogAction appends an entry to the user action log
func (r *UserRepo) LogAction(userID uint, actionType models.UserActionType, details map[string]interface{}) error {
	action := models.UserAction{
		ActionID:   uuid.NewString(),
		UserID:     userID,
		ActionType: actionType,
		Details:    datatypes.JSONMap(details),
	}
	return r.db.Create(&action).Error
}

// FindByID reloads one user record
func (r *UserRepo) FindByID(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CourseRepo upserts catalog courses reported by partners
type CourseRepo struct {
	db *gorm.DB
}

func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// FindByExternalID looks a partner course up by its external identifier
func (r *CourseRepo) FindByExternalID(partnerID uint, externalCourseID string) (*models.Course, error) {
	var course models.Course
	err := r.db.
		Where("partner_id = ? AND external_course_id = ? AND is_deleted = false", partnerID, externalCourseID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// UpsertByExternalID creates or refreshes a partner course keyed by
// (partner id, external course id).
func (r *CourseRepo) UpsertByExternalID(partnerID uint, externalCourseID string, course models.Course) error {
	var existing models.Course
	err := r.db.
		Where("partner_id = ? AND external_course_id = ? AND is_deleted = false", partnerID, externalCourseID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		course.PartnerID = partnerID
		course.ExternalCourseID = externalCourseID
		return r.db.Create(&course).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"title":       course.Title,
		"description": course.Description,
		"category":    course.Category,
		"level":       course.Level,
		"credits":     course.Credits,
	}).Error
}
