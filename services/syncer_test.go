package services

import (
	"context"
	"testing"

	"eduwallet/models"
	"eduwallet/partnerapi"
	"eduwallet/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePartnerAPI is a scriptable PartnerClient for tests
type fakePartnerAPI struct {
	progress     map[string]*partnerapi.LearningProgress // keyed by external course id
	progressErrs map[string]error
	catalogs     map[string][]partnerapi.CatalogCourse // keyed by partner id
	catalogErrs  map[string]error
	calls        int
}

func newFakePartnerAPI() *fakePartnerAPI {
	return &fakePartnerAPI{
		progress:     make(map[string]*partnerapi.LearningProgress),
		progressErrs: make(map[string]error),
		catalogs:     make(map[string][]partnerapi.CatalogCourse),
		catalogErrs:  make(map[string]error),
	}
}

func (f *fakePartnerAPI) GetLearningProgress(ctx context.Context, partner *models.Partner, userID uint, externalCourseID string) (*partnerapi.LearningProgress, error) {
	f.calls++
	if err, ok := f.progressErrs[externalCourseID]; ok {
		return nil, err
	}
	if p, ok := f.progress[externalCourseID]; ok {
		return p, nil
	}
	return nil, partnerapi.ErrMalformedResponse
}

func (f *fakePartnerAPI) GetCourseCatalog(ctx context.Context, partner *models.Partner) ([]partnerapi.CatalogCourse, error) {
	if err, ok := f.catalogErrs[partner.PartnerID]; ok {
		return nil, err
	}
	return f.catalogs[partner.PartnerID], nil
}

func newSyncerFixture(t *testing.T) (*gorm.DB, *fakePartnerAPI, *Syncer) {
	t.Helper()
	db := newTestDB(t)
	api := newFakePartnerAPI()
	syncer := NewSyncer(api,
		repository.NewEnrollmentRepo(db),
		repository.NewPartnerRepo(db),
		repository.NewCourseRepo(db))
	return db, api, syncer
}

func createPartner(t *testing.T, db *gorm.DB, partnerID string, status models.PartnerStatus) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		PartnerID:           partnerID,
		Name:                partnerID,
		SharedSecret:        "secret",
		Status:              status,
		LearningProgressURL: "https://" + partnerID + ".example.com/progress",
		CourseCatalogURL:    "https://" + partnerID + ".example.com/catalog",
		// High limit keeps the inter-call pacing negligible in tests
		RateLimitPerMinute: 60000,
		RateLimitBurst:     10,
	}
	require.NoError(t, db.Create(partner).Error)
	return partner
}

func createInProgressEnrollment(t *testing.T, db *gorm.DB, user *models.User, partner *models.Partner, externalCourseID string, percent float64) *models.Enrollment {
	t.Helper()
	course := &models.Course{Title: externalCourseID, PartnerID: partner.ID, ExternalCourseID: externalCourseID}
	require.NoError(t, db.Create(course).Error)

	enrollment := &models.Enrollment{
		UserID:          user.ID,
		CourseID:        course.ID,
		PartnerID:       &partner.ID,
		Status:          models.EnrollmentStatusInProgress,
		ProgressPercent: percent,
	}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

func TestSyncProgressPartnerIsSourceOfTruth(t *testing.T) {
	db, api, syncer := newSyncerFixture(t)
	user := createUser(t, db, "student@example.com")
	partner := createPartner(t, db, "codeacademy", models.PartnerStatusActive)
	enrollment := createInProgressEnrollment(t, db, user, partner, "go-101", 40)

	api.progress["go-101"] = &partnerapi.LearningProgress{
		CompletionPercentage: 75,
		TotalTimeSpent:       5400,
		LastAccessed:         "2026-03-01T10:00:00Z",
	}

	updated, err := syncer.SyncProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 75.0, reloaded.ProgressPercent, "local 40 overwritten by partner 75")
	assert.Equal(t, int64(5400), reloaded.TimeSpentSeconds)
	require.NotNil(t, reloaded.LastAccessedAt)
	assert.Equal(t, models.EnrollmentStatusInProgress, reloaded.Status)
}

func TestSyncProgressCompletionKeepsInvariant(t *testing.T) {
	db, api, syncer := newSyncerFixture(t)
	user := createUser(t, db, "student@example.com")
	partner := createPartner(t, db, "codeacademy", models.PartnerStatusActive)
	enrollment := createInProgressEnrollment(t, db, user, partner, "go-101", 90)

	api.progress["go-101"] = &partnerapi.LearningProgress{CompletionPercentage: 100, TotalTimeSpent: 9000}

	_, err := syncer.SyncProgress(context.Background())
	require.NoError(t, err)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentStatusCompleted, reloaded.Status)
	assert.Equal(t, 100.0, reloaded.ProgressPercent)
	assert.NotNil(t, reloaded.CompletedAt)
}

func TestSyncProgressBulkheadIsolation(t *testing.T) {
	db, api, syncer := newSyncerFixture(t)
	user := createUser(t, db, "student@example.com")
	partner := createPartner(t, db, "codeacademy", models.PartnerStatusActive)
	e1 := createInProgressEnrollment(t, db, user, partner, "go-101", 10)
	e2 := createInProgressEnrollment(t, db, user, partner, "go-102", 20)
	e3 := createInProgressEnrollment(t, db, user, partner, "go-103", 30)

	api.progress["go-101"] = &partnerapi.LearningProgress{CompletionPercentage: 11}
	api.progressErrs["go-102"] = partnerapi.ErrPartnerUnreachable
	api.progress["go-103"] = &partnerapi.LearningProgress{CompletionPercentage: 33}

	updated, err := syncer.SyncProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	var r1, r2, r3 models.Enrollment
	require.NoError(t, db.First(&r1, e1.ID).Error)
	require.NoError(t, db.First(&r2, e2.ID).Error)
	require.NoError(t, db.First(&r3, e3.ID).Error)
	assert.Equal(t, 11.0, r1.ProgressPercent)
	assert.Equal(t, 20.0, r2.ProgressPercent, "failed enrollment keeps local state")
	assert.Equal(t, 33.0, r3.ProgressPercent)
}

func TestSyncProgressSkipsInactivePartners(t *testing.T) {
	db, api, syncer := newSyncerFixture(t)
	user := createUser(t, db, "student@example.com")
	suspended := createPartner(t, db, "suspended-site", models.PartnerStatusSuspended)
	createInProgressEnrollment(t, db, user, suspended, "go-201", 40)

	noEndpoint := createPartner(t, db, "no-endpoint", models.PartnerStatusActive)
	require.NoError(t, db.Model(noEndpoint).Update("learning_progress_url", "").Error)
	createInProgressEnrollment(t, db, user, noEndpoint, "go-202", 40)

	updated, err := syncer.SyncProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, api.calls, "no partner API call for inactive or unconfigured partners")
}

func TestSyncCatalogsUpsertsAndTouchesLastSync(t *testing.T) {
	db, api, syncer := newSyncerFixture(t)
	partner := createPartner(t, db, "codeacademy", models.PartnerStatusActive)

	api.catalogs["codeacademy"] = []partnerapi.CatalogCourse{
		{CourseID: "go-101", Name: "Intro to Go", Category: "programming", Level: "beginner", Credits: 5},
		{CourseID: "go-201", Name: "Concurrency", Category: "programming", Level: "advanced", Credits: 8},
	}

	synced, err := syncer.SyncCatalogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	var courses []models.Course
	require.NoError(t, db.Where("partner_id = ?", partner.ID).Order("external_course_id").Find(&courses).Error)
	require.Len(t, courses, 2)
	assert.Equal(t, "Intro to Go", courses[0].Title)

	// Second sync with an updated name refreshes in place instead of duplicating
	api.catalogs["codeacademy"][0].Name = "Introduction to Go"
	_, err = syncer.SyncCatalogs(context.Background())
	require.NoError(t, err)

	require.NoError(t, db.Where("partner_id = ?", partner.ID).Order("external_course_id").Find(&courses).Error)
	require.Len(t, courses, 2)
	assert.Equal(t, "Introduction to Go", courses[0].Title)

	var reloaded models.Partner
	require.NoError(t, db.First(&reloaded, partner.ID).Error)
	assert.NotNil(t, reloaded.LastSyncAt)
}

func TestSyncCatalogsBulkheadIsolation(t *testing.T) {
	db, api, syncer := newSyncerFixture(t)
	p1 := createPartner(t, db, "works", models.PartnerStatusActive)
	createPartner(t, db, "broken", models.PartnerStatusActive)
	createPartner(t, db, "inactive-site", models.PartnerStatusInactive)

	api.catalogs["works"] = []partnerapi.CatalogCourse{{CourseID: "c1", Name: "Course"}}
	api.catalogErrs["broken"] = partnerapi.ErrPartnerUnreachable

	synced, err := syncer.SyncCatalogs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, synced, "only the reachable active partner counts")

	var count int64
	require.NoError(t, db.Model(&models.Course{}).Where("partner_id = ?", p1.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSyncProgressNoPartnersNoWork(t *testing.T) {
	_, api, syncer := newSyncerFixture(t)
	updated, err := syncer.SyncProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
	assert.Equal(t, 0, api.calls)
}
