package partnerapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eduwallet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLearningProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("studentId"))
		assert.Equal(t, "go-101", r.URL.Query().Get("courseId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"progress":{"completionPercentage":75,"totalTimeSpent":5400,"lastAccessed":"2026-03-01T10:00:00Z"}}}`))
	}))
	defer srv.Close()

	client := NewClient(2 * time.Second)
	partner := &models.Partner{LearningProgressURL: srv.URL}

	progress, err := client.GetLearningProgress(context.Background(), partner, 7, "go-101")
	require.NoError(t, err)
	assert.Equal(t, 75.0, progress.CompletionPercentage)
	assert.Equal(t, int64(5400), progress.TotalTimeSpent)
}

func TestGetLearningProgressFailures(t *testing.T) {
	client := NewClient(2 * time.Second)

	t.Run("no endpoint configured", func(t *testing.T) {
		_, err := client.GetLearningProgress(context.Background(), &models.Partner{}, 1, "c")
		assert.ErrorIs(t, err, ErrNoEndpoint)
	})

	t.Run("non-2xx response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := client.GetLearningProgress(context.Background(), &models.Partner{LearningProgressURL: srv.URL}, 1, "c")
		assert.ErrorIs(t, err, ErrPartnerUnreachable)
	})

	t.Run("network failure", func(t *testing.T) {
		_, err := client.GetLearningProgress(context.Background(), &models.Partner{LearningProgressURL: "http://127.0.0.1:1"}, 1, "c")
		assert.ErrorIs(t, err, ErrPartnerUnreachable)
	})

	t.Run("missing progress block", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"data":{}}`))
		}))
		defer srv.Close()

		_, err := client.GetLearningProgress(context.Background(), &models.Partner{LearningProgressURL: srv.URL}, 1, "c")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("out of range percentage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"success":true,"data":{"progress":{"completionPercentage":140}}}`))
		}))
		defer srv.Close()

		_, err := client.GetLearningProgress(context.Background(), &models.Partner{LearningProgressURL: srv.URL}, 1, "c")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestGetCourseCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"courses":[{"courseId":"go-101","name":"Intro to Go","credits":5}]}}`))
	}))
	defer srv.Close()

	client := NewClient(2 * time.Second)
	courses, err := client.GetCourseCatalog(context.Background(), &models.Partner{CourseCatalogURL: srv.URL})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "go-101", courses[0].CourseID)
	assert.Equal(t, 5.0, courses[0].Credits)
}
