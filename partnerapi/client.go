// Package partnerapi is the HTTP client for querying partner learning sites.
package partnerapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduwallet/models"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrPartnerUnreachable marks network failures and non-2xx partner responses.
	// Transient: the caller skips the item and retries on the next scheduled pass.
	ErrPartnerUnreachable = errors.New("partner unreachable")
	// ErrMalformedResponse marks 2xx responses whose body cannot be used.
	ErrMalformedResponse = errors.New("malformed partner response")
	// ErrNoEndpoint marks partners with no URL configured for the requested API.
	ErrNoEndpoint = errors.New("partner endpoint not configured")
)

// LearningProgress is the progress block reported by a partner
type LearningProgress struct {
	CompletionPercentage float64 `json:"completionPercentage"`
	TotalTimeSpent       int64   `json:"totalTimeSpent"` // seconds
	LastAccessed         string  `json:"lastAccessed"`   // RFC3339
}

// CatalogCourse is one course descriptor from a partner catalog
type CatalogCourse struct {
	CourseID    string  `json:"courseId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Credits     float64 `json:"credits"`
}

type progressResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Progress *LearningProgress `json:"progress"`
	} `json:"data"`
	Message string `json:"message"`
}

type catalogResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Courses []CatalogCourse `json:"courses"`
	} `json:"data"`
	Message string `json:"message"`
}

// Client queries partner learning-progress and course-catalog endpoints
type Client struct {
	http *resty.Client
}

// NewClient builds a partner client with a bounded per-request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// GetLearningProgress fetches current progress for one user/course pair from the
// partner's learningProgress endpoint. It never panics past the caller; every
// failure mode is a typed error the scheduler decides how to handle.
func (c *Client) GetLearningProgress(ctx context.Context, partner *models.Partner, userID uint, externalCourseID string) (*LearningProgress, error) {
	if partner.LearningProgressURL == "" {
		return nil, ErrNoEndpoint
	}

	var parsed progressResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"studentId": fmt.Sprintf("%d", userID),
			"courseId":  externalCourseID,
		}).
		SetResult(&parsed).
		Get(partner.LearningProgressURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPartnerUnreachable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrPartnerUnreachable, resp.StatusCode())
	}
	if !parsed.Success || parsed.Data.Progress == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, parsed.Message)
	}
	p := parsed.Data.Progress
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		return nil, fmt.Errorf("%w: completionPercentage %v out of range", ErrMalformedResponse, p.CompletionPercentage)
	}
	return p, nil
}

// GetCourseCatalog fetches the partner's current course catalog
func (c *Client) GetCourseCatalog(ctx context.Context, partner *models.Partner) ([]CatalogCourse, error) {
	if partner.CourseCatalogURL == "" {
		return nil, ErrNoEndpoint
	}

	var parsed catalogResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&parsed).
		Get(partner.CourseCatalogURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPartnerUnreachable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrPartnerUnreachable, resp.StatusCode())
	}
	if !parsed.Success {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, parsed.Message)
	}
	return parsed.Data.Courses, nil
}
