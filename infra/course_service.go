package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eduforge/edu-file-gateway/config"
	"github.com/google/uuid"
)

const membershipCacheTTL = 5 * time.Minute

// CourseService asks the course backend whether a user owns or is
// enrolled in a course. Answers are cached in Redis so the hot
// retrieval path does not hammer the course backend.
type CourseService struct {
	CourseServiceURL string
	PrivateKey       string

	client *http.Client
	cache  *RedisClient
}

// Membership is the course backend's answer for one (course, user)
// pair.
type Membership struct {
	IsOwner    bool `json:"is_owner"`
	IsEnrolled bool `json:"is_enrolled"`
}

func InitCourseService(cfg *config.EnvConfig, cache *RedisClient) *CourseService {
	url := cfg.ExternalService.CourseServiceURL
	if url == "" {
		panic("Course service URL is not configured")
	}

	return &CourseService{
		CourseServiceURL: url,
		PrivateKey:       cfg.PrivateKey,
		client:           &http.Client{Timeout: 5 * time.Second},
		cache:            cache,
	}
}

func (s *CourseService) IsOwner(ctx context.Context, courseID string, userID uuid.UUID) (bool, error) {
	membership, err := s.membership(ctx, courseID, userID)
	if err != nil {
		return false, err
	}
	return membership.IsOwner, nil
}

func (s *CourseService) IsEnrolled(ctx context.Context, courseID string, userID uuid.UUID) (bool, error) {
	membership, err := s.membership(ctx, courseID, userID)
	if err != nil {
		return false, err
	}
	return membership.IsEnrolled, nil
}

func (s *CourseService) membership(ctx context.Context, courseID string, userID uuid.UUID) (*Membership, error) {
	cacheKey := fmt.Sprintf("course:membership:%s:%s", courseID, userID)

	if s.cache != nil {
		var cached Membership
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
		// A cache miss or a cache failure both fall through to the
		// course backend.
	}

	url := fmt.Sprintf("%s/api/v1/courses/%s/membership/%s", s.CourseServiceURL, courseID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Private-Key", s.PrivateKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("course service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown course or user: no rights either way.
		return &Membership{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("course service returned %d: %s", resp.StatusCode, raw)
	}

	var membership Membership
	if err := json.NewDecoder(resp.Body).Decode(&membership); err != nil {
		return nil, fmt.Errorf("failed to decode course service response: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, membership, membershipCacheTTL)
	}

	return &membership, nil
}
