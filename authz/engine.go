// Package authz decides whether a caller may read a stored object.
package authz

import (
	"context"
	"fmt"

	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/visibility"
	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// Caller is the authenticated principal of a request. A nil *Caller is
// an anonymous request.
type Caller struct {
	ID   uuid.UUID
	Role string
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

func (c *Caller) IsInstructor() bool {
	return c != nil && c.Role == RoleInstructor
}

// CourseDirectory answers ownership and enrollment questions about a
// course. It is a read-only collaborator; the engine performs no other
// I/O.
type CourseDirectory interface {
	IsOwner(ctx context.Context, courseID string, userID uuid.UUID) (bool, error)
	IsEnrolled(ctx context.Context, courseID string, userID uuid.UUID) (bool, error)
}

type Engine struct {
	courses CourseDirectory
}

func NewEngine(courses CourseDirectory) *Engine {
	return &Engine{courses: courses}
}

// CanAccess evaluates the access rules in order; the first matching
// rule wins and later rules never override an earlier allow.
//
//  1. public visibility, or a path under a public root/prefix: allow
//  2. anonymous caller: deny
//  3. admin: allow
//  4. record owner, or the caller's own namespace: allow
//  5. course-scoped path and the caller owns the course: allow
//  6. protected course area and the caller is enrolled: allow
//  7. deny
func (e *Engine) CanAccess(ctx context.Context, caller *Caller, record *entity.FileRecord) (bool, error) {
	if record.Visibility == entity.VisibilityPublic || visibility.IsPublicPath(record.Path) {
		return true, nil
	}

	if caller == nil {
		return false, nil
	}

	if caller.IsAdmin() {
		return true, nil
	}

	if record.OwnerID != nil && *record.OwnerID == caller.ID {
		return true, nil
	}
	if owner, ok := visibility.UserNamespace(record.Path); ok && owner == caller.ID {
		return true, nil
	}

	scope := visibility.ScopeOf(record.Path)
	if scope == nil && record.ResourceType == "course" && record.ResourceID != "" {
		// Records may be associated with a course without living under
		// the courses/ prefix.
		scope = &visibility.Scope{ResourceType: record.ResourceType, ResourceID: record.ResourceID}
	}
	if scope == nil {
		return false, nil
	}

	isOwner, err := e.courses.IsOwner(ctx, scope.ResourceID, caller.ID)
	if err != nil {
		return false, fmt.Errorf("course ownership lookup failed: %w", err)
	}
	if isOwner {
		return true, nil
	}

	if visibility.IsProtectedArea(scope.Area) {
		enrolled, err := e.courses.IsEnrolled(ctx, scope.ResourceID, caller.ID)
		if err != nil {
			return false, fmt.Errorf("course enrollment lookup failed: %w", err)
		}
		if enrolled {
			return true, nil
		}
	}

	return false, nil
}
