package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/google/uuid"
)

type fakeCourses struct {
	owners   map[string]uuid.UUID
	enrolled map[string][]uuid.UUID
	err      error
}

func (f *fakeCourses) IsOwner(_ context.Context, courseID string, userID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.owners[courseID] == userID, nil
}

func (f *fakeCourses) IsEnrolled(_ context.Context, courseID string, userID uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, id := range f.enrolled[courseID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func record(path string, vis entity.Visibility, owner *uuid.UUID) *entity.FileRecord {
	return &entity.FileRecord{Path: path, Visibility: vis, OwnerID: owner}
}

func TestCanAccess(t *testing.T) {
	ownerID := uuid.New()
	instructorID := uuid.New()
	enrolledID := uuid.New()
	outsiderID := uuid.New()
	adminID := uuid.New()

	courses := &fakeCourses{
		owners:   map[string]uuid.UUID{"abc": instructorID},
		enrolled: map[string][]uuid.UUID{"abc": {enrolledID}},
	}
	engine := NewEngine(courses)

	admin := &Caller{ID: adminID, Role: RoleAdmin}
	instructor := &Caller{ID: instructorID, Role: RoleInstructor}
	enrolled := &Caller{ID: enrolledID, Role: RoleStudent}
	outsider := &Caller{ID: outsiderID, Role: RoleStudent}
	owner := &Caller{ID: ownerID, Role: RoleStudent}

	publicFile := record("public/logo.png", entity.VisibilityPublic, nil)
	coursePublic := record("courses/abc/public/cover.jpg", entity.VisibilityPublic, &instructorID)
	courseVideo := record("courses/abc/videos/lesson1.mp4", entity.VisibilityRestricted, &instructorID)
	courseNotes := record("courses/abc/notes/draft.pdf", entity.VisibilityPrivate, &instructorID)
	privateFile := record("users/"+ownerID.String()+"/cv.pdf", entity.VisibilityPrivate, &ownerID)
	orphanPrivate := record("users/"+ownerID.String()+"/old.pdf", entity.VisibilityPrivate, nil)

	tests := []struct {
		name   string
		caller *Caller
		record *entity.FileRecord
		want   bool
	}{
		{"anonymous reads public", nil, publicFile, true},
		{"anonymous reads course public", nil, coursePublic, true},
		{"anonymous denied restricted", nil, courseVideo, false},
		{"anonymous denied private", nil, privateFile, false},

		{"admin reads everything", admin, courseVideo, true},
		{"admin reads private", admin, privateFile, true},

		{"owner reads own file", owner, privateFile, true},
		{"namespace grants orphaned record", owner, orphanPrivate, true},
		{"outsider denied private", outsider, privateFile, false},

		{"course owner reads video", instructor, courseVideo, true},
		{"course owner reads non-protected area", instructor, courseNotes, true},
		{"enrolled reads protected video", enrolled, courseVideo, true},
		{"enrolled denied outside protected areas", enrolled, courseNotes, false},
		{"outsider denied course video", outsider, courseVideo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.CanAccess(context.Background(), tt.caller, tt.record)
			if err != nil {
				t.Fatalf("CanAccess: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanAccess = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccessScopeFromRecordFields(t *testing.T) {
	instructorID := uuid.New()
	courses := &fakeCourses{owners: map[string]uuid.UUID{"abc": instructorID}}
	engine := NewEngine(courses)

	// Course-scoped record stored outside the courses/ prefix.
	rec := &entity.FileRecord{
		Path:         "archive/syllabus.pdf",
		Visibility:   entity.VisibilityPrivate,
		ResourceType: "course",
		ResourceID:   "abc",
	}

	ok, err := engine.CanAccess(context.Background(), &Caller{ID: instructorID, Role: RoleInstructor}, rec)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if !ok {
		t.Error("course owner should reach records scoped by resource fields")
	}
}

func TestCanAccessDirectoryError(t *testing.T) {
	courses := &fakeCourses{err: errors.New("course service down")}
	engine := NewEngine(courses)

	rec := record("courses/abc/videos/lesson1.mp4", entity.VisibilityRestricted, nil)
	ok, err := engine.CanAccess(context.Background(), &Caller{ID: uuid.New(), Role: RoleStudent}, rec)
	if err == nil {
		t.Fatal("expected a lookup error")
	}
	if ok {
		t.Error("lookup failures must not grant access")
	}
}
