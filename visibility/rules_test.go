package visibility

import (
	"testing"

	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/google/uuid"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		explicit entity.Visibility
		want     entity.Visibility
	}{
		{"public root", "public/banners", "", entity.VisibilityPublic},
		{"public root overrides explicit", "public/banners", entity.VisibilityPrivate, entity.VisibilityPublic},
		{"course public subpath", "courses/abc/public", "", entity.VisibilityPublic},
		{"course videos", "courses/abc/videos", "", entity.VisibilityRestricted},
		{"course resources", "courses/abc/resources", "", entity.VisibilityRestricted},
		{"course videos overrides explicit", "courses/abc/videos", entity.VisibilityPublic, entity.VisibilityRestricted},
		{"explicit wins outside conventions", "users/123", entity.VisibilityPublic, entity.VisibilityPublic},
		{"default private", "users/123", "", entity.VisibilityPrivate},
		{"course root without area", "courses/abc", "", entity.VisibilityPrivate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.dir, tt.explicit); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.dir, tt.explicit, got, tt.want)
			}
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	if !IsPublicPath("public/logo.png") {
		t.Error("public root path should be public")
	}
	if !IsPublicPath("courses/abc/public/cover.jpg") {
		t.Error("course public sub-path should be public")
	}
	if IsPublicPath("courses/abc/videos/lesson1.mp4") {
		t.Error("course video path must not be public")
	}
	if IsPublicPath("users/u1/notes.pdf") {
		t.Error("user namespace must not be public")
	}
}

func TestScopeOf(t *testing.T) {
	scope := ScopeOf("courses/abc/videos/lesson1.mp4")
	if scope == nil {
		t.Fatal("expected a scope for a course path")
	}
	if scope.ResourceType != "course" || scope.ResourceID != "abc" || scope.Area != "videos" {
		t.Errorf("unexpected scope: %+v", scope)
	}

	if ScopeOf("users/u1/notes.pdf") != nil {
		t.Error("user paths are not course-scoped")
	}
	if ScopeOf("courses") != nil {
		t.Error("bare courses prefix has no scope")
	}
}

func TestUserNamespace(t *testing.T) {
	id := uuid.New()
	owner, ok := UserNamespace("users/" + id.String() + "/notes.pdf")
	if !ok || owner != id {
		t.Errorf("UserNamespace = %v, %v; want %v, true", owner, ok, id)
	}

	if _, ok := UserNamespace("courses/abc/videos/x.mp4"); ok {
		t.Error("course path is not a user namespace")
	}
	if _, ok := UserNamespace("users/not-a-uuid/x.txt"); ok {
		t.Error("malformed user id must not resolve")
	}
}

func TestSanitizeDir(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"courses/abc/videos", "courses/abc/videos", false},
		{"/courses/abc//videos/", "courses/abc/videos", false},
		{"courses\\abc\\videos", "courses/abc/videos", false},
		{"../etc/passwd", "", true},
		{"courses/../secret", "", true},
		{"courses/./secret", "", true},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := SanitizeDir(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SanitizeDir(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizeDir(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
