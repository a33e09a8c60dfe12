// Package visibility holds the directory-convention rules that decide
// the visibility class of a storage path. The upload pipeline and the
// authorization engine both consult the same ordered table so the two
// cannot drift apart.
package visibility

import (
	"strings"

	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/fault"
	"github.com/google/uuid"
)

// Scope identifies the course area a storage path belongs to.
type Scope struct {
	ResourceType string
	ResourceID   string
	Area         string
}

// Rule matches path segments against a directory convention. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	Name       string
	Matches    func(segs []string) bool
	Visibility entity.Visibility
}

const (
	AreaPublic    = "public"
	AreaVideos    = "videos"
	AreaResources = "resources"
)

var Rules = []Rule{
	{
		Name: "public-root",
		Matches: func(segs []string) bool {
			return len(segs) > 0 && segs[0] == "public"
		},
		Visibility: entity.VisibilityPublic,
	},
	{
		Name: "course-public",
		Matches: func(segs []string) bool {
			return len(segs) >= 3 && segs[0] == "courses" && segs[2] == AreaPublic
		},
		Visibility: entity.VisibilityPublic,
	},
	{
		Name: "course-protected",
		Matches: func(segs []string) bool {
			return len(segs) >= 3 && segs[0] == "courses" &&
				(segs[2] == AreaVideos || segs[2] == AreaResources)
		},
		Visibility: entity.VisibilityRestricted,
	},
}

// Resolve returns the effective visibility for a directory. Directory
// conventions take precedence over the caller-supplied value; absent
// both, files are private.
func Resolve(dir string, explicit entity.Visibility) entity.Visibility {
	segs := segments(dir)
	for _, rule := range Rules {
		if rule.Matches(segs) {
			return rule.Visibility
		}
	}
	if explicit.Valid() {
		return explicit
	}
	return entity.VisibilityPrivate
}

// IsPublicPath reports whether a path falls under a public root or a
// course public sub-path, regardless of what the metadata says.
func IsPublicPath(path string) bool {
	segs := segments(path)
	for _, rule := range Rules {
		if rule.Matches(segs) {
			return rule.Visibility == entity.VisibilityPublic
		}
	}
	return false
}

// ScopeOf parses a course-scoped path (courses/<id>/<area>/...) into a
// Scope, or nil when the path is not resource-scoped.
func ScopeOf(path string) *Scope {
	segs := segments(path)
	if len(segs) < 2 || segs[0] != "courses" || segs[1] == "" {
		return nil
	}
	scope := &Scope{ResourceType: "course", ResourceID: segs[1]}
	if len(segs) >= 3 {
		scope.Area = segs[2]
	}
	return scope
}

// IsProtectedArea reports whether a course area grants access by
// enrollment rather than by public visibility.
func IsProtectedArea(area string) bool {
	return area == AreaVideos || area == AreaResources
}

// UserNamespace returns the owner of a users/<uuid>/... path.
func UserNamespace(path string) (uuid.UUID, bool) {
	segs := segments(path)
	if len(segs) < 2 || segs[0] != "users" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(segs[1])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SanitizeDir normalizes a target directory and rejects traversal
// segments. The returned directory has no leading/trailing slashes.
func SanitizeDir(dir string) (string, error) {
	return sanitize(dir, "directory")
}

// SanitizePath normalizes a full storage key for retrieval, with the
// same traversal rules as SanitizeDir.
func SanitizePath(path string) (string, error) {
	return sanitize(path, "path")
}

func sanitize(p, what string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.Trim(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if p == "" {
		return "", fault.Newf(fault.KindValidation, "%s is required", what)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." {
			return "", fault.Newf(fault.KindValidation, "%s cannot contain traversal segments", what)
		}
	}
	return p, nil
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
