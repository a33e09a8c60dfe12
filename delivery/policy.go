// Package delivery decides how an already-authorized object is served:
// disposition, cache policy by visibility, and the anti-download rules
// for protected video.
package delivery

import (
	"fmt"

	"github.com/eduforge/edu-file-gateway/authz"
	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/fault"
)

const (
	// Public objects are immutable (keys are never reused), so a week
	// of shared caching is safe.
	CacheControlPublic = "public, max-age=604800"
	// Non-public objects stay out of shared caches.
	CacheControlPrivate = "private, max-age=300, must-revalidate"
	// Protected video must never be cached at all.
	CacheControlNoStore = "private, no-store, no-cache, must-revalidate"
)

// Options are the caller's delivery preferences from the query string.
type Options struct {
	Download bool
	Redirect bool
}

// Decision tells the gateway how to serve the bytes.
type Decision struct {
	// Redirect means the gateway may answer with a time-bounded signed
	// URL instead of streaming through itself.
	Redirect bool
	Headers  map[string]string
}

// Decide computes the delivery plan for an authorized (caller, record)
// pair. Read access has already been granted; Decide may still refuse a
// download of protected video, which is a separate permission.
func Decide(caller *authz.Caller, record *entity.FileRecord, opts Options) (*Decision, error) {
	fileName := record.FileName()

	if record.IsVideo() && record.Visibility == entity.VisibilityRestricted {
		if opts.Download {
			if !caller.IsAdmin() && !caller.IsInstructor() {
				return nil, fault.New(fault.KindForbidden, "downloading protected video requires an instructor or admin role")
			}
			return &Decision{
				Headers: map[string]string{
					"Content-Disposition": attachment(fileName),
					"Cache-Control":       CacheControlNoStore,
				},
			}, nil
		}

		// Streamed inline through the gateway on purpose: a signed URL
		// redirect would hand out a directly downloadable link.
		return &Decision{
			Headers: map[string]string{
				"Content-Disposition": inline(fileName),
				"Cache-Control":       CacheControlNoStore,
				"X-Frame-Options":     "SAMEORIGIN",
				"X-Download-Options":  "noopen",
				"Referrer-Policy":     "no-referrer",
			},
		}, nil
	}

	headers := map[string]string{
		"Content-Disposition": inline(fileName),
		"Cache-Control":       CacheControlPrivate,
	}
	if record.Visibility == entity.VisibilityPublic {
		headers["Cache-Control"] = CacheControlPublic
	}
	if opts.Download {
		headers["Content-Disposition"] = attachment(fileName)
	}

	return &Decision{
		Redirect: opts.Redirect && record.Visibility != entity.VisibilityRestricted,
		Headers:  headers,
	}, nil
}

func inline(fileName string) string {
	return fmt.Sprintf("inline; filename=%q", fileName)
}

func attachment(fileName string) string {
	return fmt.Sprintf("attachment; filename=%q", fileName)
}
