// Package upload implements the file ingestion pipeline: validation,
// visibility resolution, key generation, blob write and metadata
// upsert.
package upload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eduforge/edu-file-gateway/authz"
	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/fault"
	"github.com/eduforge/edu-file-gateway/visibility"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BlobStore is the write side of the object backend.
type BlobStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// MetadataStore persists FileRecords keyed by path.
type MetadataStore interface {
	Upsert(ctx context.Context, record *entity.FileRecord) error
}

// Logger is the subset of the infra logger the pipeline needs.
type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	WarningWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

// Caller-declared MIME types accepted by the gateway.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/svg+xml": {},

	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},

	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},

	"audio/mpeg": {},
	"audio/wav":  {},
	"audio/ogg":  {},
}

func AllowedContentType(contentType string) bool {
	// Strip parameters such as "; charset=utf-8".
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	_, ok := allowedContentTypes[strings.TrimSpace(strings.ToLower(contentType))]
	return ok
}

type Options struct {
	MaxFileSize   int64
	PublicBaseURL string
}

type Pipeline struct {
	blobs         BlobStore
	records       MetadataStore
	courses       authz.CourseDirectory
	logger        Logger
	maxFileSize   int64
	publicBaseURL string
}

func NewPipeline(blobs BlobStore, records MetadataStore, courses authz.CourseDirectory, logger Logger, opts Options) *Pipeline {
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = 100 << 20
	}
	return &Pipeline{
		blobs:         blobs,
		records:       records,
		courses:       courses,
		logger:        logger,
		maxFileSize:   opts.MaxFileSize,
		publicBaseURL: strings.TrimSuffix(opts.PublicBaseURL, "/"),
	}
}

// Request carries one incoming file and the caller's declared intent.
type Request struct {
	Body         io.Reader
	Size         int64
	FileName     string
	ContentType  string
	Directory    string
	Visibility   entity.Visibility // optional, "" lets directory rules decide
	ResourceID   string
	ResourceType string
	Metadata     map[string]interface{}
	Caller       *authz.Caller
}

type Result struct {
	Key        string
	URL        string
	FileName   string
	Size       int64
	Visibility entity.Visibility
}

// Upload validates the request, resolves effective visibility, writes
// the blob and upserts the metadata record. The blob is written first;
// a metadata failure after a successful write is logged as a
// consistency warning and the upload still succeeds.
func (p *Pipeline) Upload(ctx context.Context, req Request) (*Result, error) {
	if req.Caller == nil {
		return nil, fault.New(fault.KindUnauthenticated, "authentication required")
	}
	if req.Size <= 0 {
		return nil, fault.New(fault.KindValidation, "file cannot be empty")
	}
	if req.Size > p.maxFileSize {
		return nil, fault.Newf(fault.KindTooLarge, "file size %d exceeds the maximum of %d bytes", req.Size, p.maxFileSize)
	}
	if !AllowedContentType(req.ContentType) {
		return nil, fault.Newf(fault.KindUnsupportedType, "content type %q is not allowed", req.ContentType)
	}
	if req.Visibility != "" && !req.Visibility.Valid() {
		return nil, fault.Newf(fault.KindValidation, "invalid visibility %q", req.Visibility)
	}

	dir, err := visibility.SanitizeDir(req.Directory)
	if err != nil {
		return nil, err
	}

	vis := visibility.Resolve(dir, req.Visibility)

	resourceID, resourceType := req.ResourceID, req.ResourceType
	if scope := visibility.ScopeOf(dir); scope != nil {
		resourceID, resourceType = scope.ResourceID, scope.ResourceType

		// Uploads into a course directory are reserved for the owning
		// instructor and admins, checked before any bytes are written.
		if !req.Caller.IsAdmin() {
			isOwner, err := p.courses.IsOwner(ctx, scope.ResourceID, req.Caller.ID)
			if err != nil {
				return nil, fault.Wrap(fault.KindBackend, "course ownership lookup failed", err)
			}
			if !isOwner {
				return nil, fault.Newf(fault.KindForbidden, "only the course instructor may upload to course %s", scope.ResourceID)
			}
		}
	}

	key := GenerateKey(dir, req.FileName)

	if err := p.blobs.PutObject(ctx, key, req.Body, req.Size, req.ContentType); err != nil {
		return nil, fault.Wrap(fault.KindBackend, "failed to store file", err)
	}

	ownerID := req.Caller.ID
	record := &entity.FileRecord{
		Path:         key,
		ContentType:  req.ContentType,
		Size:         req.Size,
		Visibility:   vis,
		OwnerID:      &ownerID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Metadata:     datatypes.JSONMap(req.Metadata),
		UploadedAt:   time.Now().UTC(),
	}
	if err := p.records.Upsert(ctx, record); err != nil {
		// The blob is already retrievable; report success and leave the
		// missing record to reconciliation.
		p.logger.WarningWithContextf(ctx, "[Upload] consistency warning: blob %s stored but metadata upsert failed: %v", key, err)
	} else {
		p.logger.InfoWithContextf(ctx, "[Upload] stored %s (%d bytes, visibility=%s)", key, req.Size, vis)
	}

	return &Result{
		Key:        key,
		URL:        fmt.Sprintf("%s/files/%s", p.publicBaseURL, key),
		FileName:   req.FileName,
		Size:       req.Size,
		Visibility: vis,
	}, nil
}

// GenerateKey builds a collision-resistant storage key from the target
// directory and the original basename. The random suffix keeps
// concurrent uploads of identically named files from colliding.
func GenerateKey(dir, fileName string) string {
	base := fileName
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	ext := ""
	if idx := strings.LastIndex(base, "."); idx > 0 {
		ext = base[idx:]
		base = base[:idx]
	}
	base = sanitizeBaseName(base)
	if base == "" {
		base = "file"
	}

	stamp := time.Now().UTC().Format("20060102150405")
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s/%s-%s-%s%s", dir, base, stamp, suffix, ext)
}

func sanitizeBaseName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, name)
}
