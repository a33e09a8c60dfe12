package controller

import (
	"context"
	"io"
	"time"

	"github.com/eduforge/edu-file-gateway/authz"
	"github.com/eduforge/edu-file-gateway/config"
	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/infra"
	"github.com/eduforge/edu-file-gateway/repository"
	"github.com/eduforge/edu-file-gateway/upload"
)

// backendTimeout bounds every blob/metadata call made on behalf of one
// request.
const backendTimeout = 30 * time.Second

// ObjectStore is the read/delete side of the object backend as the
// gateway sees it.
type ObjectStore interface {
	StatObject(ctx context.Context, key string) (int64, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, int64, error)
	RemoveObject(ctx context.Context, key string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// FileRecords is the metadata store surface the gateway needs.
type FileRecords interface {
	Get(ctx context.Context, path string) (*entity.FileRecord, error)
	IncrementAccess(ctx context.Context, path string) error
	Delete(ctx context.Context, path string) error
}

// AccessNotifier publishes fire-and-forget access events.
type AccessNotifier interface {
	FileAccessed(ctx context.Context, path string) error
}

type Controller struct {
	Config *config.Config
	Infra  *infra.Infra

	Pipeline *upload.Pipeline
	Engine   *authz.Engine
	Blobs    ObjectStore
	Records  FileRecords
	Events   AccessNotifier // optional; nil falls back to direct increments
}

func NewController(cfg *config.Config, inf *infra.Infra, repo *repository.Repository) *Controller {
	pipeline := upload.NewPipeline(
		inf.Minio,
		repo.FileRecordRepo,
		inf.CourseService,
		inf.Logger,
		upload.Options{
			MaxFileSize:   cfg.EnvConfig.Upload.MaxFileSize,
			PublicBaseURL: cfg.EnvConfig.PublicBaseURL,
		},
	)

	return &Controller{
		Config:   cfg,
		Infra:    inf,
		Pipeline: pipeline,
		Engine:   authz.NewEngine(inf.CourseService),
		Blobs:    inf.Minio,
		Records:  repo.FileRecordRepo,
		Events:   inf.Produce.AccessEvents,
	}
}
