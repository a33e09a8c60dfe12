package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eduforge/edu-file-gateway/delivery"
	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/fault"
	"github.com/eduforge/edu-file-gateway/http/controller/dto"
	"github.com/eduforge/edu-file-gateway/utils"
	"github.com/eduforge/edu-file-gateway/visibility"
	"github.com/gin-gonic/gin"
)

// RetrieveFile serves GET and HEAD for /files/*path: existence check,
// metadata fetch, authorization, then delivery. HEAD runs the same
// checks but sends headers only.
func (ctrl *Controller) RetrieveFile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), backendTimeout)
	defer cancel()

	key, err := visibility.SanitizePath(c.Param("path"))
	if err != nil {
		utils.JSONFault(c, err)
		return
	}

	size, err := ctrl.Blobs.StatObject(ctx, key)
	if err != nil {
		if fault.KindOf(err) == fault.KindNotFound {
			utils.JSON404(c, "file not found")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] stat failed for %s", key)
		utils.JSON500(c, "failed to check file")
		return
	}

	record, err := ctrl.Records.Get(ctx, key)
	if err != nil {
		if fault.KindOf(err) != fault.KindNotFound {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] metadata fetch failed for %s", key)
			utils.JSON500(c, "failed to load file metadata")
			return
		}
		// Blob without a record (consistency window after a failed
		// upsert). Fall back to directory conventions, which can only
		// narrow access, never widen it past the path rules.
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Files] serving %s without metadata record", key)
		record = &entity.FileRecord{
			Path:        key,
			ContentType: "application/octet-stream",
			Size:        size,
			Visibility:  visibility.Resolve(key, entity.VisibilityPrivate),
		}
	}

	caller := utils.CallerFromContext(c)

	allowed, err := ctrl.Engine.CanAccess(ctx, caller, record)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] authorization failed for %s", key)
		utils.JSON500(c, "authorization check failed")
		return
	}
	if !allowed {
		utils.JSON403(c, "you do not have access to this file")
		return
	}

	decision, err := delivery.Decide(caller, record, delivery.Options{
		Download: c.Query("download") == "true",
		Redirect: c.Query("redirect") == "true",
	})
	if err != nil {
		utils.JSONFault(c, err)
		return
	}

	if decision.Redirect {
		ttl := time.Duration(ctrl.Config.EnvConfig.Delivery.SignedURLTTL) * time.Second
		signedURL, err := ctrl.Blobs.PresignedGetURL(ctx, key, ttl)
		if err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] presign failed for %s", key)
			utils.JSON500(c, "failed to sign file URL")
			return
		}
		ctrl.notifyAccess(key)
		c.Redirect(http.StatusFound, signedURL)
		return
	}

	for name, value := range decision.Headers {
		c.Header(name, value)
	}
	c.Header("Content-Type", record.ContentType)
	c.Header("Content-Length", fmt.Sprintf("%d", size))

	if c.Request.Method == http.MethodHead {
		ctrl.notifyAccess(key)
		c.Status(http.StatusOK)
		return
	}

	object, _, err := ctrl.Blobs.GetObject(ctx, key)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] failed to open %s", key)
		utils.JSONFault(c, err)
		return
	}
	defer object.Close()

	ctrl.notifyAccess(key)

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, object); err != nil {
		// Headers are gone; nothing to send but a log line.
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] streaming %s aborted", key)
	}
}

// DeleteFile removes both the blob and its metadata record. The two
// deletes are not atomic; retrieval tolerates either one missing.
func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), backendTimeout)
	defer cancel()

	caller := utils.CallerFromContext(c)
	if caller == nil {
		utils.JSON401(c, "authentication required")
		return
	}

	key, err := visibility.SanitizePath(c.Param("path"))
	if err != nil {
		utils.JSONFault(c, err)
		return
	}

	record, err := ctrl.Records.Get(ctx, key)
	switch {
	case err == nil:
		isOwner := record.OwnerID != nil && *record.OwnerID == caller.ID
		if !caller.IsAdmin() && !isOwner {
			utils.JSON403(c, "only the file owner or an admin may delete a file")
			return
		}
	case fault.KindOf(err) == fault.KindNotFound:
		// No record left; without ownership information only admins
		// may remove the orphaned blob.
		if !caller.IsAdmin() {
			utils.JSON403(c, "only an admin may delete this file")
			return
		}
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] metadata fetch failed for %s", key)
		utils.JSON500(c, "failed to load file metadata")
		return
	}

	if err := ctrl.Blobs.RemoveObject(ctx, key); err != nil && fault.KindOf(err) != fault.KindNotFound {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] blob delete failed for %s", key)
		utils.JSON500(c, "failed to delete file")
		return
	}
	if err := ctrl.Records.Delete(ctx, key); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Files] record delete failed for %s", key)
		utils.JSON500(c, "failed to delete file metadata")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Files] deleted %s (by %s)", key, caller.ID)
	utils.JSON200(c, dto.DeleteResponse{Success: true, Path: key})
}

// Health reports the state of every backend the gateway depends on.
func (ctrl *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true

	check := func(name string, probe func(context.Context) error) {
		if err := probe(ctx); err != nil {
			components[name] = "unavailable"
			healthy = false
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Health] %s probe failed: %v", name, err)
			return
		}
		components[name] = "ok"
	}

	check("postgres", ctrl.Infra.Postgres.Ping)
	check("redis", ctrl.Infra.Redis.Ping)
	check("storage", ctrl.Infra.Minio.Health)

	status := "ok"
	if !healthy {
		status = "degraded"
		utils.JSON503(c, gin.H{"status": status, "components": components})
		return
	}
	utils.JSON200(c, gin.H{"status": status, "components": components})
}

// notifyAccess bumps the access counters off the request path. The
// event is published to the queue when possible; a direct best-effort
// increment is the fallback. Neither failure reaches the client.
func (ctrl *Controller) notifyAccess(path string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if ctrl.Events != nil {
			err := ctrl.Events.FileAccessed(ctx, path)
			if err == nil {
				return
			}
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Files] access event publish failed for %s: %v", path, err)
		}

		if err := ctrl.Records.IncrementAccess(ctx, path); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Files] access counter update failed for %s: %v", path, err)
		}
	}()
}
