package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/http/controller/dto"
	"github.com/eduforge/edu-file-gateway/upload"
	"github.com/eduforge/edu-file-gateway/utils"
	"github.com/gin-gonic/gin"
)

// UploadFile accepts a multipart upload, runs it through the pipeline
// and answers with the storage key and derived URL.
func (ctrl *Controller) UploadFile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), backendTimeout)
	defer cancel()

	caller := utils.CallerFromContext(c)
	if caller == nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] request without identity reached the handler")
		utils.JSON401(c, "authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] missing file in form data: %v", err)
		utils.JSON400(c, "file is required")
		return
	}

	directory := strings.TrimSpace(c.PostForm("directory"))
	if directory == "" {
		// Default to the caller's own namespace.
		directory = fmt.Sprintf("users/%s", caller.ID)
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] failed to open uploaded file")
		utils.JSON500(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	result, err := ctrl.Pipeline.Upload(ctx, upload.Request{
		Body:         file,
		Size:         fileHeader.Size,
		FileName:     fileHeader.Filename,
		ContentType:  contentType,
		Directory:    directory,
		Visibility:   entity.Visibility(c.PostForm("visibility")),
		ResourceID:   c.PostForm("resourceId"),
		ResourceType: c.PostForm("resourceType"),
		Caller:       caller,
	})
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] rejected %q from %s: %v", fileHeader.Filename, caller.ID, err)
		utils.JSONFault(c, err)
		return
	}

	utils.JSON200(c, dto.UploadResponse{
		Success:    true,
		FileKey:    result.Key,
		FileURL:    result.URL,
		FileName:   result.FileName,
		FileSize:   result.Size,
		FileType:   contentType,
		Directory:  directory,
		Visibility: result.Visibility,
	})
}
