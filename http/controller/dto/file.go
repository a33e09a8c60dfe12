package dto

import "github.com/eduforge/edu-file-gateway/entity"

type UploadResponse struct {
	Success    bool              `json:"success"`
	FileKey    string            `json:"fileKey"`
	FileURL    string            `json:"fileUrl"`
	FileName   string            `json:"fileName"`
	FileSize   int64             `json:"fileSize"`
	FileType   string            `json:"fileType"`
	Directory  string            `json:"directory"`
	Visibility entity.Visibility `json:"visibility"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}
