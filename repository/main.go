package repository

import (
	"github.com/eduforge/edu-file-gateway/infra"
)

type Repository struct {
	FileRecordRepo *FileRecordRepository
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = &Repository{
		FileRecordRepo: NewFileRecordRepository(infra.Postgres.DB),
	}
	return repository
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}
