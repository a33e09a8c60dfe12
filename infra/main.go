package infra

import (
	"context"
	"log"

	"github.com/eduforge/edu-file-gateway/config"
	"github.com/eduforge/edu-file-gateway/infra/produce"
)

type Infra struct {
	Postgres      *PostgresClient
	Redis         *RedisClient
	Minio         *MinioClient
	RabbitMQ      *RabbitMQClient
	Logger        *LoggerClient
	CourseService *CourseService
	Produce       *produce.Produce
}

var infraInstance *Infra

func InitInfra(cfg *config.Config) *Infra {
	if infraInstance != nil {
		return infraInstance
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	minio := InitMinioClient(cfg.EnvConfig)
	if minio == nil {
		panic("Failed to initialize MinIO service")
	}
	if err := minio.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("Failed to ensure storage bucket: %v", err)
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	courseService := InitCourseService(cfg.EnvConfig, redis)
	if courseService == nil {
		panic("Failed to initialize Course service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	infraInstance = &Infra{
		Postgres:      postgres,
		Redis:         redis,
		Minio:         minio,
		RabbitMQ:      rabbitMQ,
		Logger:        logger,
		CourseService: courseService,
		Produce:       produceService,
	}

	return infraInstance
}

func GetClient() *Infra {
	if infraInstance == nil {
		panic("Infra not initialized. Call InitInfra() first.")
	}
	return infraInstance
}
