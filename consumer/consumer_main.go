package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/eduforge/edu-file-gateway/config"
	"github.com/eduforge/edu-file-gateway/consumer/worker"
	infraPkg "github.com/eduforge/edu-file-gateway/infra"
	"github.com/eduforge/edu-file-gateway/repository"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accessConsumer := worker.NewAccessConsumer(infra.RabbitMQ.Channel, infra, repo)
	if err := accessConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start access consumer: %v", err)
		log.Fatalf("Failed to start access consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	infra.RabbitMQ.Close()
	infra.Logger.InfoWithContextf(context.Background(), "Consumer exited properly")
}
