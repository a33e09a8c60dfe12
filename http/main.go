package main

import (
	"context"
	"log"
	"time"

	"github.com/eduforge/edu-file-gateway/config"
	"github.com/eduforge/edu-file-gateway/http/controller"
	routes "github.com/eduforge/edu-file-gateway/http/route"
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

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := infra.Logger.Shutdown(ctx); err != nil {
			log.Printf("Logger shutdown failed: %v", err)
		}
		infra.RabbitMQ.Close()
	}()

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	log.Println("HTTP Server started on :8080")
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
