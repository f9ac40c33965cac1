package main

import (
	"bookline/internal/reviews/handler"
	"bookline/internal/reviews/repository"
	"bookline/internal/reviews/service"
	"bookline/internal/reviews/validator"
	"bookline/pkg/app"
	"bookline/pkg/config"
)

const ServiceName = "reviews"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reviews service")
	reviewService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReviewHandler(reviewService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ReviewService {
	reviewService := service.NewReviewService(
		repository.NewMongoReviewRepository(cfg),
		validator.NewReviewValidator(),
		cfg,
	)

	cfg.Log.Info("Review service initialized", "database", cfg.MongoDatabaseName)
	return reviewService
}
