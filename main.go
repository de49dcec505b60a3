// @title Virtual Classroom API
// @version 1.0
// @description Backend for the browser-based virtual classroom: identity onboarding, live session timeline, quizzes, breakouts, camera compliance and the classroom assistant.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"virtual_classroom_backend/internal/app"
	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/pkg/configwatcher"
	"virtual_classroom_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.Watch("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
