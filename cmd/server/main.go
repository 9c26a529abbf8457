package main

import (
	"tracker/internal/config"
	"tracker/internal/server"
)

// @title           Tracker API
// @version         1.0
// @description     Projects, tasks, comments and notifications for a small team tracker.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
