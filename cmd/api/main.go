package main

import (
	"os"

	"github.com/yigit/studyhub/internal/pkg/logger"
	"github.com/yigit/studyhub/internal/server"
)

// @title StudyHub API
// @version 1.0
// @description Study groups, shared resources and study partner matching

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token, sent as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
