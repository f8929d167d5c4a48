package main

import (
	"log"

	"smart-cropper/internal/api"
	"smart-cropper/internal/config"
	"smart-cropper/internal/services/face"
	"smart-cropper/internal/workers"
)

func main() {
	cfg := config.Load()

	// Initialize Pigo face detection model (pure Go, no CGO required).
	// Without it the landmark sidecar has no fallback.
	err := face.InitPigo(cfg.PigoCascadePath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Pigo (fallback detection disabled): %v", err)
	} else {
		defer face.Cleanup()
		log.Println("Pigo face detection initialized")
	}

	workers.StartWorker(cfg)

	server := api.NewServer(cfg)

	log.Println("Server running on http://localhost:" + cfg.Port)
	err = server.Listen(":" + cfg.Port)
	if err != nil {
		log.Fatal(err)
	}
}
