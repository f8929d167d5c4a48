package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"smart-cropper/internal/config"
	"smart-cropper/internal/workers"
)

func RegisterCropRoutes(app *fiber.App, cfg *config.Config) {
	app.Post("/crop/generate", generateCrop)
	app.Get("/crop/jobs/:id", cropJobStatus)
}

// generateCrop enqueues a cropping job for a local video file and returns
// the job ID for polling.
func generateCrop(c *fiber.Ctx) error {
	var payload struct {
		Video    string `json:"video"`
		Annotate bool   `json:"annotate"`
	}

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if payload.Video == "" {
		return c.Status(400).JSON(fiber.Map{"error": "video path is required"})
	}
	if _, err := os.Stat(payload.Video); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "video not found: " + payload.Video})
	}

	if err := os.MkdirAll("tmp/clips", os.ModePerm); err != nil {
		return errJson(c, err)
	}

	base := filepath.Base(payload.Video)
	outputPath := filepath.Join("tmp/clips", fmt.Sprintf("%s_vertical.mp4", base[:len(base)-len(filepath.Ext(base))]))

	id, ok := workers.Enqueue(payload.Video, outputPath, payload.Annotate)
	if !ok {
		return c.Status(503).JSON(fiber.Map{"error": "job queue is full"})
	}

	return c.Status(202).JSON(fiber.Map{"id": id})
}

func cropJobStatus(c *fiber.Ctx) error {
	status, ok := workers.Status(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(status)
}

func errJson(c *fiber.Ctx, err error) error {
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
