// Package server provides the HTTP surface for the speech-stitcher.
package server

import (
	"errors"
	"net/http"

	"github.com/book-expert/logger"
	"github.com/book-expert/speech-stitcher/internal/core"
	"github.com/gofiber/fiber/v2"
)

// Route paths.
const (
	routeStitch = "/v1/stitch"
	routeHealth = "/health"
)

// stitchRequestBody mirrors the external request shape. GapSeconds is a
// pointer so an omitted gap is distinguishable from an explicit zero.
type stitchRequestBody struct {
	Texts      []string `json:"texts"`
	GapSeconds *float64 `json:"gapSeconds"`
	VoiceID    string   `json:"voiceId"`
	OutputKey  string   `json:"outputKey"`
}

// stitchResponseBody reports the storage location and batch facts.
type stitchResponseBody struct {
	Bucket     string  `json:"bucket"`
	Key        string  `json:"key"`
	ClipCount  int     `json:"clipCount"`
	GapSeconds float64 `json:"gapSeconds"`
}

type errorResponseBody struct {
	Error string `json:"error"`
}

// New builds the fiber application serving the stitch operation and a health
// probe. The app shares one pipeline with the NATS surface.
func New(stitcher core.Stitcher, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get(routeHealth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post(routeStitch, func(c *fiber.Ctx) error {
		return handleStitch(c, stitcher, log)
	})

	return app
}

func handleStitch(c *fiber.Ctx, stitcher core.Stitcher, log *logger.Logger) error {
	var body stitchRequestBody

	err := c.BodyParser(&body)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponseBody{
			Error: "invalid request body: " + err.Error(),
		})
	}

	req := core.StitchRequest{
		Texts:      body.Texts,
		GapSeconds: core.DefaultGapSeconds,
		VoiceID:    body.VoiceID,
		OutputKey:  body.OutputKey,
	}
	if body.GapSeconds != nil {
		req.GapSeconds = *body.GapSeconds
	}

	result, err := stitcher.Stitch(c.UserContext(), req)
	if err != nil {
		log.Error("Stitch request failed: %v", err)

		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoTexts) || errors.Is(err, core.ErrNegativeGap) {
			status = http.StatusBadRequest
		}

		return c.Status(status).JSON(errorResponseBody{Error: err.Error()})
	}

	return c.JSON(stitchResponseBody{
		Bucket:     result.Bucket,
		Key:        result.Key,
		ClipCount:  result.ClipCount,
		GapSeconds: result.GapSeconds,
	})
}
