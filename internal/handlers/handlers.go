package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vagangabrain/Happy-Meowth/internal/predictor"
)

// maxUploadBytes caps direct image uploads at 10MB.
const maxUploadBytes = 10 << 20

type Handler struct {
	predictor *predictor.Predictor
}

func NewHandler(p *predictor.Predictor) *Handler {
	return &Handler{
		predictor: p,
	}
}

// Register wires the handler's routes onto the given engine.
func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.POST("/predict", h.Predict)
	router.POST("/predict/image", h.PredictFromImage)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Predict classifies the image behind the URL in the request body.
func (h *Handler) Predict(c *gin.Context) {
	var req PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	pred, err := h.predictor.Predict(c.Request.Context(), req.URL)
	if err != nil {
		h.writePredictionError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(pred))
}

// PredictFromImage classifies an uploaded image file (multipart field
// "image").
func (h *Handler) PredictFromImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided. Use 'image' as the form field name"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds the 10MB upload limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	pred, err := h.predictor.PredictImage(data)
	if err != nil {
		h.writePredictionError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(pred))
}

func (h *Handler) writePredictionError(c *gin.Context, err error) {
	var fetchErr *predictor.FetchError
	var decodeErr *predictor.DecodeError
	switch {
	case errors.As(err, &fetchErr):
		log.Warn().Err(err).Msg("Image fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &decodeErr):
		log.Warn().Err(err).Msg("Image decode failed")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
	}
}

func toResponse(pred predictor.Prediction) PredictionResponse {
	return PredictionResponse{
		Label:      pred.Label,
		Confidence: pred.Confidence,
		Display:    FormatDisplay(pred),
	}
}
