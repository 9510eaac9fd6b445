package handlers

// PredictionRequest asks for the image at a URL to be classified.
type PredictionRequest struct {
	URL string `json:"url" binding:"required"`
}

// PredictionResponse carries the raw label and confidence plus a
// ready-to-send display string.
type PredictionResponse struct {
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
	Display    string `json:"display"`
}
