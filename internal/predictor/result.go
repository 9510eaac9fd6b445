package predictor

import (
	"fmt"
	"math"
)

// Prediction is the final classification result. Confidence is the
// softmax probability of the winning class, rendered as a percentage
// with two decimals.
type Prediction struct {
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
}

// softmax converts logits into probabilities. The max logit is
// subtracted before exponentiation so large values cannot overflow.
func softmax(logits []float32) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(float64(v - maxLogit))
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func argmax(logits []float32) int {
	maxIdx := 0
	maxVal := logits[0]
	for i, v := range logits {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	return maxIdx
}

// formatResult resolves the winning index against the label table. An
// index past the end of the table degrades to a placeholder label rather
// than failing the request.
func (p *Predictor) formatResult(logits []float32) Prediction {
	idx := argmax(logits)
	probs := softmax(logits)

	label := fmt.Sprintf("unknown_%d", idx)
	if idx < len(p.labels) {
		label = p.labels[idx]
	}
	return Prediction{
		Label:      label,
		Confidence: fmt.Sprintf("%.2f%%", probs[idx]*100),
	}
}
