package handlers

import (
	"fmt"
	"strings"

	"github.com/vagangabrain/Happy-Meowth/internal/predictor"
)

// FormatDisplay renders a prediction for end users. Labels follow the
// "-Male"/"-Female" suffix convention for gendered forms; the suffix is
// split onto its own line, never interpreted beyond that.
func FormatDisplay(pred predictor.Prediction) string {
	name := pred.Label
	var gender string
	switch {
	case strings.HasSuffix(name, "-Male"):
		name = strings.TrimSuffix(name, "-Male")
		gender = "Male"
	case strings.HasSuffix(name, "-Female"):
		name = strings.TrimSuffix(name, "-Female")
		gender = "Female"
	default:
		return fmt.Sprintf("%s: %s", name, pred.Confidence)
	}
	return fmt.Sprintf("%s: %s\nGender: %s", name, pred.Confidence, gender)
}
