package weather

// RainThreshold is the predicted temperature below which rain is considered
// likely, in the unit of the source feed.
const RainThreshold = 28.0

// ClassifyRain maps one predicted temperature to a rain label.
func ClassifyRain(predictedTemp float64) RainLabel {
	if predictedTemp < RainThreshold {
		return RainLikely
	}
	return NoRainExpected
}

// ClassifyPrediction labels every point of p, preserving order.
func ClassifyPrediction(p Prediction) []RainLabel {
	labels := make([]RainLabel, len(p))
	for i, pt := range p {
		labels[i] = ClassifyRain(pt.Value)
	}
	return labels
}
