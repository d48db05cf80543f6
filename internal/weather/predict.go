package weather

import "time"

// Project extrapolates model for hours 1..horizon past the last observation.
// lastElapsed and lastAt describe the last observed reading. The returned
// prediction is ordered by increasing timestamp.
func Project(model TrendModel, lastElapsed float64, lastAt time.Time, horizon int) Prediction {
	if horizon < 1 {
		return nil
	}
	out := make(Prediction, horizon)
	for i := 1; i <= horizon; i++ {
		elapsed := lastElapsed + float64(i)
		out[i-1] = PredictedPoint{
			Timestamp:    lastAt.Add(time.Duration(i) * time.Hour),
			ElapsedHours: elapsed,
			Value:        model.At(elapsed),
		}
	}
	return out
}

// ProjectSeries is Project anchored at the last reading of s.
func ProjectSeries(model TrendModel, s Series, horizon int) Prediction {
	last := s.Last()
	return Project(model, last.ElapsedHours, last.Timestamp, horizon)
}
