package models

import "math"

// scaler standardizes feature columns to zero mean and unit variance.
// Raw features span several orders of magnitude (displayed volume vs.
// relative spread), which makes fixed-step gradient fits unstable.
type scaler struct {
	means []float64
	stds  []float64
}

// fitScaler computes per-column means and population stddevs over x.
// Columns with zero variance get std 1 so standardization is a no-op there.
func fitScaler(x [][]float64) scaler {
	cols := len(x[0])
	n := float64(len(x))
	means := make([]float64, cols)
	stds := make([]float64, cols)

	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range x {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return scaler{means: means, stds: stds}
}

// transform standardizes a single feature row.
func (s scaler) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.means[j]) / s.stds[j]
	}
	return out
}

// transformAll standardizes every row of x.
func (s scaler) transformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.transform(row)
	}
	return out
}

// dot returns w·x.
func dot(w, x []float64) float64 {
	var sum float64
	for i, v := range w {
		sum += v * x[i]
	}
	return sum
}

// sign returns -1, 0, or 1.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// sigmoid is the logistic function, clamped to avoid overflow in exp.
func sigmoid(z float64) float64 {
	if z > 30 {
		return 1
	}
	if z < -30 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}

// finite reports whether every coefficient is a usable float.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
