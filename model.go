package iitii

import "math"

// point is one training observation: a node's begin position (x) and
// its offset within its tree level (y).
type point struct {
	x, y float64
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// regress fits simple linear regression y ~ x, returning (intercept,
// slope). With no points both are NaN; with zero variance in x the fit
// degenerates to (0, 0).
func regress(pts []point) (intercept, slope float64) {
	if len(pts) == 0 {
		return math.NaN(), math.NaN()
	}
	var sumX, sumY float64
	for _, pt := range pts {
		sumX += pt.x
		sumY += pt.y
	}
	n := float64(len(pts))
	meanX, meanY := sumX/n, sumY/n

	var cov, varX float64
	for _, pt := range pts {
		xErr := pt.x - meanX
		cov += xErr * (pt.y - meanY)
		varX += xErr * xErr
	}
	if varX == 0 {
		return 0, 0
	}
	m := cov / varX
	return meanY - m*meanX, m
}

// meanAbsoluteResidual returns the mean |y - (m*x + b)| over the
// points, or NaN for an empty set.
func meanAbsoluteResidual(pts []point, b, m float64) float64 {
	if len(pts) == 0 {
		return math.NaN()
	}
	var sr float64
	for _, pt := range pts {
		sr += math.Abs(pt.y - (m*pt.x + b))
	}
	return sr / float64(len(pts))
}
