package stats

import "gonum.org/v1/gonum/stat/distuv"

// Z95 is the two-tailed z-value for a 95% interval.
var Z95 = ZVal(95)

// ZVal returns the two-tailed z-value for a confidence level given in
// percent.
func ZVal(confidence float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	return dist.Quantile((1 + confidence/100) / 2)
}
