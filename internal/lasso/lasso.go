// Package lasso fits an L1-regularized linear path by cyclic coordinate
// descent and picks the penalty by cross-validation. It exists as an
// independent check on stepwise selection: a variable the path drives to
// zero at the chosen penalty is a candidate for removal, and a path that
// zeroes nothing is itself a finding.
package lasso

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Config controls the regularization path.
type Config struct {
	// PathLen is the number of penalty strengths on the grid.
	PathLen int
	// EpsRatio is the ratio of the smallest penalty to the largest; the
	// grid descends log-linearly between them.
	EpsRatio float64
	// Tol stops coordinate descent once no coefficient moves more than
	// this within a sweep.
	Tol float64
	// MaxIter caps the sweeps per penalty.
	MaxIter int
	// Folds is the cross-validation fold count.
	Folds int
	// Seed fixes fold membership.
	Seed int64
}

// DefaultConfig mirrors the reference analysis: a 60-point path and
// 10-fold cross-validation.
func DefaultConfig() Config {
	return Config{
		PathLen:  60,
		EpsRatio: 1e-3,
		Tol:      1e-7,
		MaxIter:  10000,
		Folds:    10,
		Seed:     42,
	}
}

func (c Config) validate() error {
	if c.PathLen < 2 {
		return fmt.Errorf("path length must be at least 2, have %d", c.PathLen)
	}
	if c.EpsRatio <= 0 || c.EpsRatio >= 1 {
		return fmt.Errorf("eps ratio must be in (0, 1), have %g", c.EpsRatio)
	}
	if c.Folds < 2 {
		return fmt.Errorf("need at least 2 folds, have %d", c.Folds)
	}
	if c.Tol <= 0 || c.MaxIter < 1 {
		return fmt.Errorf("invalid convergence settings tol=%g maxIter=%d", c.Tol, c.MaxIter)
	}
	return nil
}

// PathPoint is the fit at one penalty strength, reported in the original
// column scale.
type PathPoint struct {
	Lambda    float64   `json:"lambda"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
	NonZero   int       `json:"non_zero"`
}

// standardized holds a design standardized to zero mean and unit variance
// per column, with the statistics needed to map coefficients back.
type standardized struct {
	cols     [][]float64
	mean     []float64
	sd       []float64
	yMean    float64
	yCent    []float64
	constant []bool // constant columns, pinned to zero coefficients
}

func standardize(cols [][]float64, y []float64) *standardized {
	n := float64(len(y))
	s := &standardized{
		cols:     make([][]float64, len(cols)),
		mean:     make([]float64, len(cols)),
		sd:       make([]float64, len(cols)),
		yCent:    make([]float64, len(y)),
		constant: make([]bool, len(cols)),
	}
	for _, v := range y {
		s.yMean += v
	}
	s.yMean /= n
	for i, v := range y {
		s.yCent[i] = v - s.yMean
	}

	for j, col := range cols {
		var mu float64
		for _, v := range col {
			mu += v
		}
		mu /= n
		var ss float64
		for _, v := range col {
			d := v - mu
			ss += d * d
		}
		sd := math.Sqrt(ss / n)
		s.mean[j] = mu
		s.sd[j] = sd
		std := make([]float64, len(col))
		if sd == 0 {
			s.constant[j] = true
			s.sd[j] = 1
		} else {
			for i, v := range col {
				std[i] = (v - mu) / sd
			}
		}
		s.cols[j] = std
	}
	return s
}

// lambdaMax is the smallest penalty that zeroes every coefficient.
func (s *standardized) lambdaMax() float64 {
	n := float64(len(s.yCent))
	max := 0.0
	for j, col := range s.cols {
		if s.constant[j] {
			continue
		}
		if v := math.Abs(floats.Dot(col, s.yCent)) / n; v > max {
			max = v
		}
	}
	return max
}

func lambdaGrid(lambdaMax float64, pathLen int, epsRatio float64) []float64 {
	grid := make([]float64, pathLen)
	logMax := math.Log(lambdaMax)
	logMin := math.Log(lambdaMax * epsRatio)
	for k := range grid {
		t := float64(k) / float64(pathLen-1)
		grid[k] = math.Exp(logMax + t*(logMin-logMax))
	}
	// The strongest penalty must zero every coefficient by construction;
	// pin it so the round trip through log space cannot shave it below
	// the threshold.
	grid[0] = lambdaMax
	return grid
}

// descend runs cyclic coordinate descent at one penalty, updating beta in
// place and maintaining the residual incrementally. Columns are assumed
// standardized, so each coordinate update is a plain soft threshold.
func (s *standardized) descend(lambda float64, beta, resid []float64, tol float64, maxIter int) {
	n := float64(len(resid))
	for it := 0; it < maxIter; it++ {
		maxMove := 0.0
		for j, col := range s.cols {
			if s.constant[j] {
				continue
			}
			rho := beta[j] + floats.Dot(col, resid)/n
			next := softThreshold(rho, lambda)
			if next == beta[j] {
				continue
			}
			delta := next - beta[j]
			for i, x := range col {
				resid[i] -= x * delta
			}
			beta[j] = next
			if m := math.Abs(delta); m > maxMove {
				maxMove = m
			}
		}
		if maxMove < tol {
			return
		}
	}
}

func softThreshold(z, lambda float64) float64 {
	switch {
	case z > lambda:
		return z - lambda
	case z < -lambda:
		return z + lambda
	default:
		return 0
	}
}

// fitPath fits the whole descending penalty grid with warm starts and
// returns per-penalty coefficients in the original scale.
func (s *standardized) fitPath(grid []float64, tol float64, maxIter int) []PathPoint {
	p := len(s.cols)
	beta := make([]float64, p)
	resid := append([]float64(nil), s.yCent...)

	points := make([]PathPoint, len(grid))
	for k, lambda := range grid {
		s.descend(lambda, beta, resid, tol, maxIter)

		pt := PathPoint{Lambda: lambda, Coef: make([]float64, p)}
		pt.Intercept = s.yMean
		for j := range beta {
			if beta[j] == 0 {
				continue
			}
			pt.NonZero++
			pt.Coef[j] = beta[j] / s.sd[j]
			pt.Intercept -= pt.Coef[j] * s.mean[j]
		}
		points[k] = pt
	}
	return points
}
