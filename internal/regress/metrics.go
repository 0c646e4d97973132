package regress

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics carries goodness of fit for one table of observations.
type Metrics struct {
	N    int     `json:"n"`
	R2   float64 `json:"r2"`
	RMSE float64 `json:"rmse"`
}

type metricsJSON struct {
	N    int      `json:"n"`
	R2   *float64 `json:"r2"`
	RMSE *float64 `json:"rmse"`
}

// MarshalJSON nulls non-finite scores; encoding/json refuses them.
func (m Metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{N: m.N, R2: finiteOrNil(m.R2), RMSE: finiteOrNil(m.RMSE)})
}

// UnmarshalJSON restores nulled scores as NaN.
func (m *Metrics) UnmarshalJSON(b []byte) error {
	var a metricsJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*m = Metrics{N: a.N, R2: fromPtr(a.R2), RMSE: fromPtr(a.RMSE)}
	return nil
}

// R2 returns the coefficient of determination of predictions against
// observed values. An observed vector with no variance has nothing to
// explain and the result is not finite.
func R2(obs, pred []float64) float64 {
	return stat.RSquaredFrom(pred, obs, nil)
}

// RMSE returns the root mean squared prediction error in outcome units.
func RMSE(obs, pred []float64) float64 {
	if len(obs) == 0 {
		return math.NaN()
	}
	return floats.Distance(obs, pred, 2) / math.Sqrt(float64(len(obs)))
}
