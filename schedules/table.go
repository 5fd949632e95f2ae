package schedules

import (
	"github.com/pkg/errors"

	cv "github.com/emanuele-moscato/cv-explorations"
)

// Table evaluates the schedule at epochs 0 through epochs-1, always from the same base learning
// rate
func Table(s cv.Schedule, lr float64, epochs int) ([]float64, error) {
	if s == nil {
		return nil, errors.New("Can't make table, schedule is nil")
	} else if epochs < 0 {
		return nil, errors.Wrapf(cv.ErrNegativeEpoch, "Can't make table for %d epochs", epochs)
	}

	rates := make([]float64, 0, epochs)
	for e := 0; e < epochs; e++ {
		v, err := s.Value(e, lr)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't make table for %s schedule", s.TypeString())
		}
		rates = append(rates, v)
	}

	return rates, nil
}
