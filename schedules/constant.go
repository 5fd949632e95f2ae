package schedules

import (
	"github.com/pkg/errors"

	cv "github.com/emanuele-moscato/cv-explorations"
)

type constant struct{}

// Constant never changes the learning rate
func Constant() constant {
	return constant{}
}

func (c constant) TypeString() string {
	return "constant"
}

func (c constant) Value(epoch int, lr float64) (float64, error) {
	if epoch < 0 {
		return 0, errors.Wrapf(cv.ErrNegativeEpoch, "constant: epoch = %d", epoch)
	}

	return lr, nil
}
