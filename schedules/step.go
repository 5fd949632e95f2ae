package schedules

import (
	"math"

	"github.com/pkg/errors"

	cv "github.com/emanuele-moscato/cv-explorations"
)

// The decay used by StepSchedule: a factor of 'DefaultGamma' every 'DefaultEvery' epochs
const (
	DefaultGamma float64 = 0.1
	DefaultEvery int     = 15
)

// StepSchedule decays the given learning rate by a factor of 10 every 15 epochs:
//
//	lr * 0.1^(epoch / 15)
//
// with integer division. Epochs start at 0. It returns cv.ErrNegativeEpoch for epochs < 0.
func StepSchedule(epoch int, lr float64) (float64, error) {
	return Step().Value(epoch, lr)
}

type stepper struct {
	gamma float64
	every int
}

// Step returns a step decay with the same defaults as StepSchedule, which can be changed with
// Gamma and Every.
func Step() *stepper {
	return &stepper{DefaultGamma, DefaultEvery}
}

// Gamma sets the factor that the learning rate is multiplied by at each step. Must be in (0, 1].
func (s *stepper) Gamma(g float64) *stepper {
	s.gamma = g
	return s
}

// Every sets the number of epochs between steps. Must be ≥ 1.
func (s *stepper) Every(epochs int) *stepper {
	s.every = epochs
	return s
}

// Params returns the factor and the number of epochs between steps
func (s *stepper) Params() (gamma float64, every int) {
	return s.gamma, s.every
}

func (s *stepper) TypeString() string {
	return "step"
}

// Validate returns cv.ErrBadSchedule if the parameters could make the learning rate increase
func (s *stepper) Validate() error {
	if s.every < 1 {
		return errors.Wrapf(cv.ErrBadSchedule, "step: every = %d, should be ≥ 1", s.every)
	} else if !(s.gamma > 0 && s.gamma <= 1) {
		return errors.Wrapf(cv.ErrBadSchedule, "step: gamma = %v, should be in (0, 1]", s.gamma)
	}

	return nil
}

func (s *stepper) Value(epoch int, lr float64) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	} else if epoch < 0 {
		return 0, errors.Wrapf(cv.ErrNegativeEpoch, "step: epoch = %d", epoch)
	}

	return lr * math.Pow(s.gamma, float64(epoch/s.every)), nil
}
