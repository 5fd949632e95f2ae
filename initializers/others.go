package initializers

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrUnknownInit is returned by Named for names that aren't in Names()
var ErrUnknownInit = errors.New("unknown initializer")

// LeCun scales by the fan-in alone: variance 1 / fanIn
func LeCun() *varianceScaling {
	return VarianceScaling().In()
}

// He is LeCun with twice the variance: variance 2 / fanIn
func He() *varianceScaling {
	return VarianceScaling().In().Factor(2)
}

// Glorot (or Xavier) scales by the average of the fan-in and fan-out:
// variance 2 / (fanIn + fanOut)
func Glorot() *varianceScaling {
	return VarianceScaling().Avg()
}

// GlorotUniform draws from [-limit, limit), limit = sqrt(6 / (fanIn + fanOut))
func GlorotUniform() *varianceScaling {
	return Glorot().UniformDist()
}

// the initializers that can be picked by name, from config files and flags
var named = map[string]func() Initializer{
	"glorot-uniform": func() Initializer { return GlorotUniform() },
	"glorot":         func() Initializer { return Glorot() },
	"xavier":         func() Initializer { return Glorot() },
	"he":             func() Initializer { return He() },
	"he-uniform":     func() Initializer { return He().UniformDist() },
	"lecun":          func() Initializer { return LeCun() },
	"lecun-uniform":  func() Initializer { return LeCun().UniformDist() },
}

// Named returns a new Initializer by name. The empty string gives Default().
func Named(name string) (Initializer, error) {
	if name == "" {
		return Default(), nil
	}

	f, ok := named[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInit, "%q, expected one of %v", name, Names())
	}

	return f(), nil
}

// Names lists the names accepted by Named, sorted
func Names() []string {
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}

	sort.Strings(names)
	return names
}
