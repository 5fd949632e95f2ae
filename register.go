package cvexp

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	registryMux sync.RWMutex
	schedules   = make(map[string]func() Schedule)
)

// RegisterSchedule makes a Schedule available to NewSchedule under the given name. It is
// intended to be called from the init() of the package that defines the Schedule, which should
// panic if an error is returned.
//
// The name should be the same as the TypeString() of what 'f' returns.
func RegisterSchedule(name string, f func() Schedule) error {
	if f == nil {
		return NilArgError{"Schedule constructor"}
	} else if f() == nil {
		return errors.Wrapf(ErrRegisterNilReturn, "Can't register schedule %q", name)
	}

	registryMux.Lock()
	defer registryMux.Unlock()

	if _, ok := schedules[name]; ok {
		return errors.Wrapf(ErrRegisterDuplicate, "Can't register schedule %q", name)
	}

	schedules[name] = f
	return nil
}

// NewSchedule returns a fresh Schedule of the registered type, in its default configuration
func NewSchedule(name string) (Schedule, error) {
	registryMux.RLock()
	f, ok := schedules[name]
	registryMux.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "Can't make schedule %q", name)
	}

	return f(), nil
}

// ScheduleTypes returns the sorted names of all registered Schedules
func ScheduleTypes() []string {
	registryMux.RLock()
	defer registryMux.RUnlock()

	names := make([]string, 0, len(schedules))
	for s := range schedules {
		names = append(names, s)
	}

	sort.Strings(names)
	return names
}
