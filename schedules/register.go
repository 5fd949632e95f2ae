// Package schedules provides learning-rate schedules: functions of the epoch index and the
// current learning rate. Importing it registers every schedule with cvexp.NewSchedule.
package schedules

import (
	cv "github.com/emanuele-moscato/cv-explorations"
)

func init() {
	list := map[string]func() cv.Schedule{
		Step().TypeString():     func() cv.Schedule { return Step() },
		Constant().TypeString(): func() cv.Schedule { return Constant() },
	}

	for s, f := range list {
		if err := cv.RegisterSchedule(s, f); err != nil {
			panic(err.Error())
		}
	}
}
