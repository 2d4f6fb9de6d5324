package queue

import "time"

// Clock schedules the pause between drain steps.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}
