// Package service contains the application services of the nutrition and
// content engine. Services validate input, call repositories and apply the
// pure rules from the nutrition and program packages.
package service

import (
	"time"

	"go.uber.org/zap"
)

// Clock returns the reference time used for week resolution and timestamps.
type Clock func() time.Time

func clockOrNow(now Clock) Clock {
	if now == nil {
		return time.Now
	}
	return now
}

func loggerOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
