package services

import (
	"time"

	"github.com/arnold/fitchallenge-api/internal/models"
)

type options struct {
	now     func() time.Time
	newCode func() (string, error)
}

// Option customises a service. The defaults are the wall clock and RandomInviteCode.
type Option func(*options)

// WithClock replaces the clock used for "today" and for timestamps the services set.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCodeGenerator replaces the invite code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(o *options) { o.newCode = gen }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newCode: RandomInviteCode}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// today is the current UTC calendar day.
func (o options) today() string {
	return o.now().UTC().Format(models.DateLayout)
}
