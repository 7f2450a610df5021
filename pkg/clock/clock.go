package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts "now" so metric windows can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

func New() Clock { return Real{} }

type Fake struct {
	now time.Time
}

func NewFake(t time.Time) *Fake {
	return &Fake{now: t.UTC()}
}

func (c *Fake) Now() time.Time {
	return c.now
}

func (c *Fake) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

var Module = fx.Options(
	fx.Provide(New),
)
