package api

import (
	"fmt"
	"math"
)

// Impairment is the netem parameter set applied to the root qdisc of one
// interface. Jitter is only honoured when Delay is non-zero.
type Impairment struct {
	DelayMs     uint32  `yaml:"delay"`  // in ms
	JitterMs    uint32  `yaml:"jitter"` // in ms
	LossPercent float64 `yaml:"loss"`   // in percentage
}

// ImpairmentTarget binds an Impairment to an interface inside a namespace.
type ImpairmentTarget struct {
	Namespace  string     `yaml:"namespace"`
	Interface  string     `yaml:"interface"`
	Profile    string     `yaml:"profile"`
	Impairment Impairment `yaml:",inline"`
}

// Profiles are the named presets accepted by the impair command and the
// topology file.
var Profiles = map[string]Impairment{
	"lan":       {DelayMs: 1},
	"wan":       {DelayMs: 40, JitterMs: 5, LossPercent: 0.1},
	"3g":        {DelayMs: 100, JitterMs: 30, LossPercent: 1},
	"lossy":     {LossPercent: 10},
	"satellite": {DelayMs: 300, JitterMs: 20, LossPercent: 0.5},
}

// MaxDelayMs caps delay and jitter. The kernel takes netem times as uint32
// scheduler ticks, which overflow a little above 274s with the usual
// 64ns tick.
const MaxDelayMs = 100_000

// Validate rejects a loss percentage outside [0, 100] (NaN included) and
// delay or jitter above MaxDelayMs.
func (i Impairment) Validate() error {
	if math.IsNaN(i.LossPercent) || i.LossPercent < 0 || i.LossPercent > 100 {
		return fmt.Errorf("loss %v%% out of range [0, 100]: %w", i.LossPercent, ErrInvalidArgument)
	}
	if i.DelayMs > MaxDelayMs {
		return fmt.Errorf("delay %dms above %dms: %w", i.DelayMs, MaxDelayMs, ErrInvalidArgument)
	}
	if i.JitterMs > MaxDelayMs {
		return fmt.Errorf("jitter %dms above %dms: %w", i.JitterMs, MaxDelayMs, ErrInvalidArgument)
	}
	return nil
}

// EffectiveJitterMs is the jitter actually configured: zero without a delay.
func (i Impairment) EffectiveJitterMs() uint32 {
	if i.DelayMs == 0 {
		return 0
	}
	return i.JitterMs
}

// Resolve returns the impairment of the target: its profile, if any, with
// the explicitly given (non-zero) fields laid over it.
func (t ImpairmentTarget) Resolve() (Impairment, error) {
	imp := t.Impairment
	if t.Profile != "" {
		base, ok := Profiles[t.Profile]
		if !ok {
			return Impairment{}, fmt.Errorf("unknown impairment profile %q: %w", t.Profile, ErrInvalidArgument)
		}
		if imp.DelayMs == 0 {
			imp.DelayMs = base.DelayMs
		}
		if imp.JitterMs == 0 {
			imp.JitterMs = base.JitterMs
		}
		if imp.LossPercent == 0 {
			imp.LossPercent = base.LossPercent
		}
	}
	if err := imp.Validate(); err != nil {
		return Impairment{}, err
	}
	return imp, nil
}
