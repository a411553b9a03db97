package machine

import (
	"github.com/sirupsen/logrus"

	"github.com/bitmask-systems/lr35902core/pkg/log"
)

// Option configures a Machine at construction time.
type Option func(m *Machine)

// WithLogger replaces the Machine's default logger, also wiring it into
// the bus so bus-level anomalies (out-of-range access, invalid opcodes)
// log through the same logrus instance as everything else.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Machine) {
		m.bus.Log = log.Wrap(l)
	}
}

// WithBootDisabled skips the boot ROM overlay even if one was passed to
// New, seeding the post-boot register values spec.md's driver-choice
// Open Question leaves to the caller.
func WithBootDisabled() Option {
	return func(m *Machine) {
		m.bus.DisableBoot()
		m.seedPostBootState()
	}
}

// Model selects the hardware variant a Machine emulates. Only ModelDMG
// is implemented; ModelCGB is reserved, color mode being out of scope.
type Model = uint8

const (
	ModelDMG Model = iota
	ModelCGB
)

// WithModel is reserved for future DMG/CGB branching; passing anything
// other than ModelDMG is a no-op today.
func WithModel(model Model) Option {
	return func(m *Machine) {
		_ = model
	}
}
