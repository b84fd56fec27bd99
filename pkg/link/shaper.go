package link

import (
	"Netsim/api"
	"Netsim/pkg/node"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Shaper applies and clears link impairment on the root of an interface
// inside a named namespace. Implementations cache nothing: the kernel owns
// the active queueing discipline.
type Shaper interface {
	// Apply installs a root netem qdisc, replacing whatever is there.
	Apply(nsName, ifname string, imp api.Impairment) error
	// Clear removes the root qdisc. It is best-effort: an interface without
	// impairment, or one that is gone, is not an error.
	Clear(nsName, ifname string) error
}

// NewShaper returns the Shaper selected by cfg.Shaper.
func NewShaper(cfg api.Config, nm *node.NamespaceManager, log logrus.FieldLogger) (Shaper, error) {
	switch cfg.Shaper {
	case "", api.ShaperNetlink:
		return NewNetemShaper(nm, log), nil
	case api.ShaperTC:
		return NewTCShaper(cfg.TCBinary, nm, log), nil
	default:
		return nil, fmt.Errorf("unknown shaper %q: %w", cfg.Shaper, api.ErrInvalidArgument)
	}
}

func validateTarget(nsName, ifname string, imp api.Impairment) error {
	if err := node.ValidateName(nsName); err != nil {
		return err
	}
	if err := ValidateIfName(ifname); err != nil {
		return err
	}
	return imp.Validate()
}
