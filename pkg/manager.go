package pkg

import (
	"Netsim/api"
	"Netsim/pkg/link"
	"Netsim/pkg/node"

	"github.com/sirupsen/logrus"
)

// Manager is the single entry point for callers. It owns the netlink handle
// of the host namespace and hands out per-namespace handles for the duration
// of each operation. A Manager is safe for use by concurrent callers against
// distinct interface names; it does no locking of its own.
type Manager struct {
	nm     *node.NamespaceManager
	lm     *link.LinkManager
	shaper link.Shaper
	log    logrus.FieldLogger
}

// NewManager creates a Manager; Close releases it.
func NewManager(cfg api.Config, log logrus.FieldLogger) (*Manager, error) {
	nm := node.NewNamespaceManager(log)
	shaper, err := link.NewShaper(cfg, nm, log)
	if err != nil {
		return nil, err
	}
	lm, err := link.NewLinkManager(nm, log)
	if err != nil {
		return nil, err
	}

	return &Manager{
		nm:     nm,
		lm:     lm,
		shaper: shaper,
		log:    log.WithField("package", "manager"),
	}, nil
}

func (m *Manager) ListNamespaces() ([]string, error) {
	return m.nm.List()
}

func (m *Manager) EnsureNamespace(name string) error {
	return m.nm.Ensure(name)
}

func (m *Manager) DeleteNamespace(name string) error {
	return m.nm.Delete(name)
}

func (m *Manager) CleanupInterfaceEverywhere(ifname string) (int, error) {
	return m.lm.CleanupInterfaceEverywhere(ifname)
}

func (m *Manager) CreateVethPair(req api.LinkRequest) (api.LinkDescriptor, error) {
	return m.lm.CreateVethPair(req)
}

func (m *Manager) ApplyImpairment(nsName, ifname string, imp api.Impairment) error {
	return m.shaper.Apply(nsName, ifname, imp)
}

func (m *Manager) ClearImpairment(nsName, ifname string) error {
	return m.shaper.Clear(nsName, ifname)
}

func (m *Manager) Close() {
	m.lm.Close()
}
