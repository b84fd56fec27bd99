package link

import (
	"Netsim/pkg/node"
	"Netsim/pkg/util"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

// LinkManager creates, moves and configures veth pairs. Requests against the
// host (default) namespace go through root; requests inside a named
// namespace go through a handle scoped by the NamespaceManager.
type LinkManager struct {
	root *netlink.Handle
	nm   *node.NamespaceManager
	log  logrus.FieldLogger
}

// NewLinkManager opens the netlink handle for the namespace the process
// currently lives in, which is taken to be the host namespace.
func NewLinkManager(nm *node.NamespaceManager, log logrus.FieldLogger) (*LinkManager, error) {
	root, err := netlink.NewHandle()
	if err != nil {
		return nil, util.Surface("open netlink handle", err)
	}
	return &LinkManager{
		root: root,
		nm:   nm,
		log:  log.WithField("package", "link.veth"),
	}, nil
}

func (lm *LinkManager) Close() {
	lm.root.Close()
}
