package link

import (
	"Netsim/api"
	"Netsim/pkg/node"
	"Netsim/pkg/util"
	"fmt"
	"net"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

const maxIfNameLen = 15 // IFNAMSIZ - 1

// ValidateLinkRequest checks a (defaulted) request without touching the
// kernel and returns the derived addressing.
func ValidateLinkRequest(req api.LinkRequest) (util.HostPair, error) {
	for _, n := range []string{req.NsA, req.NsB} {
		if err := node.ValidateName(n); err != nil {
			return util.HostPair{}, err
		}
	}
	for _, ifname := range []string{req.IfA, req.IfB} {
		if err := ValidateIfName(ifname); err != nil {
			return util.HostPair{}, err
		}
	}
	if req.IfA == req.IfB {
		return util.HostPair{}, fmt.Errorf("peer interface names must differ, both are %q: %w", req.IfA, api.ErrInvalidArgument)
	}
	return util.ParseHostPair(req.CIDR)
}

// ValidateIfName rejects interface names the kernel would not accept: empty,
// too long, "." and "..", or containing '/', ':' or whitespace.
func ValidateIfName(ifname string) error {
	if ifname == "" || len(ifname) > maxIfNameLen || ifname == "." || ifname == ".." ||
		strings.ContainsFunc(ifname, func(r rune) bool {
			return r == '/' || r == ':' || r == 0 || unicode.IsSpace(r)
		}) {
		return fmt.Errorf("invalid interface name %q: %w", ifname, api.ErrInvalidArgument)
	}
	return nil
}

// CreateVethPair wires NsA and NsB with a veth pair, addresses both ends
// with the first two hosts of CIDR and adds a route for CIDR on each side.
// The namespaces are created if needed and stale interfaces carrying either
// name are removed first, so a re-run after a partial failure converges on
// the same result. There is no rollback.
func (lm *LinkManager) CreateVethPair(req api.LinkRequest) (api.LinkDescriptor, error) {
	req = req.WithDefaults()
	pair, err := ValidateLinkRequest(req)
	if err != nil {
		return api.LinkDescriptor{}, err
	}
	log := lm.log.WithFields(logrus.Fields{
		"nsA": req.NsA, "nsB": req.NsB, "ifA": req.IfA, "ifB": req.IfB, "cidr": req.CIDR,
	})

	// 1. namespaces
	for _, n := range []string{req.NsA, req.NsB} {
		if err = lm.nm.Ensure(n); err != nil {
			return api.LinkDescriptor{}, err
		}
	}

	// 2. clean slate
	for _, ifname := range []string{req.IfA, req.IfB} {
		if _, err = lm.CleanupInterfaceEverywhere(ifname); err != nil {
			return api.LinkDescriptor{}, err
		}
	}

	// 3. create the pair in the host namespace
	if err = lm.addVethPair(req.IfA, req.IfB); err != nil {
		return api.LinkDescriptor{}, err
	}

	// 4. move each end into its namespace
	if err = lm.moveToNamespace(req.IfA, req.NsA); err != nil {
		return api.LinkDescriptor{}, err
	}
	if err = lm.moveToNamespace(req.IfB, req.NsB); err != nil {
		return api.LinkDescriptor{}, err
	}

	// 5.-7. address, bring up and route both ends
	if err = lm.configureEnd(req.NsA, req.IfA, pair.AddrA(), pair.Network); err != nil {
		return api.LinkDescriptor{}, err
	}
	if err = lm.configureEnd(req.NsB, req.IfB, pair.AddrB(), pair.Network); err != nil {
		return api.LinkDescriptor{}, err
	}

	log.WithFields(logrus.Fields{"ipA": pair.A.String(), "ipB": pair.B.String()}).Info("veth pair ready")
	return api.LinkDescriptor{
		NsA:  req.NsA,
		NsB:  req.NsB,
		IfA:  req.IfA,
		IfB:  req.IfB,
		IpA:  pair.A.String(),
		IpB:  pair.B.String(),
		CIDR: req.CIDR,
	}, nil
}

// addVethPair creates ifA and its peer ifB in the host namespace. A pair
// that already exists, for instance because of a concurrent caller, is fine.
func (lm *LinkManager) addVethPair(ifA, ifB string) error {
	linkAttr := netlink.NewLinkAttrs()
	linkAttr.Name = ifA
	veth := &netlink.Veth{
		LinkAttrs: linkAttr,
		PeerName:  ifB,
	}
	err := lm.root.LinkAdd(veth)
	switch util.Classify(err) {
	case util.Ok:
		return nil
	case util.AlreadyExists:
		lm.log.WithFields(logrus.Fields{"ifA": ifA, "ifB": ifB}).Debug("veth pair already exists")
		return nil
	default:
		return util.Surface(fmt.Sprintf("create veth pair %s/%s", ifA, ifB), err)
	}
}

func (lm *LinkManager) moveToNamespace(ifname, nsName string) error {
	link, err := lm.root.LinkByName(ifname)
	if err != nil {
		return util.Surface(fmt.Sprintf("get link %s", ifname), err)
	}
	handle, err := lm.nm.Open(nsName)
	if err != nil {
		return err
	}
	defer handle.Close()

	if err = lm.root.LinkSetNsFd(link, int(handle)); err != nil {
		return util.Surface(fmt.Sprintf("move %s into network namespace %s", ifname, nsName), err)
	}
	return nil
}

// configureEnd assigns addr to ifname inside nsName, brings it up and routes
// the whole network via addr.
func (lm *LinkManager) configureEnd(nsName, ifname string, addr, network *net.IPNet) error {
	log := lm.log.WithFields(logrus.Fields{"netns": nsName, "interface": ifname})

	return lm.nm.Do(nsName, func(h *netlink.Handle) error {
		link, err := h.LinkByName(ifname)
		if err != nil {
			return util.Surface(fmt.Sprintf("get link %s in network namespace %s", ifname, nsName), err)
		}

		err = h.AddrAdd(link, &netlink.Addr{IPNet: addr})
		switch util.Classify(err) {
		case util.Ok:
		case util.AlreadyExists:
			log.WithField("addr", addr.String()).Debug("address already assigned")
		default:
			return util.Surface(fmt.Sprintf("add address %s to %s", addr, ifname), err)
		}

		if err = h.LinkSetUp(link); err != nil {
			return util.Surface(fmt.Sprintf("set %s up", ifname), err)
		}

		return lm.addRoute(h, link, network, addr.IP)
	})
}

// addRoute routes network via gw on link. EEXIST is only accepted once a
// route for the network on this very interface is confirmed to be in place.
func (lm *LinkManager) addRoute(h *netlink.Handle, link netlink.Link, network *net.IPNet, gw net.IP) error {
	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Dst:       network,
		Gw:        gw,
	}
	err := h.RouteAdd(route)
	switch util.Classify(err) {
	case util.Ok:
		return nil
	case util.AlreadyExists:
		present, lerr := routePresent(h, link.Attrs().Index, network)
		if lerr != nil {
			return util.Surface(fmt.Sprintf("list routes of %s", link.Attrs().Name), lerr)
		}
		if !present {
			return util.Surface(fmt.Sprintf("add route %s via %s", network, gw), err)
		}
		lm.log.WithFields(logrus.Fields{"interface": link.Attrs().Name, "route": network.String()}).
			Debug("route already present")
		return nil
	default:
		return util.Surface(fmt.Sprintf("add route %s via %s", network, gw), err)
	}
}

func routePresent(h *netlink.Handle, linkIndex int, network *net.IPNet) (bool, error) {
	routes, err := h.RouteListFiltered(netlink.FAMILY_V4, &netlink.Route{
		LinkIndex: linkIndex,
		Dst:       network,
	}, netlink.RT_FILTER_OIF|netlink.RT_FILTER_DST)
	if err != nil {
		return false, err
	}
	return len(routes) > 0, nil
}

// CleanupInterfaceEverywhere deletes every interface called ifname in the
// host namespace and in all named namespaces, returning how many were
// removed. Namespaces that cannot be opened, for instance because they
// vanished meanwhile, are skipped.
func (lm *LinkManager) CleanupInterfaceEverywhere(ifname string) (int, error) {
	if err := ValidateIfName(ifname); err != nil {
		return 0, err
	}
	removed, err := lm.deleteIn(lm.root, "", ifname)
	if err != nil {
		return removed, err
	}

	names, err := lm.nm.List()
	if err != nil {
		return removed, err
	}
	for _, nsName := range names {
		h, err := lm.nm.Handle(nsName)
		if err != nil {
			lm.log.WithFields(logrus.Fields{"netns": nsName, "error": err}).
				Debug("skipping network namespace during cleanup")
			continue
		}
		n, err := lm.deleteIn(h, nsName, ifname)
		h.Close()
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// deleteIn removes ifname via h; nsName is only used for logging, empty
// meaning the host namespace.
func (lm *LinkManager) deleteIn(h *netlink.Handle, nsName, ifname string) (int, error) {
	log := lm.log.WithFields(logrus.Fields{"netns": nsName, "interface": ifname})

	link, err := h.LinkByName(ifname)
	switch util.Classify(err) {
	case util.Ok:
	case util.NotFound:
		return 0, nil
	default:
		return 0, util.Surface(fmt.Sprintf("get link %s", ifname), err)
	}

	err = h.LinkDel(link)
	switch util.Classify(err) {
	case util.Ok:
		log.Info("removed stale interface")
		return 1, nil
	case util.NotFound:
		// deleted together with its peer in the meantime
		return 0, nil
	default:
		return 0, util.Surface(fmt.Sprintf("delete link %s", ifname), err)
	}
}
