package link

import (
	"Netsim/api"
	"Netsim/pkg/node"
	"Netsim/pkg/util"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const netemLimit = 1000 // packets, the tc default

// NetemShaper talks RTNETLINK directly:
//
//	tc qdisc replace dev eth0 root handle 1: netem delay 100ms 10ms loss 5%
type NetemShaper struct {
	nm  *node.NamespaceManager
	log logrus.FieldLogger
}

func NewNetemShaper(nm *node.NamespaceManager, log logrus.FieldLogger) *NetemShaper {
	return &NetemShaper{
		nm:  nm,
		log: log.WithField("package", "link.qdisc"),
	}
}

// NetemAttrs converts an Impairment into netem attributes. Latency and
// jitter are in microseconds; jitter is dropped when there is no delay.
func NetemAttrs(imp api.Impairment) netlink.NetemQdiscAttrs {
	return netlink.NetemQdiscAttrs{
		Latency: imp.DelayMs * 1000,
		Jitter:  imp.EffectiveJitterMs() * 1000,
		Loss:    float32(imp.LossPercent),
		Limit:   netemLimit,
	}
}

func (s *NetemShaper) Apply(nsName, ifname string, imp api.Impairment) error {
	if err := validateTarget(nsName, ifname, imp); err != nil {
		return err
	}

	err := s.nm.Do(nsName, func(h *netlink.Handle) error {
		link, err := h.LinkByName(ifname)
		if err != nil {
			return util.Surface(fmt.Sprintf("get link %s in network namespace %s", ifname, nsName), err)
		}

		qdisc := netlink.NewNetem(netlink.QdiscAttrs{
			LinkIndex: link.Attrs().Index,
			Handle:    netlink.MakeHandle(1, 0), // 1:
			Parent:    netlink.HANDLE_ROOT,
		}, NetemAttrs(imp))

		if err := h.QdiscReplace(qdisc); err != nil {
			return replaceError(ifname, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"netns":     nsName,
		"interface": ifname,
		"delay":     imp.DelayMs,
		"jitter":    imp.EffectiveJitterMs(),
		"loss":      imp.LossPercent,
	}).Info("applied impairment")
	return nil
}

// replaceError surfaces a failed QdiscReplace. The link is known to exist at
// that point, so ENOENT means the kernel does not know the netem qdisc kind.
func replaceError(ifname string, err error) error {
	if errors.Is(err, unix.ENOENT) {
		return fmt.Errorf("failed to replace netem qdisc on %s: netem unavailable, is sch_netem loaded?: %w", ifname, err)
	}
	return util.Surface(fmt.Sprintf("replace netem qdisc on %s", ifname), err)
}

func (s *NetemShaper) Clear(nsName, ifname string) error {
	if err := validateTarget(nsName, ifname, api.Impairment{}); err != nil {
		return err
	}
	log := s.log.WithFields(logrus.Fields{"netns": nsName, "interface": ifname})

	err := s.nm.Do(nsName, func(h *netlink.Handle) error {
		link, err := h.LinkByName(ifname)
		if err != nil {
			return err
		}
		qdiscs, err := h.QdiscList(link)
		if err != nil {
			return err
		}
		for _, q := range qdiscs {
			attrs := q.Attrs()
			// handle 0 is the kernel's default (noqueue), which cannot be deleted
			if attrs.Parent != netlink.HANDLE_ROOT || attrs.Handle == 0 {
				continue
			}
			if err := h.QdiscDel(q); err != nil && util.Classify(err) != util.NotFound {
				return err
			}
			log.WithField("qdisc", q.Type()).Info("cleared impairment")
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Debug("failed to clear root qdisc (may not exist)")
	}
	return nil
}
