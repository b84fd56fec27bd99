package link

import (
	"Netsim/api"
	"Netsim/pkg/node"
	"Netsim/pkg/util"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ns "github.com/containernetworking/plugins/pkg/ns"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// TCShaper runs the tc binary inside the target namespace's network context.
type TCShaper struct {
	bin string
	nm  *node.NamespaceManager
	log logrus.FieldLogger
}

func NewTCShaper(bin string, nm *node.NamespaceManager, log logrus.FieldLogger) *TCShaper {
	if bin == "" {
		bin = "tc"
	}
	return &TCShaper{
		bin: bin,
		nm:  nm,
		log: log.WithField("package", "link.tc"),
	}
}

// NetemArgs returns the tc arguments installing imp on the root of ifname:
//
//	qdisc replace dev veth-a root netem delay 200ms 50ms loss 5%
//
// delay (and with it jitter) is left out when zero, and so is loss.
func NetemArgs(ifname string, imp api.Impairment) []string {
	args := []string{"qdisc", "replace", "dev", ifname, "root", "netem"}
	if imp.DelayMs > 0 {
		args = append(args, "delay", fmt.Sprintf("%dms", imp.DelayMs))
		if jitter := imp.EffectiveJitterMs(); jitter > 0 {
			args = append(args, fmt.Sprintf("%dms", jitter))
		}
	}
	if imp.LossPercent > 0 {
		args = append(args, "loss", strconv.FormatFloat(imp.LossPercent, 'f', -1, 64)+"%")
	}
	return args
}

// ClearArgs returns the tc arguments removing the root qdisc of ifname.
func ClearArgs(ifname string) []string {
	return []string{"qdisc", "del", "dev", ifname, "root"}
}

func (s *TCShaper) Apply(nsName, ifname string, imp api.Impairment) error {
	if err := validateTarget(nsName, ifname, imp); err != nil {
		return err
	}
	if err := s.exec(nsName, NetemArgs(ifname, imp)); err != nil {
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

func (s *TCShaper) Clear(nsName, ifname string) error {
	if err := validateTarget(nsName, ifname, api.Impairment{}); err != nil {
		return err
	}
	if err := s.exec(nsName, ClearArgs(ifname)); err != nil {
		s.log.WithFields(logrus.Fields{
			"netns":     nsName,
			"interface": ifname,
			"error":     err,
		}).Debug("failed to delete root qdisc (may not exist)")
	}
	return nil
}

// exec runs tc with args synchronously inside nsName.
func (s *TCShaper) exec(nsName string, args []string) error {
	argv := append([]string{s.bin}, args...)
	line := shellquote.Join(argv...)

	netNS, err := ns.GetNS(s.nm.Path(nsName))
	if err != nil {
		var notExist ns.NSPathNotExistErr
		if errors.As(err, &notExist) {
			return fmt.Errorf("failed to enter network namespace %s: %v: %w", nsName, err, api.ErrNotFound)
		}
		return util.Surface(fmt.Sprintf("enter network namespace %s", nsName), err)
	}
	defer netNS.Close()

	s.log.WithField("netns", nsName).Debug(line)
	return netNS.Do(func(_ ns.NetNS) error {
		var stderr bytes.Buffer
		cmd := exec.Command(argv[0], argv[1:]...)
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("failed to run %s: %w: %s", line, err, strings.TrimSpace(stderr.String()))
		}
		return nil
	})
}
