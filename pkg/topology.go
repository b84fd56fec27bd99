package pkg

import (
	"Netsim/api"
	"Netsim/pkg/link"
	"Netsim/pkg/node"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// Topology applies a topology file: namespaces first, then the links
// (concurrently, at most parallel at a time), then the impairments.
type Topology struct {
	m        *Manager
	parallel int
	pairs    singleflight.Group // keyed on api.LinkRequest.Key
	log      logrus.FieldLogger
}

func NewTopology(m *Manager, parallel int, log logrus.FieldLogger) *Topology {
	if parallel < 1 {
		parallel = 1
	}
	return &Topology{
		m:        m,
		parallel: parallel,
		log:      log.WithField("package", "topology"),
	}
}

// LoadTopoConfig reads and validates a YAML topology file.
func LoadTopoConfig(filepath string) (api.TopoConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return api.TopoConfig{}, fmt.Errorf("error reading YAML file: %w", err)
	}

	var topoCfg api.TopoConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&topoCfg); err != nil {
		return api.TopoConfig{}, fmt.Errorf("error unmarshaling YAML file: %v: %w", err, api.ErrInvalidArgument)
	}
	for i := range topoCfg.Links {
		topoCfg.Links[i] = topoCfg.Links[i].WithDefaults()
	}
	if err = ValidateTopoConfig(topoCfg); err != nil {
		return api.TopoConfig{}, err
	}
	return topoCfg, nil
}

// ValidateTopoConfig checks the whole file before anything is touched. Two
// different links must not share an interface name: the cleanup sweep of
// one would tear down the other.
func ValidateTopoConfig(topoCfg api.TopoConfig) error {
	for _, n := range topoCfg.Namespaces {
		if err := node.ValidateName(n); err != nil {
			return err
		}
	}

	owner := make(map[string]string) // interface name -> link key
	for _, l := range topoCfg.Links {
		l = l.WithDefaults()
		if _, err := link.ValidateLinkRequest(l); err != nil {
			return err
		}
		for _, ifname := range []string{l.IfA, l.IfB} {
			if key, taken := owner[ifname]; taken && key != l.Key() {
				return fmt.Errorf("interface %s used by more than one link: %w", ifname, api.ErrInvalidArgument)
			}
			owner[ifname] = l.Key()
		}
	}

	for _, t := range topoCfg.Impairments {
		if _, err := t.Resolve(); err != nil {
			return err
		}
		if err := node.ValidateName(t.Namespace); err != nil {
			return err
		}
		if err := link.ValidateIfName(t.Interface); err != nil {
			return err
		}
	}
	return nil
}

// Apply provisions topoCfg and returns the descriptors of its links in file
// order. The first failure stops scheduling further links; links already
// provisioned are left in place.
func (t *Topology) Apply(ctx context.Context, topoCfg api.TopoConfig) ([]api.LinkDescriptor, error) {
	if err := ValidateTopoConfig(topoCfg); err != nil {
		return nil, err
	}

	for _, n := range topoCfg.Namespaces {
		if err := t.m.EnsureNamespace(n); err != nil {
			return nil, err
		}
	}

	descs := make([]api.LinkDescriptor, len(topoCfg.Links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.parallel)
	for i, l := range topoCfg.Links {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			desc, err := t.CreateVethPair(l)
			if err != nil {
				return err
			}
			descs[i] = desc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, imp := range topoCfg.Impairments {
		params, err := imp.Resolve()
		if err != nil {
			return nil, err
		}
		if err = t.m.ApplyImpairment(imp.Namespace, imp.Interface, params); err != nil {
			return nil, err
		}
	}

	t.log.WithFields(logrus.Fields{
		"namespaces":  len(topoCfg.Namespaces),
		"links":       len(descs),
		"impairments": len(topoCfg.Impairments),
	}).Info("topology applied")
	return descs, nil
}

// CreateVethPair provisions one pair, coalescing concurrent calls for the
// same pair into a single provisioning run.
func (t *Topology) CreateVethPair(req api.LinkRequest) (api.LinkDescriptor, error) {
	req = req.WithDefaults()
	v, err, shared := t.pairs.Do(req.Key(), func() (any, error) {
		return t.m.CreateVethPair(req)
	})
	if shared {
		t.log.WithField("link", req.Key()).Debug("joined in-flight provisioning")
	}
	if err != nil {
		return api.LinkDescriptor{}, err
	}
	return v.(api.LinkDescriptor), nil
}

// Destroy clears the impairments of topoCfg and deletes every namespace it
// names; the veth ends go away with their namespaces. It keeps going after
// failures and reports all of them.
func (t *Topology) Destroy(topoCfg api.TopoConfig) error {
	var errs []error
	for _, imp := range topoCfg.Impairments {
		errs = append(errs, t.m.ClearImpairment(imp.Namespace, imp.Interface))
	}

	seen := make(map[string]bool)
	var names []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range topoCfg.Namespaces {
		add(n)
	}
	for _, l := range topoCfg.Links {
		add(l.NsA)
		add(l.NsB)
	}
	for _, n := range names {
		errs = append(errs, t.m.DeleteNamespace(n))
	}
	return errors.Join(errs...)
}
