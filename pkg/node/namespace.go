package node

import (
	"Netsim/api"
	"Netsim/pkg/util"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

// NamespaceManager manages the lifecycle of named network namespaces, that
// is, namespaces bind-mounted below api.NetnsDir the same way "ip netns"
// does. It holds no state: the kernel and the bind mounts are the truth.
type NamespaceManager struct {
	dir string
	log logrus.FieldLogger
}

func NewNamespaceManager(log logrus.FieldLogger) *NamespaceManager {
	return &NamespaceManager{
		dir: api.NetnsDir,
		log: log.WithField("package", "node.namespace"),
	}
}

// Path returns the bind mount path of the named namespace.
func (nm *NamespaceManager) Path(name string) string {
	return filepath.Join(nm.dir, name)
}

// List returns the names of all named network namespaces, sorted.
func (nm *NamespaceManager) List() ([]string, error) {
	entries, err := os.ReadDir(nm.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, util.Surface("list network namespaces", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a named namespace is present.
func (nm *NamespaceManager) Exists(name string) (bool, error) {
	names, err := nm.List()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Ensure creates the named namespace unless it exists already. A concurrent
// creation by someone else counts as success.
func (nm *NamespaceManager) Ensure(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	exists, err := nm.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		nm.log.WithField("netns", name).Debug("network namespace already exists")
		return nil
	}

	err = nm.create(name)
	switch util.Classify(err) {
	case util.Ok:
		nm.log.WithField("netns", name).Info("created network namespace")
		return nil
	case util.AlreadyExists:
		nm.log.WithField("netns", name).Debug("network namespace created concurrently")
		return nil
	default:
		return util.Surface(fmt.Sprintf("create network namespace %s", name), err)
	}
}

// create makes and bind-mounts a new namespace. netns.NewNamed switches the
// calling thread into the new namespace, so this runs on a throw-away locked
// thread that is never unlocked; the runtime terminates it when the go
// routine ends.
func (nm *NamespaceManager) create(name string) error {
	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()

		handle, err := netns.NewNamed(name)
		if err != nil {
			if util.Classify(err) != util.AlreadyExists {
				removePlaceholder(nm.Path(name))
			}
			errCh <- err
			return
		}
		defer handle.Close()
		errCh <- bringLoopbackUp(handle)
	}()
	return <-errCh
}

// removePlaceholder deletes the empty file netns.NewNamed leaves behind when
// its bind mount fails. A path with a namespace mounted on it is kept.
func removePlaceholder(path string) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil || st.Type == unix.NSFS_MAGIC {
		return
	}
	_ = os.Remove(path)
}

func bringLoopbackUp(handle netns.NsHandle) error {
	h, err := netlink.NewHandleAt(handle)
	if err != nil {
		return err
	}
	defer h.Close()

	lo, err := h.LinkByName("lo")
	if err != nil {
		return err
	}
	return h.LinkSetUp(lo)
}

// Delete removes the named namespace; a missing namespace is not an error.
func (nm *NamespaceManager) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	exists, err := nm.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		nm.log.WithField("netns", name).Debug("network namespace not present, nothing to delete")
		return nil
	}

	if err = netns.DeleteNamed(name); err != nil {
		// Someone else may have won the race.
		if still, _ := nm.Exists(name); !still {
			return nil
		}
		return util.Surface(fmt.Sprintf("delete network namespace %s", name), err)
	}
	nm.log.WithField("netns", name).Info("deleted network namespace")
	return nil
}

// Open returns a reference to the named namespace. The caller must close it.
func (nm *NamespaceManager) Open(name string) (netns.NsHandle, error) {
	handle, err := netns.GetFromPath(nm.Path(name))
	if err != nil {
		return netns.None(), util.Surface(fmt.Sprintf("open network namespace %s", name), err)
	}
	return handle, nil
}

// Handle returns a netlink handle whose requests are carried out inside the
// named namespace. The caller must close it.
func (nm *NamespaceManager) Handle(name string) (*netlink.Handle, error) {
	handle, err := nm.Open(name)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	h, err := netlink.NewHandleAt(handle)
	if err != nil {
		return nil, util.Surface(fmt.Sprintf("open netlink handle in network namespace %s", name), err)
	}
	return h, nil
}

// Do runs fn with a netlink handle scoped to the named namespace. The handle
// is released when fn returns, whatever the outcome.
func (nm *NamespaceManager) Do(name string, fn func(h *netlink.Handle) error) error {
	h, err := nm.Handle(name)
	if err != nil {
		return err
	}
	defer h.Close()

	return fn(h)
}

// ValidateName rejects names that cannot be bind-mounted below the
// namespace directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return fmt.Errorf("invalid network namespace name %q: %w", name, api.ErrInvalidArgument)
	}
	return nil
}
