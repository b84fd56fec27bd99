// Package nettest helps tests that need to create real network namespaces and
// interfaces. Such tests are skipped unless the process may do so.
package nettest

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"sync"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/vishvananda/netns"

	. "github.com/onsi/ginkgo/v2" //nolint:staticcheck // ST1001 rule does not apply
)

var (
	probeOnce sync.Once
	probeErr  error
)

// RequireNetAdmin skips the current test unless network namespaces can be
// created and deleted.
func RequireNetAdmin() {
	GinkgoHelper()

	if os.Geteuid() != 0 {
		Skip("needs root")
	}
	probeOnce.Do(func() {
		name := NamespaceName()
		errCh := make(chan error, 1)
		go func() {
			runtime.LockOSThread() // never unlocked, the thread is tainted
			h, err := netns.NewNamed(name)
			if err != nil {
				errCh <- err
				return
			}
			_ = h.Close()
			errCh <- netns.DeleteNamed(name)
		}()
		probeErr = <-errCh
	})
	if probeErr != nil {
		Skip(fmt.Sprintf("cannot manage network namespaces: %v", probeErr))
	}
}

// NamespaceName returns a fresh, unlikely to collide namespace name.
func NamespaceName() string {
	return "nst-" + petname.Generate(2, "-") + fmt.Sprintf("-%04x", rand.IntN(1<<16))
}

// IfName returns a fresh interface name short enough for the kernel.
func IfName() string {
	return fmt.Sprintf("nst%06x", rand.IntN(1<<24))
}
