package util

import (
	"Netsim/api"
	"errors"
	"fmt"
	"os"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("outcomes", func() {

	DescribeTable("classifying errors",
		func(err error, outcome Outcome) {
			Expect(Classify(err)).To(Equal(outcome))
		},
		Entry("nil", nil, Ok),
		Entry("EEXIST", unix.EEXIST, AlreadyExists),
		Entry("wrapped EEXIST", fmt.Errorf("add: %w", unix.EEXIST), AlreadyExists),
		Entry("EEXIST from the VFS", &os.PathError{Op: "open", Path: "/run/netns/x", Err: unix.EEXIST}, AlreadyExists),
		Entry("missing link", netlink.LinkNotFoundError{}, NotFound),
		Entry("ENODEV", unix.ENODEV, NotFound),
		Entry("ENOENT", unix.ENOENT, NotFound),
		Entry("ESRCH", unix.ESRCH, NotFound),
		Entry("EPERM", unix.EPERM, Fatal),
		Entry("anything else", errors.New("boom"), Fatal),
	)

	It("tags surfaced errors", func() {
		Expect(Surface("x", nil)).To(Succeed())

		err := Surface("create namespace", unix.EPERM)
		Expect(err).To(MatchError(api.ErrPermission))
		Expect(err).To(MatchError(unix.EPERM))
		Expect(err.Error()).To(HavePrefix("failed to create namespace"))

		Expect(Surface("get link", unix.ENODEV)).To(MatchError(api.ErrNotFound))
		Expect(Surface("add link", unix.EEXIST)).To(MatchError(api.ErrAlreadyExists))
		Expect(Surface("add link", unix.ENOBUFS)).To(MatchError(api.ErrPermission))

		err = Surface("whatever", errors.New("boom"))
		Expect(err).NotTo(MatchError(api.ErrPermission))
		Expect(err).NotTo(MatchError(api.ErrNotFound))
	})

	It("names outcomes", func() {
		Expect(AlreadyExists.String()).To(Equal("already exists"))
		Expect(Fatal.String()).To(Equal("fatal"))
	})

})
