package api

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("link requests", func() {

	It("fills in defaults", func() {
		Expect(LinkRequest{NsA: "a", NsB: "b"}.WithDefaults()).To(Equal(LinkRequest{
			NsA: "a", NsB: "b", IfA: "veth-a", IfB: "veth-b", CIDR: "10.10.0.0/30",
		}))
	})

	It("keeps explicit values", func() {
		req := LinkRequest{NsA: "a", NsB: "b", IfA: "x0", IfB: "x1", CIDR: "192.168.7.0/24"}
		Expect(req.WithDefaults()).To(Equal(req))
	})

	It("keys on both ends and the network", func() {
		a := LinkRequest{NsA: "a", NsB: "b", IfA: "x0", IfB: "x1", CIDR: "10.0.0.0/30"}
		b := a
		b.CIDR = "10.0.0.4/30"
		Expect(a.Key()).NotTo(Equal(b.Key()))
		Expect(a.Key()).To(Equal(a.WithDefaults().Key()))
	})

})
