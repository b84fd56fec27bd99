package util

import (
	"Netsim/api"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("host pairs", func() {

	DescribeTable("deriving the first two hosts",
		func(cidr, a, b string, prefixLen int) {
			pair, err := ParseHostPair(cidr)
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.A.String()).To(Equal(a))
			Expect(pair.B.String()).To(Equal(b))
			Expect(pair.PrefixLen()).To(Equal(prefixLen))
		},
		Entry("default /30", "10.10.0.0/30", "10.10.0.1", "10.10.0.2", 30),
		Entry("/24", "192.168.7.0/24", "192.168.7.1", "192.168.7.2", 24),
		Entry("non-zero base", "10.10.0.4/30", "10.10.0.5", "10.10.0.6", 30),
		Entry("/16", "172.16.0.0/16", "172.16.0.1", "172.16.0.2", 16),
	)

	It("returns masked addresses", func() {
		pair, err := ParseHostPair("10.10.0.0/30")
		Expect(err).NotTo(HaveOccurred())
		Expect(pair.AddrA().String()).To(Equal("10.10.0.1/30"))
		Expect(pair.AddrB().String()).To(Equal("10.10.0.2/30"))
		Expect(pair.Network.String()).To(Equal("10.10.0.0/30"))
	})

	DescribeTable("rejecting degenerate input",
		func(cidr string) {
			_, err := ParseHostPair(cidr)
			Expect(err).To(MatchError(api.ErrInvalidArgument))
		},
		Entry("/31", "10.10.0.0/31"),
		Entry("/32", "10.10.0.0/32"),
		Entry("host bits set", "10.10.0.1/30"),
		Entry("IPv6", "fd00::/64"),
		Entry("garbage", "10.10.0.0"),
		Entry("empty", ""),
	)

})
