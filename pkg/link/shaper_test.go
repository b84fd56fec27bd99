package link

import (
	"Netsim/api"
	"Netsim/pkg/node"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var _ = Describe("shaping parameters", func() {

	DescribeTable("building tc netem arguments",
		func(imp api.Impairment, expected []string) {
			Expect(NetemArgs("veth-a", imp)).To(Equal(append(
				[]string{"qdisc", "replace", "dev", "veth-a", "root", "netem"}, expected...)))
		},
		Entry("delay and loss", api.Impairment{DelayMs: 200, LossPercent: 5},
			[]string{"delay", "200ms", "loss", "5%"}),
		Entry("delay with jitter", api.Impairment{DelayMs: 100, JitterMs: 10},
			[]string{"delay", "100ms", "10ms"}),
		Entry("fractional loss only", api.Impairment{LossPercent: 0.25},
			[]string{"loss", "0.25%"}),
		Entry("jitter without delay", api.Impairment{JitterMs: 50},
			[]string{}),
		Entry("nothing", api.Impairment{},
			[]string{}),
	)

	It("builds tc clear arguments", func() {
		Expect(ClearArgs("veth-b")).To(Equal([]string{"qdisc", "del", "dev", "veth-b", "root"}))
	})

	It("converts to netem attributes in microseconds", func() {
		attrs := NetemAttrs(api.Impairment{DelayMs: 200, JitterMs: 20, LossPercent: 5})
		Expect(attrs.Latency).To(Equal(uint32(200000)))
		Expect(attrs.Jitter).To(Equal(uint32(20000)))
		Expect(attrs.Loss).To(Equal(float32(5)))
	})

	It("drops jitter from netem attributes without a delay", func() {
		attrs := NetemAttrs(api.Impairment{JitterMs: 50})
		Expect(attrs.Latency).To(BeZero())
		Expect(attrs.Jitter).To(BeZero())
	})

	It("keeps the largest delay representable in kernel ticks", func() {
		netem := netlink.NewNetem(netlink.QdiscAttrs{}, NetemAttrs(api.Impairment{
			DelayMs: api.MaxDelayMs, JitterMs: api.MaxDelayMs,
		}))
		Expect(float64(netem.Latency) / netlink.TickInUsec()).To(BeNumerically("~", 1e8, 10))
		Expect(float64(netem.Jitter) / netlink.TickInUsec()).To(BeNumerically("~", 1e8, 10))
	})

	It("points at the netem module when the kernel lacks it", func() {
		err := replaceError("veth-a", unix.ENOENT)
		Expect(err).To(MatchError(unix.ENOENT))
		Expect(err).NotTo(MatchError(api.ErrNotFound))
		Expect(err.Error()).To(ContainSubstring("sch_netem"))

		Expect(replaceError("veth-a", unix.EPERM)).To(MatchError(api.ErrPermission))
	})

	When("selecting a backend", func() {

		nm := node.NewNamespaceManager(quietLogger())

		It("defaults to netlink", func() {
			s, err := NewShaper(api.Config{}, nm, quietLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeAssignableToTypeOf(&NetemShaper{}))
		})

		It("returns the tc shaper", func() {
			s, err := NewShaper(api.Config{Shaper: api.ShaperTC}, nm, quietLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeAssignableToTypeOf(&TCShaper{}))
			Expect(s.(*TCShaper).bin).To(Equal("tc"))
		})

		It("rejects unknown backends", func() {
			_, err := NewShaper(api.Config{Shaper: "ebpf"}, nm, quietLogger())
			Expect(err).To(MatchError(api.ErrInvalidArgument))
		})

	})

	It("rejects invalid targets before touching anything", func() {
		nm := node.NewNamespaceManager(quietLogger())
		for _, s := range []Shaper{NewNetemShaper(nm, quietLogger()), NewTCShaper("", nm, quietLogger())} {
			Expect(s.Apply("", "veth-a", api.Impairment{})).To(MatchError(api.ErrInvalidArgument))
			Expect(s.Apply("ns", "", api.Impairment{})).To(MatchError(api.ErrInvalidArgument))
			Expect(s.Apply("ns", "veth-a", api.Impairment{LossPercent: 150})).To(MatchError(api.ErrInvalidArgument))
			Expect(s.Apply("ns", "veth-a", api.Impairment{DelayMs: 300_000})).To(MatchError(api.ErrInvalidArgument))
			Expect(s.Apply("ns", "veth/a", api.Impairment{})).To(MatchError(api.ErrInvalidArgument))
			Expect(s.Clear("ns", "")).To(MatchError(api.ErrInvalidArgument))
		}
	})

})

var _ = Describe("link requests", func() {

	valid := api.LinkRequest{NsA: "svc-a", NsB: "svc-b"}.WithDefaults()

	It("derives the addressing of a valid request", func() {
		pair, err := ValidateLinkRequest(valid)
		Expect(err).NotTo(HaveOccurred())
		Expect(pair.A.String()).To(Equal("10.10.0.1"))
		Expect(pair.B.String()).To(Equal("10.10.0.2"))
	})

	DescribeTable("rejecting invalid requests",
		func(mutate func(*api.LinkRequest)) {
			req := valid
			mutate(&req)
			_, err := ValidateLinkRequest(req)
			Expect(err).To(MatchError(api.ErrInvalidArgument))
		},
		Entry("identical peers", func(r *api.LinkRequest) { r.IfB = r.IfA }),
		Entry("/31", func(r *api.LinkRequest) { r.CIDR = "10.10.0.0/31" }),
		Entry("/32", func(r *api.LinkRequest) { r.CIDR = "10.10.0.0/32" }),
		Entry("missing namespace", func(r *api.LinkRequest) { r.NsA = "" }),
		Entry("overlong interface", func(r *api.LinkRequest) { r.IfA = "a-very-long-ifname" }),
		Entry("empty interface", func(r *api.LinkRequest) { r.IfB = "" }),
		Entry("interface with a slash", func(r *api.LinkRequest) { r.IfA = "veth/a" }),
	)

	DescribeTable("interface names",
		func(ifname string, ok bool) {
			if ok {
				Expect(ValidateIfName(ifname)).To(Succeed())
			} else {
				Expect(ValidateIfName(ifname)).To(MatchError(api.ErrInvalidArgument))
			}
		},
		Entry("ordinary", "veth-a", true),
		Entry("fifteen bytes", "abcdefghijklmno", true),
		Entry("sixteen bytes", "abcdefghijklmnop", false),
		Entry("dot", ".", false),
		Entry("dotdot", "..", false),
		Entry("slash", "veth/a", false),
		Entry("colon", "veth:1", false),
		Entry("space", "veth a", false),
		Entry("tab", "veth\ta", false),
		Entry("nul", "veth\x00", false),
	)

})
