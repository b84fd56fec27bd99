package cmd

import (
	"Netsim/api"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("root command", func() {

	It("configures the logger from flags", func() {
		log := logrus.New()
		c := api.DefaultConfig()
		c.LogLevel = "debug"
		c.LogFormat = "json"
		Expect(configureLogger(log, c)).To(Succeed())
		Expect(log.GetLevel()).To(Equal(logrus.DebugLevel))
		Expect(log.Formatter).To(BeAssignableToTypeOf(&logrus.JSONFormatter{}))
	})

	It("rejects unknown log settings", func() {
		c := api.DefaultConfig()
		c.LogLevel = "chatty"
		Expect(configureLogger(logrus.New(), c)).To(MatchError(api.ErrInvalidArgument))

		c = api.DefaultConfig()
		c.LogFormat = "xml"
		Expect(configureLogger(logrus.New(), c)).To(MatchError(api.ErrInvalidArgument))
	})

	It("registers every command", func() {
		var names []string
		for _, c := range rootCmd.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ContainElements(
			"create-namespaces", "delete-namespace", "cleanup", "create-veth-pair",
			"impair", "clear", "apply", "destroy", "show"))
	})

	It("defaults the veth pair flags", func() {
		Expect(createVethPairCmd.Flags().Lookup("if-a").DefValue).To(Equal("veth-a"))
		Expect(createVethPairCmd.Flags().Lookup("if-b").DefValue).To(Equal("veth-b"))
		Expect(createVethPairCmd.Flags().Lookup("cidr").DefValue).To(Equal("10.10.0.0/30"))
	})

})
