package api

const (
	ShaperNetlink = "netlink"
	ShaperTC      = "tc"

	// NetnsDir is where named network namespaces are bind-mounted.
	NetnsDir = "/run/netns"
)

// Config is the process-wide configuration, filled from the root command's
// persistent flags.
type Config struct {
	LogLevel  string
	LogFormat string // text or json
	Shaper    string // netlink or tc
	TCBinary  string
	Parallel  int
}

func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Shaper:    ShaperNetlink,
		TCBinary:  "tc",
		Parallel:  4,
	}
}
