package api

// LinkRequest describes one veth pair connecting two named namespaces.
type LinkRequest struct {
	NsA  string `yaml:"nsA"`
	NsB  string `yaml:"nsB"`
	IfA  string `yaml:"ifA"`  // default veth-a
	IfB  string `yaml:"ifB"`  // default veth-b
	CIDR string `yaml:"cidr"` // default 10.10.0.0/30
}

const (
	DefaultNsA  = "svc-a"
	DefaultNsB  = "svc-b"
	DefaultIfA  = "veth-a"
	DefaultIfB  = "veth-b"
	DefaultCIDR = "10.10.0.0/30"
)

// WithDefaults fills in the interface names and CIDR when left empty.
func (r LinkRequest) WithDefaults() LinkRequest {
	if r.IfA == "" {
		r.IfA = DefaultIfA
	}
	if r.IfB == "" {
		r.IfB = DefaultIfB
	}
	if r.CIDR == "" {
		r.CIDR = DefaultCIDR
	}
	return r
}

// Key identifies the pair for coalescing concurrent identical requests.
func (r LinkRequest) Key() string {
	return r.NsA + "/" + r.IfA + "<->" + r.NsB + "/" + r.IfB + "@" + r.CIDR
}

// LinkDescriptor is a snapshot of a provisioned veth pair. IpA is always the
// first usable host address of CIDR and IpB the second.
type LinkDescriptor struct {
	NsA  string `yaml:"nsA" json:"ns_a"`
	NsB  string `yaml:"nsB" json:"ns_b"`
	IfA  string `yaml:"ifA" json:"if_a"`
	IfB  string `yaml:"ifB" json:"if_b"`
	IpA  string `yaml:"ipA" json:"ip_a"`
	IpB  string `yaml:"ipB" json:"ip_b"`
	CIDR string `yaml:"cidr" json:"cidr"`
}
