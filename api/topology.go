package api

// TopoConfig is the YAML topology file accepted by apply and destroy.
type TopoConfig struct {
	Namespaces  []string           `yaml:"namespaces"`
	Links       []LinkRequest      `yaml:"links"`
	Impairments []ImpairmentTarget `yaml:"impairments"`
}
