package models

// Classification is the browser security tier of a page.
type Classification string

const (
	ClassSecureEV  Classification = "secure-ev"
	ClassSecure    Classification = "secure"
	ClassWarning   Classification = "warning"
	ClassDangerous Classification = "dangerous"
	ClassInsecure  Classification = "insecure"
	ClassNeutral   Classification = "neutral"
	ClassNone      Classification = ""
)

// Pattern is a templated protocol message with a relative sampling weight.
// Info may reference {host} and {addr}.
type Pattern struct {
	Protocol string `yaml:"protocol" json:"protocol"`
	Info     string `yaml:"info" json:"info"`
	Weight   int    `yaml:"weight" json:"weight"`
}

// TrafficSource is a simulated endpoint that packets are exchanged with.
type TrafficSource struct {
	Identity       string         `yaml:"identity" json:"identity"`
	Address        string         `yaml:"address,omitempty" json:"address"`
	Suspicious     bool           `yaml:"suspicious,omitempty" json:"suspicious"`
	Classification Classification `yaml:"classification,omitempty" json:"classification,omitempty"`
	Patterns       []Pattern      `yaml:"patterns" json:"patterns"`
	Group          Group          `yaml:"-" json:"group"`
}

// TotalWeight is the sum of the source's pattern weights.
func (s TrafficSource) TotalWeight() int {
	total := 0
	for _, p := range s.Patterns {
		total += p.Weight
	}
	return total
}
