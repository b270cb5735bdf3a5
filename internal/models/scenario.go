package models

// Page is the metadata the simulated browser publishes for one page.
type Page struct {
	URL           string         `yaml:"url" json:"url"`
	Title         string         `yaml:"title,omitempty" json:"title,omitempty"`
	SecurityLevel Classification `yaml:"securityLevel" json:"securityLevel"`
	Security      PageSecurity   `yaml:"security" json:"security"`
}

// PageSecurity describes the transport security of a page.
type PageSecurity struct {
	IsHTTPS     bool         `yaml:"isHttps" json:"isHttps"`
	Certificate *Certificate `yaml:"certificate,omitempty" json:"certificate,omitempty"`
}

// Certificate is the simulated TLS certificate shown for a page.
type Certificate struct {
	Valid              bool   `yaml:"valid" json:"valid"`
	Trusted            bool   `yaml:"trusted" json:"trusted"`
	ExtendedValidation bool   `yaml:"extendedValidation,omitempty" json:"extendedValidation,omitempty"`
	SelfSigned         bool   `yaml:"selfSigned,omitempty" json:"selfSigned,omitempty"`
	Issuer             string `yaml:"issuer,omitempty" json:"issuer,omitempty"`
	Algorithm          string `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
}

// Email is the metadata the simulated mail client publishes for one message.
type Email struct {
	Sender     string `yaml:"sender" json:"sender"`
	Subject    string `yaml:"subject,omitempty" json:"subject,omitempty"`
	Suspicious bool   `yaml:"suspicious" json:"suspicious"`
}
