package config

// HostConfig holds per-host overrides for crawling a specific site.
// Keys in the config file are host names as they appear in the URL
// (including a non-standard port if present, e.g. "example.com:8081").
type HostConfig struct {
	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxPages overrides the global page budget for this host.
	// If zero, the global MaxPages is used. Still clamped into [1, 50].
	MaxPages int `yaml:"maxPages,omitempty"`

	// UserAgent overrides the global User-Agent for this host.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .sitequery configuration file.
type File struct {
	// Hosts maps host names to their overrides.
	Hosts map[string]HostConfig `yaml:"hosts,omitempty"`

	// Defaults contains overrides applied to every host unless shadowed
	// by a host-specific entry.
	Defaults HostConfig `yaml:"defaults,omitempty"`
}

// GetHostConfig returns the configuration for a host, merging the
// host-specific entry over the defaults.
func (cf *File) GetHostConfig(host string) HostConfig {
	result := cf.Defaults

	if hc, ok := cf.Hosts[host]; ok {
		if hc.MaxPages != 0 {
			result.MaxPages = hc.MaxPages
		}
		if hc.UserAgent != "" {
			result.UserAgent = hc.UserAgent
		}
		if len(hc.Headers) > 0 {
			// Merge into a fresh map. Writing into the defaults map would
			// leak one host's headers to every host resolved after it.
			merged := make(map[string]string, len(result.Headers)+len(hc.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			result.Headers = merged
			for k, v := range hc.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
