package attribution

import (
	"net/url"
	"strings"
)

// MatchesDomain reports whether raw parses as a URL whose host contains
// at least one entry of domains as a case-insensitive substring. Parse
// failure and host-less URLs return false, never an error.
//
// Substring semantics are intentional: a configured "typeform.com" also
// matches "form.typeform.com" without enumerating subdomains. The flip
// side is that unrelated hosts sharing the substring (nottypeform.com)
// match too. That coarse tradeoff is accepted behavior, not a bug to
// tighten here.
func MatchesDomain(raw string, domains []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range domains {
		if domain == "" {
			continue
		}
		if strings.Contains(host, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}
