package attribution

import (
	"net/url"
	"slices"
	"strings"
)

// ComposeURL returns dest with every parameter in params present in its
// query string. Parameters already present in dest (by name) are left
// untouched: the destination's existing value always wins, and only
// absent names are added with the stored value. An empty mapping returns
// dest unchanged.
//
// Two-tier strategy: destinations that parse as absolute URLs with a host
// get a structured merge via net/url. Everything else (relative paths,
// protocol-relative links, malformed input) falls back to naive
// concatenation: "?" if the destination has no query marker yet, "&"
// otherwise, followed by the encoded pairs. The fallback is what keeps
// rewriting resilient to edge-case anchors; without it those links would
// simply lose attribution.
//
// Output order is deterministic: names are appended in the order of the
// configured tracked list, with any stored names missing from that list
// (config drift between capture and rewrite) appended after it, sorted.
func ComposeURL(dest string, params map[string]string, order []string) string {
	if len(params) == 0 {
		return dest
	}

	names := orderedNames(params, order)

	u, err := url.Parse(dest)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return appendNaive(dest, params, names)
	}

	query := u.Query()
	for _, name := range names {
		if !query.Has(name) {
			query.Set(name, params[name])
		}
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// orderedNames returns the keys of params ordered by the configured
// tracked list, then any leftovers sorted.
func orderedNames(params map[string]string, order []string) []string {
	names := make([]string, 0, len(params))
	for _, name := range order {
		if _, ok := params[name]; ok {
			names = append(names, name)
		}
	}

	var extra []string
	for name := range params {
		if !slices.Contains(order, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)

	return append(names, extra...)
}

// appendNaive appends all pairs to dest without parsing it. The existing
// query string, if any, cannot be reliably inspected here, so no
// deduplication against already-present names is attempted.
func appendNaive(dest string, params map[string]string, names []string) string {
	var b strings.Builder
	b.WriteString(dest)

	sep := "?"
	if strings.Contains(dest, "?") {
		sep = "&"
	}

	for _, name := range names {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(name))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(params[name]))
		sep = "&"
	}

	return b.String()
}
