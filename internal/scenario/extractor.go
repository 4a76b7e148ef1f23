// Package scenario locates scenario files under a results tree and derives their keys.
package scenario

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Named extraction chains selectable from configuration.
const (
	ChainMarkerThenPrefix = "marker_then_prefix"
	ChainPrefixThenMarker = "prefix_then_marker"
	ChainPattern          = "pattern"
)

const (
	// DefaultMarker is the directory segment scenario folders live under.
	DefaultMarker = "trades"
	// DefaultPattern matches a path segment holding an encoded scenario such as s_-3000..-100___x.
	DefaultPattern = `(?:^|/)(s_[^/]+?)(?:\.csv)?(?:/|$)`
)

// DefaultFilePrefixes are stripped from filenames that carry the scenario token.
var DefaultFilePrefixes = []string{"filtered_summary_", "summary_", "setups_", "setup_"}

// PathInfo is a located file relative to the scan root.
type PathInfo struct {
	Rel  string
	Dirs []string
	File string
}

// NewPathInfo splits a slash-separated relative path.
func NewPathInfo(rel string) PathInfo {
	rel = strings.Trim(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/")
	parts := strings.Split(rel, "/")
	return PathInfo{
		Rel:  rel,
		Dirs: parts[:len(parts)-1],
		File: parts[len(parts)-1],
	}
}

// Extractor derives a scenario token from a path. It must be pure.
type Extractor interface {
	Name() string
	Extract(p PathInfo) (string, bool)
}

// Chain tries extractors in order; the first match wins.
type Chain []Extractor

// Extract returns the first token produced by the chain, and the extractor name that produced it.
func (c Chain) Extract(p PathInfo) (token, via string, ok bool) {
	for _, e := range c {
		if t, ok := e.Extract(p); ok && t != "" {
			return t, e.Name(), true
		}
	}
	return "", "", false
}

// Names lists the extractors in order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.Name()
	}
	return out
}

type markerDirExtractor struct {
	marker string
}

// MarkerDirExtractor reads the directory name immediately under the marker segment.
func MarkerDirExtractor(marker string) Extractor {
	return markerDirExtractor{marker: marker}
}

func (m markerDirExtractor) Name() string { return "marker_dir" }

func (m markerDirExtractor) Extract(p PathInfo) (string, bool) {
	for i := 0; i < len(p.Dirs)-1; i++ {
		if p.Dirs[i] == m.marker {
			return p.Dirs[i+1], true
		}
	}
	return "", false
}

type prefixFileExtractor struct {
	prefixes []string
}

// PrefixFileExtractor strips a known prefix and the extension from the filename.
func PrefixFileExtractor(prefixes ...string) Extractor {
	return prefixFileExtractor{prefixes: prefixes}
}

func (p prefixFileExtractor) Name() string { return "prefix_file" }

func (p prefixFileExtractor) Extract(info PathInfo) (string, bool) {
	base := strings.TrimSuffix(info.File, path.Ext(info.File))
	for _, prefix := range p.prefixes {
		if rest, ok := strings.CutPrefix(base, prefix); ok && rest != "" {
			return rest, true
		}
	}
	return "", false
}

type patternExtractor struct {
	re *regexp.Regexp
}

// PatternExtractor returns the first capture group of re matched against the relative path.
func PatternExtractor(re *regexp.Regexp) Extractor {
	return patternExtractor{re: re}
}

func (p patternExtractor) Name() string { return "pattern" }

func (p patternExtractor) Extract(info PathInfo) (string, bool) {
	m := p.re.FindStringSubmatch(info.Rel)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// ChainOptions tune the built-in extractors.
type ChainOptions struct {
	Marker       string
	FilePrefixes []string
	Pattern      string
}

// NewChain builds a named extraction chain.
func NewChain(name string, opts ChainOptions) (Chain, error) {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if len(opts.FilePrefixes) == 0 {
		opts.FilePrefixes = DefaultFilePrefixes
	}
	marker := MarkerDirExtractor(opts.Marker)
	prefix := PrefixFileExtractor(opts.FilePrefixes...)

	switch name {
	case "", ChainMarkerThenPrefix:
		return Chain{marker, prefix}, nil
	case ChainPrefixThenMarker:
		return Chain{prefix, marker}, nil
	case ChainPattern:
		expr := opts.Pattern
		if expr == "" {
			expr = DefaultPattern
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario pattern %q: %w", expr, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("scenario pattern %q needs a capture group", expr)
		}
		return Chain{PatternExtractor(re), marker, prefix}, nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", name)
	}
}
