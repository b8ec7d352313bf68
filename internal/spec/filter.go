package spec

import (
	"fmt"
	"regexp"
	"strings"
)

// ImportOption narrows which OpenAPI operations FromOpenAPI turns into
// description operations. Models are always imported.
type ImportOption func(*importConfig)

type importConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[string]struct{}
	pathRes     []*regexp.Regexp
	err         error
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags ...string) ImportOption {
	return func(c *importConfig) {
		c.includeTags = addTrimmed(c.includeTags, tags, strings.TrimSpace)
	}
}

// WithExcludeTags drops operations that have any of the given tags.
func WithExcludeTags(tags ...string) ImportOption {
	return func(c *importConfig) {
		c.excludeTags = addTrimmed(c.excludeTags, tags, strings.TrimSpace)
	}
}

// WithMethods keeps only operations using one of the given HTTP methods.
// Matching is case-insensitive.
func WithMethods(methods ...string) ImportOption {
	return func(c *importConfig) {
		c.methods = addTrimmed(c.methods, methods, func(s string) string {
			return strings.ToLower(strings.TrimSpace(s))
		})
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the regular expressions. An invalid pattern makes the import fail.
func WithPathPatterns(patterns ...string) ImportOption {
	return func(c *importConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				if c.err == nil {
					c.err = &SpecError{Code: InputError, Message: fmt.Sprintf("invalid path pattern %q: %v", p, err), Cause: err}
				}
				continue
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

func newImportConfig(opts []ImportOption) (*importConfig, error) {
	cfg := &importConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg, cfg.err
}

func addTrimmed(set map[string]struct{}, values []string, norm func(string) string) map[string]struct{} {
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(values))
		}
		set[v] = struct{}{}
	}
	return set
}

func (c *importConfig) allow(method, path string, tags []string) bool {
	if len(c.methods) > 0 {
		if _, ok := c.methods[strings.ToLower(method)]; !ok {
			return false
		}
	}
	if len(c.pathRes) > 0 {
		matched := false
		for _, re := range c.pathRes {
			if re.MatchString(path) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return c.allowTags(tags)
}

func (c *importConfig) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}
