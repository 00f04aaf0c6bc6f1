// Package aes resolves the visual style applied to each track: the built-in
// profile table, user profiles loaded from a hot-reloaded YAML file, and
// per-request overrides.
package aes

import "strings"

// Profile describes how one track is drawn.
type Profile struct {
	ID         string `mapstructure:"id" yaml:"id" json:"id"`
	YLabel     string `mapstructure:"y_label" yaml:"y_label" json:"y_label"`
	FillScale  string `mapstructure:"fill_scale" yaml:"fill_scale" json:"fill_scale"`
	LineColour string `mapstructure:"line_colour" yaml:"line_colour" json:"line_colour"`
	PointShape string `mapstructure:"point_shape" yaml:"point_shape" json:"point_shape"`
	ShowName   bool   `mapstructure:"show_name" yaml:"show_name" json:"show_name"`
}

// DefaultTag is the fallback profile key when a custom track's tag does not
// resolve anywhere.
const DefaultTag = "default"

// Defaults returns the built-in profile table, keyed by track tag.
func Defaults() map[string]Profile {
	return map[string]Profile{
		"gwas": {
			ID:         "gwas",
			YLabel:     "GWAS peaks",
			FillScale:  "viridis",
			LineColour: "#3b82f6",
			PointShape: "circle",
		},
		"de": {
			ID:         "de",
			YLabel:     "DE genes",
			FillScale:  "plasma",
			LineColour: "#f472b6",
			PointShape: "triangle",
		},
		"can": {
			ID:         "can",
			YLabel:     "Candidate genes",
			FillScale:  "mono:#34d399",
			LineColour: "#34d399",
			PointShape: "diamond",
			ShowName:   true,
		},
		DefaultTag: {
			ID:         DefaultTag,
			YLabel:     "Custom track",
			FillScale:  "viridis",
			LineColour: "#fbbf24",
			PointShape: "circle",
		},
	}
}

// Merge overlays override on base field-wise; empty override fields keep the
// base value. ShowName is tri-state through overrides (see Overrides); a
// plain Profile merge treats it as set only when true.
func Merge(base, override Profile) Profile {
	out := base
	if s := strings.TrimSpace(override.YLabel); s != "" {
		out.YLabel = s
	}
	if s := strings.TrimSpace(override.FillScale); s != "" {
		out.FillScale = s
	}
	if s := strings.TrimSpace(override.LineColour); s != "" {
		out.LineColour = s
	}
	if s := strings.TrimSpace(override.PointShape); s != "" {
		out.PointShape = s
	}
	if override.ShowName {
		out.ShowName = true
	}
	return out
}

// Resolver resolves the effective profile for a dataset. Lookup order:
// request overrides, then the registry, then the built-in table, then the
// built-in default.
type Resolver struct {
	registry  *Registry
	overrides Overrides
}

func NewResolver(reg *Registry, ov Overrides) *Resolver {
	return &Resolver{registry: reg, overrides: ov}
}

// Resolve returns the profile for the given track tag ("gwas", "de", "can",
// or a custom aes_type).
func (r *Resolver) Resolve(tag string) Profile {
	tag = strings.ToLower(strings.TrimSpace(tag))
	defaults := Defaults()
	base, ok := defaults[tag]
	if !ok {
		base = defaults[DefaultTag]
		base.ID = tag
	}
	if r.registry != nil {
		if p, found := r.registry.Profile(tag); found {
			base = Merge(base, p)
		}
	}
	if r.overrides != nil {
		base = r.overrides.apply(tag, base)
	}
	return base
}
