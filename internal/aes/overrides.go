package aes

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Overrides carries per-request style tweaks keyed by track tag. Parsed
// tolerantly: unknown keys are ignored and scalars are coerced, since the
// JSON typically comes straight from a hand-edited request body.
type Overrides map[string]override

type override struct {
	yLabel     string
	fillScale  string
	lineColour string
	pointShape string
	showName   *bool
}

// ParseOverrides reads override JSON of the form
//
//	{"gwas": {"y_label": "Peaks", "fill_scale": "plasma"},
//	 "qtl":  {"show_name": true}}
//
// Empty input yields nil. Malformed JSON is an error; unknown profile fields
// are silently dropped.
func ParseOverrides(raw string) (Overrides, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("aesthetics overrides: invalid JSON")
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("aesthetics overrides: expected a JSON object")
	}
	out := make(Overrides)
	doc.ForEach(func(key, value gjson.Result) bool {
		tag := strings.ToLower(strings.TrimSpace(key.String()))
		if tag == "" || !value.IsObject() {
			return true
		}
		var ov override
		ov.yLabel = value.Get("y_label").String()
		ov.fillScale = value.Get("fill_scale").String()
		ov.lineColour = value.Get("line_colour").String()
		ov.pointShape = value.Get("point_shape").String()
		if sn := value.Get("show_name"); sn.Exists() {
			b := sn.Bool()
			ov.showName = &b
		}
		out[tag] = ov
		return true
	})
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (o Overrides) apply(tag string, base Profile) Profile {
	ov, ok := o[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return base
	}
	out := base
	if s := strings.TrimSpace(ov.yLabel); s != "" {
		out.YLabel = s
	}
	if s := strings.TrimSpace(ov.fillScale); s != "" {
		out.FillScale = s
	}
	if s := strings.TrimSpace(ov.lineColour); s != "" {
		out.LineColour = s
	}
	if s := strings.TrimSpace(ov.pointShape); s != "" {
		out.PointShape = s
	}
	if ov.showName != nil {
		out.ShowName = *ov.showName
	}
	return out
}
