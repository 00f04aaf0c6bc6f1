// Package plot renders stacked genome track charts: one chart per
// chromosome, one horizontal band per dataset, markers placed by genomic
// position and coloured by significance score.
package plot

import (
	"encoding/base64"

	"hidecan/internal/aes"
	"hidecan/internal/genome"
)

// Track pairs a thresholded dataset with its resolved style.
type Track struct {
	Dataset genome.Dataset
	Profile aes.Profile
}

// Input is everything the renderer needs. Datasets are expected to be
// thresholded and clipped already; Limits drives which chromosomes appear
// and how wide each chart is.
type Input struct {
	Title    string
	Subtitle string
	Tracks   []Track
	Limits   []genome.ChromLimit

	// ShowDensity adds a smoothed marker-density ribbon under the first
	// GWAS track of each chromosome.
	ShowDensity   bool
	DensityBinBP  int64
	DensityWindow int

	// PointSize in pixels; zero means the default.
	PointSize int
}

// ImageResult is a rendered PNG of the track page together with the
// metadata served alongside it: a download filename derived from the plot
// title and the per-chromosome feature summary.
type ImageResult struct {
	Bytes       []byte `json:"-"`
	Base64      string `json:"base64"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

// DataURI returns the PNG as an embeddable data: URI. The base64 form is
// computed lazily from Bytes and cached on the receiver.
func (r *ImageResult) DataURI() string {
	if r == nil {
		return ""
	}
	if r.Base64 == "" {
		if len(r.Bytes) == 0 {
			return ""
		}
		r.Base64 = base64.StdEncoding.EncodeToString(r.Bytes)
	}
	return "data:image/png;base64," + r.Base64
}

const (
	colorBackground    = "#ffffff"
	colorTextPrimary   = "#1f2937"
	colorTextSecondary = "#6b7280"
	colorDensity       = "#9ca3af"

	chartWidthPx      = 1400
	chartHeightPx     = 140
	chartBaseHeightPx = 120
	defaultPointSize  = 9

	defaultDensityBinBP  = 1_000_000
	defaultDensityWindow = 5
)
