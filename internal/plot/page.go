package plot

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"hidecan/internal/genome"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHTML builds the stacked track page and renders it to HTML bytes.
// The description summarises what was drawn, one entry per chromosome.
func RenderHTML(input Input) ([]byte, string, error) {
	page, desc, err := BuildPage(input)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), desc, nil
}

// BuildPage assembles one chart per chromosome into a flex page.
func BuildPage(input Input) (*components.Page, string, error) {
	if len(input.Tracks) == 0 {
		return nil, "", fmt.Errorf("no tracks to draw")
	}
	if len(input.Limits) == 0 {
		return nil, "", fmt.Errorf("no chromosomes to draw")
	}
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	descriptions := make([]string, 0, len(input.Limits))

	for i, limit := range input.Limits {
		chart, count := buildChromosomeChart(input, limit, i == 0)
		if count == 0 {
			continue
		}
		descriptions = append(descriptions, fmt.Sprintf("%s: %d features", limit.Chromosome, count))
		page.AddCharts(chart)
	}
	if len(page.Charts) == 0 {
		return nil, "", fmt.Errorf("no features survive on any chromosome")
	}
	sort.Strings(descriptions)
	return page, strings.Join(descriptions, " | "), nil
}

func buildChromosomeChart(input Input, limit genome.ChromLimit, first bool) (*charts.Scatter, int) {
	nTracks := len(input.Tracks)
	pointSize := input.PointSize
	if pointSize <= 0 {
		pointSize = defaultPointSize
	}
	height := chartBaseHeightPx + nTracks*chartHeightPx

	title := limit.Chromosome
	if first && strings.TrimSpace(input.Title) != "" {
		title = fmt.Sprintf("%s: %s", strings.TrimSpace(input.Title), limit.Chromosome)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", height),
			BackgroundColor: colorBackground,
			PageTitle:       strings.TrimSpace(input.Title),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         title,
			Subtitle:      subtitleFor(input, first),
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 16},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "0", Right: "0", TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			Name:      "position (Mb)",
			Max:       mb(limit.Length),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "value",
			Min:       0,
			Max:       nTracks + 1,
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
	)

	total := 0
	for idx, track := range input.Tracks {
		// first track renders at the top band
		y := float64(nTracks - idx)
		buckets, n := buildTrackSeries(track, limit, y, pointSize)
		total += n
		for _, b := range buckets {
			// sub-series share one name so the legend shows a single
			// entry that toggles the whole track
			so := append(seriesOptions(track), charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       b.color,
				BorderColor: track.Profile.LineColour,
			}))
			scatter.AddSeries(seriesName(track), b.data, so...)
		}
	}

	if input.ShowDensity {
		if line := buildDensityLine(input, limit); line != nil {
			scatter.Overlap(line)
		}
	}
	return scatter, total
}

func subtitleFor(input Input, first bool) string {
	if !first {
		return ""
	}
	return strings.TrimSpace(input.Subtitle)
}

func seriesName(track Track) string {
	label := strings.TrimSpace(track.Profile.YLabel)
	if label == "" {
		label = track.Dataset.Name
	}
	return label
}

func seriesOptions(track Track) []charts.SeriesOpts {
	var so []charts.SeriesOpts
	if track.Profile.ShowName {
		so = append(so, charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}",
			Position:  "top",
			Color:     colorTextPrimary,
		}))
	}
	return so
}

// fillBuckets is how many score bands a track is split into. Scatter
// points take their colour from the series they sit in, so the fill scale
// is applied by slicing each track into banded sub-series.
const fillBuckets = 6

type seriesBucket struct {
	color string
	data  []opts.ScatterData
}

func buildTrackSeries(track Track, limit genome.ChromLimit, y float64, pointSize int) ([]seriesBucket, int) {
	minScore, maxScore := scoreBounds(track.Dataset.Features)
	buckets := make([]seriesBucket, 0, fillBuckets)
	byColor := make(map[string]int, fillBuckets)
	total := 0
	for _, f := range track.Dataset.Features {
		if !strings.EqualFold(f.Chromosome, limit.Chromosome) || f.Position > limit.Length {
			continue
		}
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("%s:%s Mb (score %s)", f.Chromosome, FormatMb(f.Position), FormatScore(f.Score))
		} else if f.HasInterval() {
			name = fmt.Sprintf("%s %s-%s Mb", name, FormatMb(f.Start), FormatMb(f.End))
		}
		color := FillColor(track.Profile.FillScale, bandScore(f.Score, minScore, maxScore), minScore, maxScore)
		i, ok := byColor[color]
		if !ok {
			i = len(buckets)
			byColor[color] = i
			buckets = append(buckets, seriesBucket{color: color})
		}
		buckets[i].data = append(buckets[i].data, opts.ScatterData{
			Name:       name,
			Value:      []interface{}{mb(f.Position), y},
			Symbol:     symbolFor(track.Profile.PointShape),
			SymbolSize: pointSize,
		})
		total++
	}
	return buckets, total
}

// bandScore snaps a score to the midpoint of its band. Mono fill scales
// ignore the score, so their buckets collapse to one by colour.
func bandScore(score, min, max float64) float64 {
	if max <= min {
		return min
	}
	t := (score - min) / (max - min)
	band := int(t * fillBuckets)
	if band >= fillBuckets {
		band = fillBuckets - 1
	}
	return min + (float64(band)+0.5)/fillBuckets*(max-min)
}

func buildDensityLine(input Input, limit genome.ChromLimit) *charts.Line {
	var gwas *genome.Dataset
	for i := range input.Tracks {
		if input.Tracks[i].Dataset.Type == genome.TrackGWAS {
			gwas = &input.Tracks[i].Dataset
			break
		}
	}
	if gwas == nil {
		return nil
	}
	binSize := input.DensityBinBP
	if binSize <= 0 {
		binSize = defaultDensityBinBP
	}
	window := input.DensityWindow
	if window <= 0 {
		window = defaultDensityWindow
	}
	bins := genome.BinCounts(gwas.Features, limit.Chromosome, limit.Length, binSize)
	bins = genome.SmoothDensity(bins, window)
	maxCount := 0.0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		return nil
	}
	data := make([]opts.LineData, 0, len(bins))
	for _, b := range bins {
		// ribbon occupies the bottom band, below the first track
		data = append(data, opts.LineData{Value: []interface{}{mb(b.Start), 0.8 * b.Count / maxCount}})
	}
	line := charts.NewLine()
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Smooth: opts.Bool(true)}),
	)
	line.AddSeries("Marker density", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorDensity, Width: 1}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorDensity, Opacity: opts.Float(0.25)}),
	)
	return line
}

func scoreBounds(features []genome.Feature) (minVal, maxVal float64) {
	if len(features) == 0 {
		return 0, 0
	}
	minVal = features[0].Score
	maxVal = features[0].Score
	for _, f := range features {
		if f.Score < minVal {
			minVal = f.Score
		}
		if f.Score > maxVal {
			maxVal = f.Score
		}
	}
	return minVal, maxVal
}

func symbolFor(shape string) string {
	switch strings.ToLower(strings.TrimSpace(shape)) {
	case "triangle":
		return "triangle"
	case "diamond":
		return "diamond"
	case "rect":
		return "rect"
	case "pin":
		return "pin"
	case "arrow":
		return "arrow"
	default:
		return "circle"
	}
}

func mb(bp int64) float64 {
	return float64(bp) / 1_000_000
}
