package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hidecan/internal/aes"
	"hidecan/internal/genome"
	"hidecan/internal/ingest"
	"hidecan/internal/logger"
	"hidecan/internal/plot"
	"hidecan/internal/service"

	"github.com/spf13/cobra"
)

type renderOpts struct {
	gwas        []string
	de          []string
	can         []string
	custom      []string // path:tag
	scoreThr    float64
	log2fcThr   float64
	chromosomes []string
	title       string
	subtitle    string
	out         string
	png         bool
	density     bool
	removeEmpty bool
	overrides   string
	profiles    string
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		scoreThr: 2,
		out:      "hidecan.html",
		title:    "HIDECAN plot",
	}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render input CSVs to chart HTML (and optionally PNG) on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, &opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.gwas, "gwas", nil, "GWAS CSV file (repeatable)")
	cmd.Flags().StringArrayVar(&opts.de, "de", nil, "differential expression CSV file (repeatable)")
	cmd.Flags().StringArrayVar(&opts.can, "can", nil, "candidate gene CSV file (repeatable)")
	cmd.Flags().StringArrayVar(&opts.custom, "custom", nil, "custom CSV file as path:tag (repeatable)")
	cmd.Flags().Float64Var(&opts.scoreThr, "score-thr", 2, "minimum -log10(p) score")
	cmd.Flags().Float64Var(&opts.log2fcThr, "log2fc-thr", 0, "minimum |log2 fold change| for DE tracks")
	cmd.Flags().StringSliceVar(&opts.chromosomes, "chromosomes", nil, "restrict to these chromosomes")
	cmd.Flags().StringVar(&opts.title, "title", opts.title, "plot title")
	cmd.Flags().StringVar(&opts.subtitle, "subtitle", "", "plot subtitle")
	cmd.Flags().StringVarP(&opts.out, "out", "o", opts.out, "output HTML path")
	cmd.Flags().BoolVar(&opts.png, "png", false, "also capture a PNG (needs a headless browser)")
	cmd.Flags().BoolVar(&opts.density, "density", false, "overlay a marker density ribbon on the first GWAS track")
	cmd.Flags().BoolVar(&opts.removeEmpty, "remove-empty", false, "drop chromosomes with no surviving features")
	cmd.Flags().StringVar(&opts.overrides, "aes-overrides", "", "aesthetics overrides as JSON")
	cmd.Flags().StringVar(&opts.profiles, "profiles", "", "aesthetics profile YAML")
	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOpts) error {
	specs, err := collectSpecs(opts)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("at least one input file is required (--gwas/--de/--can/--custom)")
	}
	datasets, err := ingest.LoadAll(cmd.Context(), specs)
	if err != nil {
		return err
	}

	var registry *aes.Registry
	if opts.profiles != "" {
		registry, err = aes.NewRegistry(opts.profiles)
		if err != nil {
			return err
		}
	}

	req := service.RenderRequest{
		ScoreThr:    opts.scoreThr,
		Log2FCThr:   opts.log2fcThr,
		Chromosomes: opts.chromosomes,
		RemoveEmpty: opts.removeEmpty,
		Overrides:   json.RawMessage(opts.overrides),
		Title:       opts.title,
		Subtitle:    opts.subtitle,
		PNG:         opts.png,
		ShowDensity: opts.density,
	}
	input, err := service.BuildInput(datasets, req, registry, service.RenderOptions{})
	if err != nil {
		return err
	}

	html, desc, err := plot.RenderHTML(input)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.out, html); err != nil {
		return err
	}
	logger.Infof("wrote %s (%s)", opts.out, desc)

	if opts.png {
		img, err := plot.RenderPNG(cmd.Context(), input, 0)
		if err != nil {
			return fmt.Errorf("png capture failed: %w", err)
		}
		pngPath := strings.TrimSuffix(opts.out, filepath.Ext(opts.out)) + ".png"
		if err := writeOutput(pngPath, img.Bytes); err != nil {
			return err
		}
		logger.Infof("wrote %s", pngPath)
	}
	return nil
}

func collectSpecs(opts *renderOpts) ([]ingest.Spec, error) {
	var specs []ingest.Spec
	for _, p := range opts.gwas {
		specs = append(specs, ingest.Spec{Path: p, Type: genome.TrackGWAS})
	}
	for _, p := range opts.de {
		specs = append(specs, ingest.Spec{Path: p, Type: genome.TrackDE})
	}
	for _, p := range opts.can {
		specs = append(specs, ingest.Spec{Path: p, Type: genome.TrackCAN})
	}
	for _, p := range opts.custom {
		path, tag := splitCustomArg(p)
		if tag == "" {
			return nil, fmt.Errorf("custom input %q needs a tag (path:tag)", p)
		}
		specs = append(specs, ingest.Spec{Path: path, Type: genome.TrackCustom, AesType: tag})
	}
	return specs, nil
}

// splitCustomArg splits path:tag on the last colon so windows drive
// letters survive.
func splitCustomArg(arg string) (path, tag string) {
	idx := strings.LastIndex(arg, ":")
	if idx <= 1 {
		return arg, ""
	}
	return arg[:idx], arg[idx+1:]
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
