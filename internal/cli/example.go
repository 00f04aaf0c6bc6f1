package cli

import (
	"fmt"
	"path/filepath"

	"hidecan/internal/example"
	"hidecan/internal/plot"
	"hidecan/internal/service"

	"github.com/spf13/cobra"
)

func newExampleCmd() *cobra.Command {
	var (
		dir    string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write the bundled example datasets as CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := example.WriteCSVFiles(dir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
			}
			if !render {
				return nil
			}

			bundle, err := example.Generate()
			if err != nil {
				return err
			}
			input, err := service.BuildInput(bundle.Datasets(), service.RenderRequest{
				ScoreThr: 2,
				Title:    "Example data",
			}, nil, service.RenderOptions{})
			if err != nil {
				return err
			}
			html, _, err := plot.RenderHTML(input)
			if err != nil {
				return err
			}
			out := filepath.Join(dir, "example.html")
			if err := writeOutput(out, html); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "example-data", "output directory")
	cmd.Flags().BoolVar(&render, "render", false, "also render the example plot as HTML")
	return cmd
}
