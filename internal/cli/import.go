package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"hidecan/internal/app"
	"hidecan/internal/config"
	"hidecan/internal/genome"
	"hidecan/internal/ingest"

	"github.com/spf13/cobra"
)

func newImportCmd(cfgFlag *string) *cobra.Command {
	var (
		trackType string
		name      string
		aesType   string
	)
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Load CSV files into the dataset store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := genome.ParseTrackType(trackType)
			if err != nil {
				return err
			}
			if name != "" && len(args) > 1 {
				return fmt.Errorf("--name only applies to a single file")
			}
			cfg, err := config.Load(configPath(*cfgFlag))
			if err != nil {
				return err
			}
			a, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, path := range args {
				spec := ingest.Spec{Path: path, Type: typ, Name: name, AesType: aesType}
				meta, err := a.Datasets().ImportFile(cmd.Context(), spec)
				if err != nil {
					return fmt.Errorf("importing %s failed: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s id=%s features=%d\n",
					displayName(path), meta.UUID, meta.FeatureCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&trackType, "type", "t", "", "track type: gwas, de, can or custom")
	cmd.Flags().StringVar(&name, "name", "", "dataset name (single file only)")
	cmd.Flags().StringVar(&aesType, "aes-type", "", "style profile tag for custom tracks")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func displayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
