package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hydroviz/twsmap/internal/legend"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the color legend",
	Long:  `Print the legend for the current gradient scale as a tab-separated table or JSON.`,
	RunE:  runLegend,
}

func init() {
	rootCmd.AddCommand(legendCmd)

	legendCmd.Flags().Int("steps", 10, "Number of legend intervals (must be even)")
	legendCmd.Flags().String("unit", "cm", "Unit suffix for legend labels")
	legendCmd.Flags().String("format", "table", "Output format: table or json")
	legendCmd.Flags().StringP("output", "o", "-", "Output file ('-' for stdout)")

	for _, name := range []string{"steps", "unit", "format", "output"} {
		if err := viper.BindPFlag("legend."+name, legendCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

func runLegend(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	format := viper.GetString("legend.format")
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid format %q: must be 'table' or 'json'", format)
	}

	grad, err := loadGradient()
	if err != nil {
		return err
	}

	entries, err := legend.Build(grad, viper.GetInt("legend.steps"), viper.GetString("legend.unit"))
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := viper.GetString("legend.output"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return legend.WriteTable(out, entries)
}
