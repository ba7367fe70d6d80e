package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "twsmap",
	Short: "Groundwater-change map tile baker and viewer",
	Long: `twsmap visualizes change in total water storage (TWS) on a web map.

It bakes color-coded overlay tiles from a gridded TWS-change dataset and
serves them together with a legend, per-cell time-series graphs and an
interactive viewer page.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("dataset", "./data/tws_change.csv", "CSV dataset of lng,lat,value grid cells")
	rootCmd.PersistentFlags().String("output-dir", "./tiles", "Output directory for baked tiles")
	rootCmd.PersistentFlags().Float64("max-magnitude", 0, "Gradient scale maximum magnitude (0: derive from the dataset)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	for _, name := range []string{"dataset", "output-dir", "max-magnitude", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TWSMAP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
