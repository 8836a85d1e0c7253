package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "choropleth",
	Short: "Linked choropleth maps of Massachusetts towns",
	Long: `Joins town boundaries with population counts and county Gini indexes, and
renders three linked maps: population in 1980, population change 1980 to 2010,
and the latest Gini index.

Sources may be local files, http(s):// or ftp:// URLs. Settings come from
./config.yaml (or --config), CHOROPLETH_* environment variables and flags,
later ones winning.`,
	Example: `  choropleth inspect --unmatched 50
  choropleth render -o ./out --width 1200
  choropleth serve -p 9000 --log-level debug
  choropleth render --topology ./data/towns.zip --gini ftp://ftp.example.com/gini.xlsx`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	addPersistentFlags(rootCmd)
}

func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default ./config.yaml)")
	f.String("topology", "", "town boundaries: TopoJSON, .shp or zipped shapefile (overrides sources.topology)")
	f.String("gini", "", "county Gini table: CSV or .xlsx (overrides sources.gini)")
	f.String("log-level", "", "debug, info, warn or error (overrides log.level)")
	f.Bool("log-console", false, "human-readable logs instead of JSON")
}

// setup loads configuration, applies persistent flag overrides and installs
// the global logger.
func setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.LoadFile(path)
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	applyOverrides(cmd, c)
	cfg = c

	if err := config.InitLogger(cfg.Log); err != nil {
		return eris.Wrap(err, "init logger")
	}
	return nil
}

// applyOverrides copies the persistent flags that were set onto c.
func applyOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if v, _ := flags.GetString("topology"); v != "" {
		c.Sources.Topology = v
	}
	if v, _ := flags.GetString("gini"); v != "" {
		c.Sources.Gini = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		c.Log.Level = v
	}
	if on, _ := flags.GetBool("log-console"); on {
		c.Log.Format = "console"
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
