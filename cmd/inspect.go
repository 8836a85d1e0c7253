package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/gini"
	"github.com/sells-group/choropleth-cli/internal/model"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print scale domains and join statistics",
	Long:  "Loads both sources and prints each map's scale domain, the Gini parse and join counts, and the towns that fall back to the neutral color.",
	RunE: func(cmd *cobra.Command, args []string) error {
		atlas, data, err := loadAtlas(cmd.Context(), cfg, "inspect")
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("unmatched")
		formatInspect(os.Stdout, atlas, data.GiniStats, limit)
		return nil
	},
}

func init() {
	inspectCmd.Flags().Int("unmatched", 20, "max unmatched towns to list (0 for none)")
	rootCmd.AddCommand(inspectCmd)
}

// formatInspect writes the domains, counts and unmatched towns to out.
func formatInspect(out io.Writer, atlas *choropleth.Atlas, stats gini.ParseStats, limit int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MAP\tCONTAINER\tDOMAIN")
	_, _ = fmt.Fprintln(w, "---\t---------\t------")
	for _, kind := range model.AllMapKinds() {
		m, ok := atlas.Map(kind)
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%v\n", kind, kind.Container(), m.Scale.Domain())
	}
	_ = w.Flush()

	s := atlas.Stats
	_, _ = fmt.Fprintf(out, "\ntowns: %d (pop 1980: %d, change: %d)\n", s.Towns, s.WithPop1980, s.WithChange)
	_, _ = fmt.Fprintf(out, "max abs change: %.0f\n", atlas.MaxAbsChange())
	_, _ = fmt.Fprintf(out, "gini rows: %d (skipped %d), counties: %d, latest year: %d\n",
		stats.Rows, stats.Skipped, s.Counties, atlas.Gini.LatestYear())
	_, _ = fmt.Fprintf(out, "gini matched: %d, unmatched: %d\n", s.GiniMatched, s.GiniUnmatched)

	if limit <= 0 || s.GiniUnmatched == 0 {
		return
	}
	gm, _ := atlas.Map(model.MapGini)
	_, _ = fmt.Fprintln(out, "\nunmatched towns:")
	listed := 0
	for _, f := range gm.Fills {
		if f.HasValue {
			continue
		}
		if listed == limit {
			_, _ = fmt.Fprintf(out, "  ... and %d more\n", s.GiniUnmatched-listed)
			break
		}
		_, _ = fmt.Fprintf(out, "  %s\t%s\n", f.ID, f.Name)
		listed++
	}
}
