package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the maps to a directory",
	Long:  "Loads both sources and writes one SVG and GeoJSON per map, a static index.html, a Gini trend chart per county and manifest.yaml.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.Render.OutputDir = out
		}
		if w, _ := cmd.Flags().GetFloat64("width"); w > 0 {
			cfg.Render.Width = w
		}
		if h, _ := cmd.Flags().GetFloat64("height"); h > 0 {
			cfg.Render.Height = h
		}

		atlas, _, err := loadAtlas(cmd.Context(), cfg, "render")
		if err != nil {
			return err
		}

		scene, err := render.NewScene(atlas, cfg.Render.Width, cfg.Render.Height)
		if err != nil {
			return err
		}

		n, err := writeRender(scene, cfg.Render.OutputDir)
		if err != nil {
			return err
		}

		zap.L().Info("render complete",
			zap.String("dir", cfg.Render.OutputDir),
			zap.Int("files", n),
			zap.Int("towns", atlas.Stats.Towns),
			zap.Int("gini_unmatched", atlas.Stats.GiniUnmatched),
		)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "output directory (overrides render.output_dir)")
	renderCmd.Flags().Float64("width", 0, "map width in pixels (overrides render.width)")
	renderCmd.Flags().Float64("height", 0, "map height in pixels (overrides render.height)")
	rootCmd.AddCommand(renderCmd)
}

// writeRender writes every artifact for a scene into dir and returns the
// number of files written.
func writeRender(scene *render.Scene, dir string) (int, error) {
	if err := os.MkdirAll(filepath.Join(dir, "trends"), 0o755); err != nil {
		return 0, eris.Wrap(err, "render: create output dir")
	}

	files := 0
	write := func(name string, data []byte) error {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return eris.Wrapf(err, "render: write %s", name)
		}
		files++
		return nil
	}

	for _, kind := range model.AllMapKinds() {
		svg, err := render.SVG(scene, kind)
		if err != nil {
			return files, err
		}
		if err := write(string(kind)+".svg", svg); err != nil {
			return files, err
		}

		gj, err := render.GeoJSON(scene, kind)
		if err != nil {
			return files, err
		}
		if err := write(string(kind)+".geojson", gj); err != nil {
			return files, err
		}
	}

	var buf bytes.Buffer
	if err := render.WritePage(&buf, scene, false); err != nil {
		return files, err
	}
	if err := write("index.html", buf.Bytes()); err != nil {
		return files, err
	}

	buf.Reset()
	if err := render.NewManifest(scene).WriteYAML(&buf); err != nil {
		return files, err
	}
	if err := write("manifest.yaml", buf.Bytes()); err != nil {
		return files, err
	}

	n, err := writeTrends(scene.Atlas, filepath.Join(dir, "trends"))
	return files + n, err
}

func writeTrends(atlas *choropleth.Atlas, dir string) (int, error) {
	files := 0
	for _, county := range atlas.Gini.Counties() {
		series, _ := atlas.Gini.Series(county)
		var buf bytes.Buffer
		if err := render.WriteTrend(&buf, series, atlas.Gini.LatestYear()); err != nil {
			return files, err
		}
		if err := os.WriteFile(filepath.Join(dir, county+".svg"), buf.Bytes(), 0o644); err != nil {
			return files, eris.Wrapf(err, "render: write trend %s", county)
		}
		files++
	}
	return files, nil
}
