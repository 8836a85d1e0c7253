package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// shapefileParts are the members of a shapefile bundle that readers use.
var shapefileParts = map[string]bool{
	".shp": true,
	".shx": true,
	".dbf": true,
	".prj": true,
	".cpg": true,
}

// ExtractShapefile extracts the shapefile members of a ZIP archive into
// destDir and returns the path of the .shp file. Archive folders are
// flattened, so members always land directly in destDir. When the archive
// holds several layers, the first .shp by name wins.
func ExtractShapefile(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var layers []string
	extracted := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		ext := strings.ToLower(path.Ext(name))
		if !shapefileParts[ext] || name == "." || name == ".." {
			continue
		}

		// shp.Open derives the .dbf path from the .shp path, so
		// extensions are normalized to lower case.
		dest := filepath.Join(destDir, strings.TrimSuffix(name, path.Ext(name))+ext)
		if err := extractEntry(f, dest); err != nil {
			return "", err
		}
		extracted++
		if ext == ".shp" {
			layers = append(layers, dest)
		}
	}

	if len(layers) == 0 {
		return "", eris.Errorf("zip: no .shp file in %s", filepath.Base(zipPath))
	}
	sort.Strings(layers)
	if len(layers) > 1 {
		zap.L().Warn("zip: archive holds several layers, using the first",
			zap.String("archive", zipPath),
			zap.Strings("layers", layers),
		)
	}

	zap.L().Debug("zip: extracted shapefile",
		zap.String("archive", zipPath),
		zap.Int("files", extracted),
		zap.String("shp", layers[0]),
	)
	return layers[0], nil
}

func extractEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return eris.Wrapf(err, "zip: open entry %s", f.Name)
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "zip: write %s", filepath.Base(dest))
	}
	return nil
}
