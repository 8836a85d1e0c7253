// Package fetcher opens map data sources from local paths, HTTP(S) and FTP,
// and reads the tabular and archive formats they ship in.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Opener resolves a source location to its bytes.
type Opener interface {
	// Open returns a reader over the location's contents.
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Localize returns a local file path holding the location's contents,
	// downloading remote locations first.
	Localize(ctx context.Context, location string) (string, error)
}

// Source dispatches locations to the HTTP or FTP fetcher by URL scheme and
// treats everything else as a local path.
type Source struct {
	http    Fetcher
	ftp     Fetcher
	tempDir string
}

// NewSource creates a Source. tempDir receives localized downloads.
func NewSource(httpFetcher, ftpFetcher Fetcher, tempDir string) *Source {
	return &Source{http: httpFetcher, ftp: ftpFetcher, tempDir: tempDir}
}

// Scheme returns the lower-cased URL scheme of a location, or "" for paths.
func Scheme(location string) string {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) < 2 {
		// Single-letter schemes are Windows drive letters.
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// Ext returns the lower-cased file extension of a location, ignoring any
// URL query or fragment.
func Ext(location string) string {
	if Scheme(location) != "" {
		if u, err := url.Parse(location); err == nil {
			return strings.ToLower(path.Ext(u.Path))
		}
	}
	return strings.ToLower(filepath.Ext(location))
}

func (s *Source) fetcherFor(location string) (Fetcher, error) {
	switch Scheme(location) {
	case "":
		return nil, nil
	case "http", "https":
		if s.http == nil {
			return nil, eris.Errorf("fetcher: no http fetcher configured for %s", location)
		}
		return s.http, nil
	case "ftp":
		if s.ftp == nil {
			return nil, eris.Errorf("fetcher: no ftp fetcher configured for %s", location)
		}
		return s.ftp, nil
	case "file":
		return nil, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme in %s", location)
	}
}

// localPath strips a file:// prefix.
func localPath(location string) string {
	if Scheme(location) == "file" {
		if u, err := url.Parse(location); err == nil {
			return u.Path
		}
	}
	return location
}

// Open returns a reader over the location's contents.
func (s *Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	f, err := s.fetcherFor(location)
	if err != nil {
		return nil, err
	}
	if f != nil {
		zap.L().Debug("fetcher: downloading source", zap.String("location", location))
		return f.Download(ctx, location)
	}

	file, err := os.Open(localPath(location))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", location)
	}
	return file, nil
}

// Localize returns a local path for the location. Remote locations are
// downloaded into the temp dir under their base name.
func (s *Source) Localize(ctx context.Context, location string) (string, error) {
	f, err := s.fetcherFor(location)
	if err != nil {
		return "", err
	}
	if f == nil {
		return localPath(location), nil
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create temp dir")
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse location")
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}
	dest := filepath.Join(s.tempDir, name)

	n, err := f.DownloadToFile(ctx, location, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: localize %s", location)
	}

	zap.L().Info("fetcher: localized source",
		zap.String("location", location),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}
