// Package ianadist downloads and extracts tzdb releases distributed by IANA,
// the input of `reltime compile` and `reltime fetch`.
//
// Releases are downloaded from the [IANA data server]. Callers should keep
// the [ETag] returned here and pass it to later calls so that an unchanged
// release is not downloaded again.
//
// [ETag]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/ETag
// [IANA data server]: https://www.iana.org/time-zones
package ianadist

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// DataFiles maps tzdb data file names such as "europe" to their contents.
// Every file starts with the line prefix "# tzdb data for".
type DataFiles map[string][]byte

// Release is an unpacked tzdb release.
type Release struct {
	// Version is the release name, for example "2024a".
	Version string
	// DataFiles holds the region files.
	DataFiles DataFiles
}

// Names returns the data file names in lexical order.
func (r *Release) Names() []string {
	return slices.Sorted(maps.Keys(r.DataFiles))
}

// Sources returns the data file contents in the order of Names, ready for
// tzc.CompileBytes.
func (r *Release) Sources() [][]byte {
	names := r.Names()
	srcs := make([][]byte, 0, len(names))
	for _, name := range names {
		srcs = append(srcs, r.DataFiles[name])
	}
	return srcs
}

// DefaultClient is used by the top-level functions Latest and Download.
var DefaultClient = &Client{}

// Client downloads tzdb releases. The zero value is ready to use.
type Client struct {
	// HTTPClient sends the requests. If nil, http.DefaultClient is used.
	// Tests replace its Transport to avoid network calls.
	HTTPClient *http.Client
	// BaseURL is the directory holding the releases. If empty, the IANA
	// data server is used.
	BaseURL string
	// Logger receives download events. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return defaultBaseURL
	}
	return c.BaseURL
}

const (
	defaultBaseURL = "https://data.iana.org/time-zones/"
	// LatestPath is the archive of the most recent release, relative to
	// the base URL.
	LatestPath = "tzdata-latest.tar.gz"

	dataFileMagic   = "# tzdb data for"
	versionFilename = "version"
	emptyEtag       = ""
)

// ErrNoData is returned for archives without tzdb data files.
var ErrNoData = errors.New("ianadist: no data files found")

// ReadArchive unpacks a release from a gzip-compressed tar archive as found
// at https://data.iana.org/time-zones/releases/.
func ReadArchive(r io.Reader) (*Release, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	var (
		result   = Release{DataFiles: make(DataFiles)}
		magicBuf = make([]byte, len(dataFileMagic))
	)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		if header.Name == versionFilename {
			version, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read version file: %w", err)
			}
			result.Version = strings.TrimSpace(string(version))
			if result.Version == "" {
				return nil, errors.New("empty version file")
			}
			continue
		}

		if header.Size < int64(len(dataFileMagic)) {
			continue
		}
		// Only the magic decides whether this is a data file.
		if _, err := io.ReadFull(tr, magicBuf); err != nil {
			return nil, fmt.Errorf("read magic of %q: %w", header.Name, err)
		}
		if string(magicBuf) != dataFileMagic {
			continue
		}

		data := make([]byte, header.Size)
		copy(data, magicBuf)
		if _, err := io.ReadFull(tr, data[len(dataFileMagic):]); err != nil {
			return nil, fmt.Errorf("read rest of %q: %w", header.Name, err)
		}
		result.DataFiles[header.Name] = data
	}

	if len(result.DataFiles) == 0 {
		return nil, ErrNoData
	}
	if result.Version == "" {
		return nil, errors.New("no version found")
	}
	return &result, nil
}

// Latest downloads and unpacks the latest release.
//
// If the server answers 304 Not Modified, the returned Release is nil and
// the returned ETag equals etag. On error the returned ETag is empty.
//
// Latest is a wrapper around DefaultClient.Latest.
func Latest(ctx context.Context, etag string) (*Release, string, error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest downloads and unpacks the latest release.
//
// If the server answers 304 Not Modified, the returned Release is nil and
// the returned ETag equals etag. On error the returned ETag is empty.
func (c *Client) Latest(ctx context.Context, etag string) (*Release, string, error) {
	body, newEtag, err := c.Download(ctx, LatestPath, etag)
	if err != nil {
		return nil, emptyEtag, err
	}
	if body == nil {
		return nil, etag, nil
	}
	defer func() {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()

	release, err := ReadArchive(body)
	if err != nil {
		return nil, emptyEtag, err
	}
	c.logger().Info("downloaded tzdata release", "version", release.Version, "files", len(release.DataFiles), "etag", newEtag)
	return release, newEtag, nil
}

// Download is a wrapper around DefaultClient.Download.
func Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	return DefaultClient.Download(ctx, path, etag)
}

// Download fetches path relative to the base URL.
//
// If etag is set and the server answers 304 Not Modified, the returned body
// is nil and the returned ETag equals etag. Otherwise the caller must read
// and close the body. On error the returned ETag is empty and the body nil.
// Status codes other than 200 and 304 are errors.
func (c *Client) Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(c.baseURL(), path)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("join URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("create request for %q: %w", u, err)
	}
	if etag != emptyEtag {
		req.Header.Set("If-None-Match", etag)
	}

	log := c.logger().With("url", u)
	log.Debug("requesting", "etag", etag)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("GET %q: %w", u, err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.Body != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		if resp.StatusCode == http.StatusNotModified {
			log.Info("not modified", "etag", etag)
			return nil, etag, nil
		}
		return nil, emptyEtag, fmt.Errorf("response for %q: unexpected status: %s", u, resp.Status)
	}
	return resp.Body, resp.Header.Get("ETag"), nil
}
