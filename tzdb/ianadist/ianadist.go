// Package ianadist downloads and extracts tzdb source files distributed by
// IANA.
//
// Releases are downloaded from the [IANA data server]. Clients are advised
// to store the [ETags] returned in this package and pass them to subsequent
// calls to avoid downloading the same data multiple times.
//
// [ETags]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/ETag
// [IANA data server]: https://www.iana.org/time-zones
package ianadist

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
)

// TZDataFiles maps tzdb source file names to file contents. Contents always
// start with the "# tzdb " comment that marks data and link files, such as
//
//	# tzdb data for Europe and environs
//	# tzdb links for backward compatibility
type TZDataFiles map[string][]byte

// Names returns the file names in lexical order.
func (f TZDataFiles) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Release is a parsed IANA time zone database release.
type Release struct {
	// Version is the version of the release, for example "2024b".
	Version string
	// DataFiles holds the zone, rule and link source files.
	DataFiles TZDataFiles
}

// DefaultClient is used by the top-level functions [Latest] and [Download].
var DefaultClient = &Client{}

// Client downloads the IANA time zone database.
// The zero value is ready to use.
type Client struct {
	// HTTPClient is used for requests. If nil, http.DefaultClient is used.
	// Tests set it to a client with a fake http.RoundTripper.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

const (
	baseURL        = "https://data.iana.org/time-zones/"
	latestDataPath = "tzdata-latest.tar.gz"
	// dataFileMagicHeader identifies data and link files in the archive.
	dataFileMagicHeader = "# tzdb "
	versionFilename     = "version"
	emptyEtag           = ""
)

// ErrNoData is returned by ReadArchive for archives without source files.
var ErrNoData = errors.New("no data files found")

// ReadArchive unpacks a gzip-compressed tar archive as found at
// https://data.iana.org/time-zones/releases/.
func ReadArchive(r io.Reader) (*Release, error) {
	gunzip, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gunzip)

	var (
		result   = Release{DataFiles: make(TZDataFiles)}
		magicBuf = make([]byte, len(dataFileMagicHeader))
	)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		name := path.Clean(header.Name)

		if name == versionFilename {
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read version file: %w", err)
			}
			result.Version = strings.TrimSpace(string(b))
			if result.Version == "" {
				return nil, fmt.Errorf("empty version file")
			}
			continue
		}

		if header.Size < int64(len(dataFileMagicHeader)) {
			continue
		}
		if _, err := io.ReadFull(tr, magicBuf); err != nil {
			return nil, fmt.Errorf("read magic string %q: %w", name, err)
		}
		if string(magicBuf) != dataFileMagicHeader {
			continue
		}
		data := make([]byte, header.Size)
		copy(data, magicBuf)
		if _, err := io.ReadFull(tr, data[len(magicBuf):]); err != nil {
			return nil, fmt.Errorf("read rest of file %q: %w", name, err)
		}
		result.DataFiles[name] = data
	}

	if len(result.DataFiles) == 0 {
		return nil, ErrNoData
	}
	if result.Version == "" {
		return nil, fmt.Errorf("no version found")
	}
	return &result, nil
}

// Latest downloads and unpacks the latest release using DefaultClient.
func Latest(ctx context.Context, etag string) (*Release, string, error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest downloads and unpacks the latest release.
//
// If the server responds with 304 Not Modified, the returned ETag is the
// input and the returned Release and error are both nil. If an error is
// returned, the ETag is empty and the Release is nil.
func (c *Client) Latest(ctx context.Context, etag string) (*Release, string, error) {
	return c.fetch(ctx, latestDataPath, etag)
}

// Version downloads and unpacks the release with the given version, for
// example "2024b". ETag handling is the same as for Latest.
func (c *Client) Version(ctx context.Context, version, etag string) (*Release, string, error) {
	return c.fetch(ctx, "releases/tzdata"+version+".tar.gz", etag)
}

func (c *Client) fetch(ctx context.Context, p, etag string) (*Release, string, error) {
	r, newEtag, err := c.Download(ctx, p, etag)
	if err != nil {
		return nil, emptyEtag, err
	}
	if r == nil {
		return nil, etag, nil // Not modified.
	}
	defer func() {
		// Drain and close so the connection can be reused.
		_, _ = io.ReadAll(r)
		_ = r.Close()
	}()
	release, err := ReadArchive(r)
	if err != nil {
		return nil, emptyEtag, err
	}
	return release, newEtag, nil
}

// Download downloads the resource at path using DefaultClient.
func Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	return DefaultClient.Download(ctx, path, etag)
}

// Download downloads the resource at path, relative to the IANA data
// server, and returns its body and ETag.
//
// If the server responds with 304 Not Modified, the returned ETag is the
// input and the body and error are both nil. Otherwise the caller must
// read and close the body. Status codes other than 200 and 304 are errors.
// ctx controls cancellation and timeouts of the request.
func (c *Client) Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(baseURL, path)
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

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, emptyEtag, fmt.Errorf("GET %q: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotModified {
			return nil, etag, nil
		}
		return nil, emptyEtag, fmt.Errorf("response for %q: unexpected status: %s", u, resp.Status)
	}
	return resp.Body, resp.Header.Get("etag"), nil
}
