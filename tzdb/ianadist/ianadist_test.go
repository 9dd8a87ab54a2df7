package ianadist

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-reltime/tzc"
)

// roundTripperFunc is a function that implements the http.RoundTripper interface.
// Useful to fake a http.Client with fakeClient.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (fn roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func fakeClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const northamerica = `# tzdb data for North and Central America and environs
Rule US 2007 max - Mar Sun>=8 2:00 1:00 D
Rule US 2007 max - Nov Sun>=1 2:00 0 S
Zone America/New_York -5:00 US E%sT
Link America/New_York US/Eastern
`

const etcetera = `# tzdb data for ships at sea and other miscellany
Zone Etc/UTC 0 - UTC
`

type file struct {
	name, body string
	dir        bool
}

// archive builds a gzip-compressed tar archive in memory.
func archive(t *testing.T, files ...file) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, f := range files {
		h := &tar.Header{Name: f.name, Mode: 0o644, Size: int64(len(f.body)), Typeflag: tar.TypeReg}
		if f.dir {
			h = &tar.Header{Name: f.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(h); err != nil {
			t.Fatal(err)
		}
		if !f.dir {
			if _, err := tw.Write([]byte(f.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testArchive(t *testing.T) []byte {
	t.Helper()
	return archive(t,
		file{name: "version", body: "2024b\n"},
		file{name: "README", body: "Time zone database, see https://www.iana.org/time-zones.\n"},
		file{name: "a", body: "#"},
		file{name: "theory.html", dir: true},
		file{name: "northamerica", body: northamerica},
		file{name: "etcetera", body: etcetera},
	)
}

func TestReadArchive(t *testing.T) {
	release, err := ReadArchive(bytes.NewReader(testArchive(t)))
	if err != nil {
		t.Fatalf("ReadArchive(...): unexpected non-nil error: %v", err)
	}
	if release.Version != "2024b" {
		t.Errorf("Version = %q, want %q", release.Version, "2024b")
	}
	want := DataFiles{
		"northamerica": []byte(northamerica),
		"etcetera":     []byte(etcetera),
	}
	if diff := cmp.Diff(want, release.DataFiles); diff != "" {
		t.Errorf("DataFiles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"etcetera", "northamerica"}, release.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadArchive_Errors(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"not gzip", []byte("plain text")},
		{"no data files", archive(t, file{name: "version", body: "2024b"})},
		{"no version", archive(t, file{name: "etcetera", body: etcetera})},
		{"empty version", archive(t, file{name: "version", body: "\n"}, file{name: "etcetera", body: etcetera})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ReadArchive(bytes.NewReader(c.data)); err == nil {
				t.Error("ReadArchive(...): expected an error")
			}
		})
	}
	if _, err := ReadArchive(bytes.NewReader(cases[1].data)); !errors.Is(err, ErrNoData) {
		t.Errorf("ReadArchive(...) = %v, want ErrNoData", err)
	}
}

func TestLatest(t *testing.T) {
	const (
		testEtag  = "test-etag"
		emptyEtag = ""
	)
	data := testArchive(t)
	httpClient := fakeClient(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Errorf("unexpected method %q", req.Method)
		}
		if req.URL.String() != "https://data.iana.org/time-zones/tzdata-latest.tar.gz" {
			t.Errorf("unexpected URL %q", req.URL)
		}

		if req.Header.Get("If-None-Match") == testEtag {
			return &http.Response{
				StatusCode: http.StatusNotModified,
				Body:       io.NopCloser(strings.NewReader("")),
			}, nil
		}

		resp := &http.Response{
			Body:       io.NopCloser(bytes.NewReader(data)),
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
		}
		resp.Header.Set("ETag", testEtag)
		return resp, nil
	})

	client := &Client{HTTPClient: httpClient, Logger: quiet}
	ctx := context.Background()

	release, gotEtag, err := client.Latest(ctx, emptyEtag)
	if err != nil {
		t.Fatalf("Latest(%q) returned unexpected error: %v", emptyEtag, err)
	}
	if gotEtag != testEtag {
		t.Errorf("Latest(%q) returned ETag %q, want %q", emptyEtag, gotEtag, testEtag)
	}
	if len(release.DataFiles) != 2 {
		t.Errorf("Latest(%q) returned %d data files, want 2", emptyEtag, len(release.DataFiles))
	}

	release, newEtag, err := client.Latest(ctx, gotEtag)
	if err != nil {
		t.Errorf("Latest(%q) returned unexpected error: %v", gotEtag, err)
	}
	if newEtag != testEtag {
		t.Errorf("Latest(%q) returned ETag %q, want %q", gotEtag, newEtag, testEtag)
	}
	if release != nil {
		t.Errorf("Latest(%q) returned a release for an unchanged ETag", gotEtag)
	}
}

func TestDownload_Status(t *testing.T) {
	client := &Client{
		BaseURL: "https://mirror.example/tz/",
		Logger:  quiet,
		HTTPClient: fakeClient(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() != "https://mirror.example/tz/releases/tzdata2099z.tar.gz" {
				t.Errorf("unexpected URL %q", req.URL)
			}
			return &http.Response{
				Status:     "404 Not Found",
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("not found")),
			}, nil
		}),
	}
	body, etag, err := client.Download(context.Background(), "releases/tzdata2099z.tar.gz", "")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Download() error = %v, want unexpected status 404", err)
	}
	if body != nil || etag != "" {
		t.Errorf("Download() = %v, %q; want nil body and empty ETag", body, etag)
	}
}

func TestRelease_Compile(t *testing.T) {
	release, err := ReadArchive(bytes.NewReader(testArchive(t)))
	if err != nil {
		t.Fatal(err)
	}
	reg, err := tzc.CompileBytes(release.Sources(), tzc.Options{Logger: quiet})
	if err != nil {
		t.Fatalf("CompileBytes() returned unexpected error: %v", err)
	}
	tz, err := reg.Lookup("US/Eastern")
	if err != nil {
		t.Fatal(err)
	}
	if tz.Name != "America/New_York" || len(tz.Rules) != 1 {
		t.Errorf("US/Eastern = %+v, want America/New_York with one rule", tz)
	}
}
