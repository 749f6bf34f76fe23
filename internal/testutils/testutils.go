// Package testutils provides shared test infrastructure: an in-process
// crawl-data server serving collinfo/paths/cdx fixtures, and gzip/CSV
// helpers.
package testutils

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// Shard defines one cdx shard fixture.
type Shard struct {
	// Name is the shard file name, e.g. "cdx-00000.gz".
	Name string
	// Lines is the decompressed shard content, one cdx entry per line.
	Lines []string
	// Status, when non-zero, makes the server answer every request for
	// this shard with that status code instead of the content.
	Status int
}

// Crawl defines one index fixture.
type Crawl struct {
	ID   string
	Name string
	// Shards listed in cc-index.paths.gz, in order.
	Shards []Shard
	// ClusterIdx, when set, is served as the index's cluster.idx file and
	// listed in the paths file.
	ClusterIdx []string
}

// NewCrawlServer starts an HTTP server that mimics the CommonCrawl layout
// for the given fixtures:
//
//	/collinfo.json
//	/crawl-data/<id>/cc-index.paths.gz
//	/cc-index/collections/<id>/indexes/<shard>
//	/cc-index/collections/<id>/indexes/cluster.idx
//
// The same server URL works as both the collinfo endpoint (with
// "/collinfo.json" appended) and the data store base URL.
func NewCrawlServer(t *testing.T, crawls ...Crawl) *httptest.Server {
	t.Helper()

	type indexInfo struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Timegate string `json:"timegate"`
		CDXAPI   string `json:"cdx-api"`
	}

	var collinfo []indexInfo
	paths := make(map[string][]byte)    // /crawl-data/<id>/cc-index.paths.gz
	content := make(map[string][]byte)  // full path -> gzip'd shard bytes
	statuses := make(map[string]int)    // full path -> forced status
	clusters := make(map[string][]byte) // full path -> plain cluster.idx

	for _, c := range crawls {
		collinfo = append(collinfo, indexInfo{
			ID:       c.ID,
			Name:     c.Name,
			Timegate: "https://index.commoncrawl.org/" + c.ID + "/",
			CDXAPI:   "https://index.commoncrawl.org/" + c.ID + "-index",
		})

		var listing []string
		for _, s := range c.Shards {
			path := fmt.Sprintf("cc-index/collections/%s/indexes/%s", c.ID, s.Name)
			listing = append(listing, path)
			if s.Status != 0 {
				statuses["/"+path] = s.Status
				continue
			}
			content["/"+path] = Gzip(t, []byte(strings.Join(s.Lines, "\n")+"\n"))
		}
		if c.ClusterIdx != nil {
			path := fmt.Sprintf("cc-index/collections/%s/indexes/cluster.idx", c.ID)
			listing = append(listing, path)
			clusters["/"+path] = []byte(strings.Join(c.ClusterIdx, "\n") + "\n")
		}
		listing = append(listing, fmt.Sprintf("cc-index/collections/%s/metadata.yaml", c.ID))

		paths["/crawl-data/"+c.ID+"/cc-index.paths.gz"] = Gzip(t, []byte(strings.Join(listing, "\n")+"\n"))
	}

	collinfoJSON, err := json.Marshal(collinfo)
	if err != nil {
		t.Fatalf("marshal collinfo: %v", err)
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code, ok := statuses[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}

		var data []byte
		switch {
		case r.URL.Path == "/collinfo.json":
			data = collinfoJSON
		default:
			if d, ok := paths[r.URL.Path]; ok {
				data = d
			} else if d, ok := content[r.URL.Path]; ok {
				data = d
			} else if d, ok := clusters[r.URL.Path]; ok {
				data = d
			} else {
				http.NotFound(w, r)
				return
			}
		}

		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(data)
	}))
}

// CdxLine builds a well-formed cdx line for host with the given timestamp
// and ip.
func CdxLine(host, timestamp, ip string) string {
	surt := surtKey(host)
	return fmt.Sprintf(`%s)/ %s {"url": "https://%s/", "mime": "text/html", "status": "200", "ip": %q, "length": "1024", "offset": "0", "filename": "crawl.warc.gz"}`,
		surt, timestamp, host, ip)
}

func surtKey(host string) string {
	labels := strings.Split(host, ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, ",")
}

// Gzip compresses data.
func Gzip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// Gunzip decompresses data.
func Gunzip(t *testing.T, data []byte) []byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	return out
}

// ReadGzCSV reads a gzip'd CSV file into rows.
func ReadGzCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return ParseGzCSV(t, data)
}

// ParseGzCSV parses gzip'd CSV bytes into rows.
func ParseGzCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(Gunzip(t, data))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}
