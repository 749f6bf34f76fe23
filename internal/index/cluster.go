package index

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
)

// HostPointer is one line of a cluster.idx file: a pointer to the block of
// one shard file that holds the records for a host.
type HostPointer struct {
	Host      string
	Timestamp int64
	ShardURL  string
	Offset    int64
	Length    int64
}

// CSV renders the pointer as a comma-separated row.
func (p HostPointer) CSV() string {
	return fmt.Sprintf("%s,%d,%s,%d,%d", p.Host, p.Timestamp, p.ShardURL, p.Offset, p.Length)
}

// ReadClusterIdx streams the index's cluster.idx file, calling fn for every
// parsed pointer. Entries keyed by a bare IP address rather than a host
// name are skipped. Returns the number of skipped lines.
func ReadClusterIdx(ctx context.Context, client *cchttp.Client, baseURL string, catalog *Catalog, fn func(HostPointer) error) (skipped int, err error) {
	if catalog.ClusterIdxURL == "" {
		return 0, fmt.Errorf("index: %s has no cluster.idx", catalog.IndexID)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	body, err := client.Get(ctx, catalog.ClusterIdxURL)
	if err != nil {
		return 0, fmt.Errorf("index: fetch cluster.idx: %w", err)
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p, ok := parseClusterLine(baseURL, catalog.IndexID, scanner.Text())
		if !ok {
			skipped++
			continue
		}
		if err := fn(p); err != nil {
			return skipped, err
		}
	}
	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("index: read cluster.idx: %w", err)
	}

	return skipped, nil
}

// parseClusterLine parses one cluster.idx line, e.g.
//
//	0,102,126,13:7037)/robots.txt 20201126201142\tcdx-00000.gz\t0\t205505\t1
func parseClusterLine(baseURL, indexID, line string) (HostPointer, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) != 5 {
		return HostPointer{}, false
	}

	keyTime := strings.SplitN(parts[0], " ", 2)
	if len(keyTime) != 2 {
		return HostPointer{}, false
	}

	host, ok := surtHost(keyTime[0])
	if !ok {
		return HostPointer{}, false
	}

	timestamp, err := strconv.ParseInt(keyTime[1], 10, 64)
	if err != nil {
		return HostPointer{}, false
	}
	offset, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return HostPointer{}, false
	}
	length, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return HostPointer{}, false
	}

	return HostPointer{
		Host:      host,
		Timestamp: timestamp,
		ShardURL:  fmt.Sprintf("%s/cc-index/collections/%s/indexes/%s", baseURL, indexID, parts[1]),
		Offset:    offset,
		Length:    length,
	}, true
}

// surtHost converts the host part of a SURT key ("com,example,www)/path")
// back to host order ("www.example.com"). Keys whose leading label is
// numeric are IP addresses, not host names, and are rejected.
func surtHost(key string) (string, bool) {
	key, _, _ = strings.Cut(key, ")")
	key, _, _ = strings.Cut(key, ":")

	labels := strings.Split(key, ",")
	if len(labels) == 0 || labels[0] == "" {
		return "", false
	}

	numeric := true
	for _, r := range labels[0] {
		if r < '0' || r > '9' {
			numeric = false
			break
		}
	}
	if numeric {
		return "", false
	}

	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, "."), true
}
