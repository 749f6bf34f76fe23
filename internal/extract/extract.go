package extract

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

// ErrMalformed is returned by Scanner.Next for a line that does not yield a
// complete record. Match with errors.Is.
var ErrMalformed = errors.New("extract: malformed index line")

// Record is one normalized output tuple. All three fields are non-empty;
// partially-parseable lines never produce a Record.
type Record struct {
	// Host is the host component of the entry's url field, verbatim.
	Host string
	// Date is the entry timestamp truncated to a calendar date, ISO form
	// (2020-11-26).
	Date string
	// IP is the entry's address field, verbatim.
	IP string
}

// entry is the JSON payload of a cdx line. Only the fields the extractor
// needs are listed; the payload carries several more (mime, status, digest,
// offset, filename) that are irrelevant to the mapping.
type entry struct {
	URL string `json:"url"`
	IP  string `json:"ip"`
}

// Scanner lazily extracts records from a decompressed shard stream.
type Scanner struct {
	s *bufio.Scanner
}

// NewScanner creates a Scanner over r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Scanner{s: s}
}

// Next returns the next record. It returns io.EOF when the stream is
// exhausted, an error wrapping ErrMalformed for an unparseable line, and
// any other error verbatim for a stream-level read fault.
func (sc *Scanner) Next() (Record, error) {
	if !sc.s.Scan() {
		if err := sc.s.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}
	return ParseLine(sc.s.Text())
}

// ParseLine parses one cdx line into a Record.
func ParseLine(line string) (Record, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 {
		return Record{}, malformed("want 3 fields, got %d", len(fields))
	}

	date, err := parseDate(fields[1])
	if err != nil {
		return Record{}, err
	}

	var e entry
	if err := json.Unmarshal([]byte(fields[2]), &e); err != nil {
		return Record{}, malformed("bad json payload: %v", err)
	}

	host, err := parseHost(e.URL)
	if err != nil {
		return Record{}, err
	}

	if e.IP == "" {
		return Record{}, malformed("entry has no ip field")
	}
	if _, err := netip.ParseAddr(e.IP); err != nil {
		return Record{}, malformed("bad ip %q", e.IP)
	}

	return Record{Host: host, Date: date, IP: e.IP}, nil
}

// parseDate truncates a 14-digit cdx timestamp (20201126201142) to a
// calendar date. The date portion must be a real calendar date.
func parseDate(ts string) (string, error) {
	if len(ts) < 8 {
		return "", malformed("timestamp %q too short", ts)
	}
	t, err := time.Parse("20060102", ts[:8])
	if err != nil {
		return "", malformed("bad timestamp %q", ts)
	}
	return t.Format("2006-01-02"), nil
}

// parseHost extracts the host component of the entry's url field. No
// case-folding or punycode normalization is applied.
func parseHost(rawURL string) (string, error) {
	if rawURL == "" {
		return "", malformed("entry has no url field")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", malformed("bad url %q", rawURL)
	}
	host := u.Hostname()
	if host == "" {
		return "", malformed("url %q has no host", rawURL)
	}
	return host, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
