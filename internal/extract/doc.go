// Package extract parses cdx index lines into (host, date, ip) records.
//
// A cdx shard is line-oriented text; each line is a SURT key, a 14-digit
// timestamp, and a JSON payload:
//
//	com,example)/path 20201126201142 {"url": "https://example.com/path", "ip": "93.184.216.34", ...}
//
// The Scanner consumes a decompressed shard stream lazily, one line at a
// time, so peak memory stays at roughly one line regardless of shard size.
//
// # Usage
//
//	sc := extract.NewScanner(stream)
//	for {
//	    rec, err := sc.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if errors.Is(err, extract.ErrMalformed) {
//	        stats.ParseFailure()
//	        continue
//	    }
//	    if err != nil {
//	        return err // stream fault
//	    }
//	    // use rec
//	}
//
// A malformed line never aborts the shard: it yields ErrMalformed and the
// scanner moves on. Records are never constructed with defaulted fields; a
// line missing any of host, date, or ip is one parse failure.
package extract
