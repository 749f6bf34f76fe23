package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
)

// Default locations of the CommonCrawl metadata endpoints.
const (
	DefaultBaseURL     = "https://data.commoncrawl.org"
	DefaultCollinfoURL = "https://index.commoncrawl.org/collinfo.json"
)

// Index describes one published crawl index from collinfo.json.
type Index struct {
	// ID is the index identifier, e.g. "CC-MAIN-2020-50".
	ID string `json:"id"`
	// Name is the human-readable name, e.g. "November 2020 Index".
	Name string `json:"name"`
	// Timegate is the memento timegate endpoint for the index.
	Timegate string `json:"timegate"`
	// CDXAPI is the cdx query API endpoint for the index.
	CDXAPI string `json:"cdx-api"`
}

// date parses the index name ("November 2020 Index") into a calendar month.
// Returns the zero time if the name doesn't follow that pattern.
func (ix Index) date() time.Time {
	t, err := time.Parse("January 2006 Index", ix.Name)
	if err != nil {
		return time.Time{}
	}
	return t
}

// List retrieves the published indexes from collinfoURL (DefaultCollinfoURL
// if empty), sorted newest first.
func List(ctx context.Context, client *cchttp.Client, collinfoURL string) ([]Index, error) {
	if collinfoURL == "" {
		collinfoURL = DefaultCollinfoURL
	}

	body, err := client.Get(ctx, collinfoURL)
	if err != nil {
		return nil, fmt.Errorf("index: fetch collinfo: %w", err)
	}
	defer body.Close()

	var indexes []Index
	if err := json.NewDecoder(body).Decode(&indexes); err != nil {
		return nil, fmt.Errorf("index: parse collinfo: %w", err)
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("index: collinfo listed no indexes")
	}

	sort.SliceStable(indexes, func(i, j int) bool {
		di, dj := indexes[i].date(), indexes[j].date()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return indexes[i].Name > indexes[j].Name
	})

	return indexes, nil
}

// Newest returns the most recent published index.
func Newest(ctx context.Context, client *cchttp.Client, collinfoURL string) (Index, error) {
	indexes, err := List(ctx, client, collinfoURL)
	if err != nil {
		return Index{}, err
	}
	return indexes[0], nil
}

// Find returns the index with the given ID from the published list.
func Find(ctx context.Context, client *cchttp.Client, collinfoURL, id string) (Index, error) {
	indexes, err := List(ctx, client, collinfoURL)
	if err != nil {
		return Index{}, err
	}
	for _, ix := range indexes {
		if ix.ID == id {
			return ix, nil
		}
	}
	return Index{}, fmt.Errorf("index: id %q not found", id)
}
