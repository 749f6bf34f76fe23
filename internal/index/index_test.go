package index_test

import (
	"context"
	"testing"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/testutils"
)

func TestListSortsNewestFirst(t *testing.T) {
	// Served oldest first; List must reorder.
	server := testutils.NewCrawlServer(t,
		testutils.Crawl{ID: "CC-MAIN-2020-16", Name: "April 2020 Index"},
		testutils.Crawl{ID: "CC-MAIN-2020-50", Name: "November 2020 Index"},
		testutils.Crawl{ID: "CC-MAIN-2020-40", Name: "September 2020 Index"},
	)
	defer server.Close()

	client := cchttp.NewClient(cchttp.DefaultOptions())
	indexes, err := index.List(context.Background(), client, server.URL+"/collinfo.json")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []string{"CC-MAIN-2020-50", "CC-MAIN-2020-40", "CC-MAIN-2020-16"}
	if len(indexes) != len(want) {
		t.Fatalf("expected %d indexes, got %d", len(want), len(indexes))
	}
	for i, id := range want {
		if indexes[i].ID != id {
			t.Errorf("index %d: expected %s, got %s", i, id, indexes[i].ID)
		}
	}
}

func TestListEmpty(t *testing.T) {
	server := testutils.NewCrawlServer(t)
	defer server.Close()

	client := cchttp.NewClient(cchttp.DefaultOptions())
	_, err := index.List(context.Background(), client, server.URL+"/collinfo.json")
	if err == nil {
		t.Fatal("expected error for empty collinfo")
	}
}

func TestNewest(t *testing.T) {
	server := testutils.NewCrawlServer(t,
		testutils.Crawl{ID: "CC-MAIN-2020-16", Name: "April 2020 Index"},
		testutils.Crawl{ID: "CC-MAIN-2020-50", Name: "November 2020 Index"},
	)
	defer server.Close()

	client := cchttp.NewClient(cchttp.DefaultOptions())
	newest, err := index.Newest(context.Background(), client, server.URL+"/collinfo.json")
	if err != nil {
		t.Fatalf("Newest: %v", err)
	}
	if newest.ID != "CC-MAIN-2020-50" {
		t.Errorf("expected CC-MAIN-2020-50, got %s", newest.ID)
	}
}

func TestFind(t *testing.T) {
	server := testutils.NewCrawlServer(t,
		testutils.Crawl{ID: "CC-MAIN-2020-16", Name: "April 2020 Index"},
		testutils.Crawl{ID: "CC-MAIN-2020-50", Name: "November 2020 Index"},
	)
	defer server.Close()

	client := cchttp.NewClient(cchttp.DefaultOptions())

	ix, err := index.Find(context.Background(), client, server.URL+"/collinfo.json", "CC-MAIN-2020-16")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ix.Name != "April 2020 Index" {
		t.Errorf("expected 'April 2020 Index', got %q", ix.Name)
	}

	if _, err := index.Find(context.Background(), client, server.URL+"/collinfo.json", "CC-MAIN-1999-01"); err == nil {
		t.Error("expected error for unknown index id")
	}
}
