package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
)

func runIndexes(args []string) int {
	fs := flag.NewFlagSet("indexes", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: ccmap indexes

List the published CommonCrawl indexes, newest first. The first ID listed
is what 'ccmap map' crawls when -index is not given.`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	client := cchttp.NewClient(cchttp.DefaultOptions())

	indexes, err := index.List(context.Background(), client, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCatalogUnavailable
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, ix := range indexes {
		fmt.Fprintf(w, "%s\t%s\n", ix.ID, ix.Name)
	}
	w.Flush()

	return ExitSuccess
}
