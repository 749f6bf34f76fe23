package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitInvalidArgs        = 2
	ExitCatalogUnavailable = 3
	ExitOutputError        = 4
	ExitInterrupted        = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "map":
		return runMap(cmdArgs)
	case "indexes":
		return runIndexes(cmdArgs)
	case "cluster":
		return runCluster(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: ccmap <command> [options]

Commands:
  map      Crawl a CommonCrawl index and write the host,date,ip mapping
  indexes  List the published CommonCrawl indexes, newest first
  cluster  Dump an index's cluster.idx host pointers to a CSV file

Run 'ccmap <command> -h' for command-specific help.`)
}
