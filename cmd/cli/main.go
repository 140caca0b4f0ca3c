package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/collection"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/factory"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/knnquery"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "run":
		handleRun(os.Args[2:])
	case "spaces":
		handleSpaces()
	case "version":
		fmt.Printf("simsearch-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

// handleRun parses a dataset in-process, builds one collection over it,
// then runs every record of a query dataset as a k-NN search and prints
// the results. There is no separate server to dial — per spec.md §1 the
// dataset parser/CLI driver is a thin wrapper, not part of the core, so
// this exercises pkg/factory + pkg/collection directly in one process.
func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		spaceName  = fs.String("space", "", "space name, e.g. l2, cosinesimil_sparse (required)")
		method     = fs.String("method", "hnsw", "index method: hnsw, simple_invindx, wand, blkmax_invindx, napp")
		dataset    = fs.String("dataset", "", "path to the dataset text file (required)")
		queries    = fs.String("queries", "", "path to the query dataset text file (required)")
		indexParam = fs.String("index-params", "", "comma-separated key=value index-time parameters")
		queryParam = fs.String("query-params", "", "comma-separated key=value query-time parameters")
		k          = fs.Int("k", 10, "number of neighbors to return per query")
	)
	fs.Parse(args)

	if *spaceName == "" || *dataset == "" || *queries == "" {
		fmt.Println("Error: -space, -dataset, and -queries are all required")
		fs.Usage()
		os.Exit(1)
	}

	sp, err := factory.CreateSpace(*spaceName)
	if err != nil {
		fatal(err)
	}
	indexParams, err := factory.IndexTimeParams(*method, splitParams(*indexParam))
	if err != nil {
		fatal(err)
	}
	queryParams, err := factory.QueryTimeParams(*method, splitParams(*queryParam))
	if err != nil {
		fatal(err)
	}

	c, err := collection.New("cli", sp, *method, indexParams)
	if err != nil {
		fatal(err)
	}

	parser, ok := sp.(space.Parser)
	if !ok {
		fatal(fmt.Errorf("space %q has no text-format reader", *spaceName))
	}

	n, err := loadDataset(c, parser, *dataset)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("loaded %d objects from %s\n", n, *dataset)

	buildStart := time.Now()
	if err := c.Build(); err != nil {
		fatal(err)
	}
	fmt.Printf("built %s index in %s\n", *method, time.Since(buildStart))

	if err := runQueries(c, parser, *queries, *k, queryParams); err != nil {
		fatal(err)
	}
}

// loadDataset streams every record of path through parser and inserts
// it into c, returning the count of objects inserted.
func loadDataset(c *collection.Collection, parser space.Parser, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	state := space.NewStreamState(path)
	reader := space.NewTextReader(f, state)

	count := 0
	for {
		rec, err := reader.ReadNext()
		if err != nil {
			break
		}
		obj, err := parser.ParseObject(int32(count), rec.Label, rec.Body, state)
		if err != nil {
			return count, err
		}
		if _, err := c.Insert(obj.Label(), obj.Data()); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// runQueries streams every record of path through parser, runs a k-NN
// search against c for each, and prints the results to stdout.
func runQueries(c *collection.Collection, parser space.Parser, path string, k int, queryParams interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	state := space.NewStreamState(path)
	reader := space.NewTextReader(f, state)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	qnum := 0
	for {
		rec, err := reader.ReadNext()
		if err != nil {
			break
		}
		query, err := parser.ParseObject(-1, rec.Label, rec.Body, state)
		if err != nil {
			return err
		}

		start := time.Now()
		results, err := c.Search(query, k, queryParams)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(out, "query %d: %d results in %s\n", qnum, len(results), elapsed)
		printResults(out, results)
		qnum++
	}
	return nil
}

func printResults(out *bufio.Writer, results []knnquery.Result) {
	for i, r := range results {
		fmt.Fprintf(out, "  %2d. id=%-8d label=%-6d distance=%.6f\n", i+1, r.ID, r.Label, r.Distance)
	}
}

// splitParams turns "a=1,b=2" into ["a=1", "b=2"]; an empty string
// yields no parameters.
func splitParams(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func handleSpaces() {
	fmt.Println("Registered spaces:")
	for _, name := range factory.RegisteredSpaces() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("\nIndex methods:")
	fmt.Println("  hnsw            graph ANN index (§4.3)")
	fmt.Println("  simple_invindx  sparse inverted index, DAAT (§4.4)")
	fmt.Println("  wand            sparse inverted index, WAND (§4.5)")
	fmt.Println("  blkmax_invindx  sparse inverted index, Block-Max WAND (§4.6)")
	fmt.Println("  napp            pivot-neighborhood index (§4.7)")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func showUsage() {
	fmt.Println(`simsearch-cli - build an index over a dataset and run queries against it

Usage:
  simsearch-cli <command> [options]

Commands:
  run        Load a dataset, build an index, and run a query dataset against it
  spaces     List registered spaces and index methods
  version    Show version
  help       Show this help message

Run options:
  -space NAME          space name, e.g. l2, cosinesimil_sparse (required)
  -method NAME         index method (default: hnsw)
  -dataset PATH        dataset text file (required)
  -queries PATH        query dataset text file (required)
  -index-params KV     comma-separated key=value index-time parameters
  -query-params KV     comma-separated key=value query-time parameters
  -k N                 neighbors per query (default: 10)

Examples:
  simsearch-cli run -space l2 -method hnsw \
    -dataset data/train.txt -queries data/test.txt -k 10

  simsearch-cli run -space cosinesimil_sparse -method wand \
    -dataset data/train.txt -queries data/test.txt -k 10

  simsearch-cli spaces`)
}
