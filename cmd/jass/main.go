// Command jass is the search-time CLI over a pre-built impact-ordered
// index: "query" runs a single query from the command line, "search"
// reads one query per line from stdin and writes a TREC run to
// stdout. Flag parsing mirrors the teacher's CLI surface in main.go,
// replacing its Windows-service/HTTP-server bring-up (out of scope
// for an in-memory evaluator) with the flag package's subcommand-style
// FlagSets (SPEC_FULL.md §6).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"jass/internal/batch"
	"jass/internal/codec"
	"jass/internal/config"
	"jass/internal/errlog"
	"jass/internal/export"
	"jass/internal/index"
	"jass/internal/query"
)

const (
	exitOK = iota
	exitIOError
	exitDecodeError
	exitBadArgs
)

// defaultConfigPath is where run looks for a JSON config.Config document
// when -config is not given; a missing file is not an error (see
// config.Manager.Load).
const defaultConfigPath = "./jass.json"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := loadConfig(args)

	if err := errlog.Init(cfg.LogDir, cfg.RotationSizeMB); err != nil {
		// Logging is ambient infrastructure, not part of the query
		// contract (SPEC_FULL.md §7: "Logging is left to the caller");
		// a failure to initialize it should not stop the command.
		fmt.Fprintf(os.Stderr, "jass: warning: error log unavailable: %v\n", err)
	}
	defer errlog.Close()

	if len(args) < 1 {
		usage()
		return exitBadArgs
	}

	switch args[0] {
	case "query":
		return runQuery(args[1:], cfg)
	case "search":
		return runSearch(args[1:], cfg)
	default:
		usage()
		return exitBadArgs
	}
}

// loadConfig finds -config's value by a plain scan of args (flag
// defaults below must already know the path before the FlagSet that
// will re-parse -config is even built) and loads the config.Config it
// names (defaultConfigPath when the flag is absent), falling back to
// config.DefaultConfig() if that file does not exist (SPEC_FULL.md §2a).
func loadConfig(args []string) config.Config {
	path := defaultConfigPath
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				path = args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			path = strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			path = strings.TrimPrefix(a, "--config=")
		}
	}

	mgr := config.NewManager(path)
	if err := mgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "jass: warning: config %q: %v\n", path, err)
	}
	return mgr.Get()
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jass <query|search> [flags]")
	fmt.Fprintln(os.Stderr, "  jass query -index DIR [-k N] [-codec NAME] [-selector heap|beap] \"query text\"")
	fmt.Fprintln(os.Stderr, "  jass search -index DIR [-k N] [-codec NAME] [-selector heap|beap] [-workers N] < queries.txt")
	fmt.Fprintln(os.Stderr, "  [-config PATH] seeds flag defaults from a config.Config JSON document")
}

type commonFlags struct {
	configPath string
	indexDir   string
	k          int
	codecName  string
	selector   string
	pageShift  int
	runTag     string
	debugIDs   bool
}

// bindCommonFlags registers the flags every subcommand shares, defaulted
// from cfg (itself loaded from -config, or config.DefaultConfig() when
// no file is present) so a config.Config document actually drives the
// product's behavior instead of sitting unread (SPEC_FULL.md §2a).
func bindCommonFlags(fs *flag.FlagSet, cfg config.Config) *commonFlags {
	cf := &commonFlags{}
	fs.StringVar(&cf.configPath, "config", defaultConfigPath, "config.Config JSON file seeding the flag defaults below")
	fs.StringVar(&cf.indexDir, "index", cfg.IndexDir, "index directory")
	fs.IntVar(&cf.k, "k", cfg.DefaultTopK, "number of results to return")
	fs.StringVar(&cf.codecName, "codec", cfg.DefaultCodec, "codec name (empty: the index's own codec)")
	fs.StringVar(&cf.selector, "selector", cfg.Selector, "top-k selector: heap or beap")
	fs.IntVar(&cf.pageShift, "page-shift", cfg.PageShift, "accumulator page-shift override (0: let the accumulator derive it)")
	fs.StringVar(&cf.runTag, "run-tag", "jass", "TREC run tag")
	fs.BoolVar(&cf.debugIDs, "debug-ids", false, "include internal DocIDs in TREC output")
	return cf
}

func openEngine(cf *commonFlags) (*query.Engine, *index.Index, int) {
	idx, err := index.Open(cf.indexDir)
	if err != nil {
		errlog.Logf("[cmd] open index %q: %v", cf.indexDir, err)
		fmt.Fprintf(os.Stderr, "jass: open index: %v\n", err)
		return nil, nil, exitIOError
	}

	name := cf.codecName
	if name == "" {
		c, ok := codec.ByID(idx.CodecID())
		if !ok {
			fmt.Fprintf(os.Stderr, "jass: index codec id %d not registered\n", idx.CodecID())
			return nil, nil, exitBadArgs
		}
		name = c.Name()
	}
	c, ok := codec.ByName(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "jass: unknown codec %q (known: %v)\n", name, codec.Names())
		return nil, nil, exitBadArgs
	}

	return query.NewEngine(idx, c, cf.pageShift), idx, exitOK
}

func runQuery(args []string, cfg config.Config) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	cf := bindCommonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return exitBadArgs
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "jass: query requires query text")
		return exitBadArgs
	}
	text := fs.Arg(0)

	engine, idx, code := openEngine(cf)
	if code != exitOK {
		return code
	}

	q := query.NewQuery(engine, cf.selector, nil)
	resp, err := q.Run(text, cf.k)
	if err != nil {
		errlog.Logf("[cmd] query %q: %v", text, err)
		fmt.Fprintf(os.Stderr, "jass: %v\n", err)
		return exitDecodeError
	}

	w := export.NewWriter(os.Stdout, cf.runTag, cf.debugIDs)
	if err := w.WriteResults(resp.QueryID, resp.Results, idx.PrimaryKey); err != nil {
		fmt.Fprintf(os.Stderr, "jass: write results: %v\n", err)
		return exitIOError
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "jass: flush results: %v\n", err)
		return exitIOError
	}
	return exitOK
}

func runSearch(args []string, cfg config.Config) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	cf := bindCommonFlags(fs, cfg)
	workers := fs.Int("workers", cfg.Workers, "goroutine count (0: adaptive)")
	if err := fs.Parse(args); err != nil {
		return exitBadArgs
	}

	engine, idx, code := openEngine(cf)
	if code != exitOK {
		return code
	}

	var queries []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "jass: read queries: %v\n", err)
		return exitIOError
	}

	results := batch.Run(engine, queries, cf.k, cf.selector, *workers)

	w := export.NewWriter(os.Stdout, cf.runTag, cf.debugIDs)
	for _, r := range results {
		if r.Err != nil {
			errlog.Logf("[cmd] search query %q: %v", r.Query, r.Err)
			fmt.Fprintf(os.Stderr, "jass: query %q: %v\n", r.Query, r.Err)
			return exitDecodeError
		}
		if err := w.WriteResults(r.Response.QueryID, r.Response.Results, idx.PrimaryKey); err != nil {
			fmt.Fprintf(os.Stderr, "jass: write results: %v\n", err)
			return exitIOError
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "jass: flush results: %v\n", err)
		return exitIOError
	}
	return exitOK
}
