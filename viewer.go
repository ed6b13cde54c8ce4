package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

const viewerHelp = `Commands:
  <enter>, n   next page
  r <n>        mark entry n reassuring
  s <query>    search
  t <tag>      filter by tag
  c            clear search/tag filter
  w            show reassurance weights
  reset        clear all preferences
  h            this help
  q            quit
`

// RunViewer is the interactive feed loop. Single reader, single writer; all
// preference changes go through the engine's command reducer.
func RunViewer(cfg *Config, catalog *Catalog, index *SearchIndex, engine *PrefEngine, in io.Reader, out io.Writer) error {
	filter := FeedFilter{}
	feed := BuildFeed(catalog, index, engine.Weights(), filter)
	offset := 0

	fmt.Fprintf(out, "%d prediction(s) on file. h for help.\n\n", catalog.Len())
	fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "", "n":
			offset += cfg.FeedPageSize
			fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

		case "r":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > len(feed) {
				fmt.Fprintf(out, "Usage: r <1-%d>\n", len(feed))
				continue
			}
			entry := feed[n-1]
			if err := engine.Apply(Signal{Category: entry.Category}); err != nil {
				if errors.Is(err, ErrPrefsNotSaved) {
					// Counted for this session; it just won't survive a restart.
					log.Printf("viewer: %v", err)
					fmt.Fprintf(out, "Noted (%s), but saving failed — preference is session-only.\n", entry.Category)
				} else {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
			} else {
				fmt.Fprintf(out, "Noted: %s %s now at weight %d.\n",
					CategoryEmoji(entry.Category), entry.Category, engine.Weight(entry.Category))
			}
			// The vote reorders the feed, so paging restarts from the top.
			feed = BuildFeed(catalog, index, engine.Weights(), filter)
			offset = 0
			fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

		case "s":
			if arg == "" {
				fmt.Fprintln(out, "Usage: s <query>")
				continue
			}
			filter.Query = arg
			feed = BuildFeed(catalog, index, engine.Weights(), filter)
			offset = 0
			fmt.Fprintf(out, "%d match(es) for %q.\n", len(feed), arg)
			fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

		case "t":
			if arg == "" {
				fmt.Fprintf(out, "Usage: t <tag>. Known tags: %s\n", strings.Join(catalog.Tags(), ", "))
				continue
			}
			filter.Tag = arg
			feed = BuildFeed(catalog, index, engine.Weights(), filter)
			offset = 0
			fmt.Fprintf(out, "%d entr(ies) tagged %q.\n", len(feed), arg)
			fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

		case "c":
			filter = FeedFilter{}
			feed = BuildFeed(catalog, index, engine.Weights(), filter)
			offset = 0
			fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

		case "w":
			fmt.Fprint(out, FormatWeightSummary(engine.Weights()))

		case "reset":
			if err := engine.Apply(ResetPrefs{}); err != nil {
				fmt.Fprintf(out, "Reset failed: %v\n", err)
				continue
			}
			feed = BuildFeed(catalog, index, engine.Weights(), filter)
			offset = 0
			fmt.Fprintln(out, "Preferences cleared.")
			fmt.Fprint(out, FormatFeed(feed, engine.Weights(), offset, cfg.FeedPageSize))

		case "h", "help":
			fmt.Fprint(out, viewerHelp)

		case "q", "quit", "exit":
			return nil

		default:
			fmt.Fprintf(out, "Unknown command %q. h for help.\n", cmd)
		}
	}
	return scanner.Err()
}
