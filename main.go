package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/slack-go/slack"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: doomscroll [command]

Commands:
  feed                     interactive feed viewer (default)
  rank                     print the full ranked feed and exit
  harvest [flags]          harvest new candidates from Wikipedia
      --write              store candidates (default is dry run)
      --limit N            cap new candidates (0 = unlimited)
      --source STR         only curator targets whose title contains STR
      --watch              keep running on the configured schedule
  review                   list pending candidates
  review approve <id>      approve a candidate into the catalog
  review reject <id>       reject a candidate
  reset                    clear all preferences
  stats                    catalog and review-queue counts
`)
}

func main() {
	cfg := LoadConfig()
	ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	catalog, err := LoadCatalog(cfg.DataPath)
	if err != nil {
		log.Fatalf("Failed to load catalog %s: %v", cfg.DataPath, err)
	}

	engine := NewPrefEngine(NewDBPrefStore(db))

	cmd := "feed"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "feed":
		index := BuildSearchIndex(catalog.Entries())
		if err := RunViewer(cfg, catalog, index, engine, os.Stdin, os.Stdout); err != nil {
			log.Fatalf("Viewer error: %v", err)
		}

	case "rank":
		feed := RankEntries(catalog.Entries(), engine.Weights())
		fmt.Print(FormatFeed(feed, engine.Weights(), 0, len(feed)))

	case "harvest":
		fs := flag.NewFlagSet("harvest", flag.ExitOnError)
		write := fs.Bool("write", false, "store candidates in the review queue")
		limit := fs.Int("limit", cfg.HarvestLimit, "max new candidates (0 = unlimited)")
		source := fs.String("source", "", "only curator targets whose title contains this string")
		watch := fs.Bool("watch", false, "keep running on the configured schedule")
		fs.Parse(args)

		var api *slack.Client
		if cfg.SlackConfigured() {
			api = slack.New(cfg.SlackBotToken)
		}

		if *watch {
			StartHarvestScheduler(cfg, db, catalog, api)
			select {}
		}

		result, cands, err := HarvestCandidates(cfg, db, catalog, *write, *limit, *source)
		if err != nil {
			log.Fatalf("Harvest error: %v", err)
		}
		fmt.Println(FormatHarvestSummary(result, *write))
		if preview := FormatCandidatePreview(cands, 5); preview != "" {
			fmt.Println()
			fmt.Println(preview)
		}
		if api != nil && *write && result.NewCandidates > 0 {
			if err := PostHarvestSummary(api, cfg.ReviewChannelID, result, cands); err != nil {
				log.Printf("Harvest summary post error: %v", err)
			}
		}

	case "review":
		runReview(cfg, db, args)

	case "reset":
		if err := engine.Reset(); err != nil {
			log.Fatalf("Reset error: %v", err)
		}
		fmt.Println("Preferences cleared.")

	case "stats":
		fmt.Printf("Catalog: %d entries\n", catalog.Len())
		for _, cat := range categoryOrder {
			if n := len(catalog.ByCategory(cat)); n > 0 {
				fmt.Printf("  %s %-24s %d\n", CategoryEmoji(cat), cat, n)
			}
		}
		counts, err := CountCandidatesByStatus(db)
		if err != nil {
			log.Fatalf("Stats error: %v", err)
		}
		fmt.Printf("Review queue: %d pending, %d approved, %d rejected\n",
			counts[CandidatePending], counts[CandidateApproved], counts[CandidateRejected])
		fmt.Print(FormatWeightSummary(engine.Weights()))

	case "help", "-h", "--help":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

// runReview handles the out-of-band merge path: harvested candidates only
// reach the catalog through an explicit approve here.
func runReview(cfg *Config, db *sql.DB, args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		cands, err := GetPendingCandidates(db, 100)
		if err != nil {
			log.Fatalf("Review list error: %v", err)
		}
		if len(cands) == 0 {
			fmt.Println("No pending candidates.")
			return
		}
		for _, c := range cands {
			fmt.Printf("#%d %s [%d] %s\n    %s\n    — %s (%s)\n",
				c.ID, CategoryEmoji(c.Category), c.Year, c.Category,
				c.Prediction, c.Source, c.PageTitle)
		}
		fmt.Printf("%d pending. Approve with: review approve <id>\n", len(cands))

	case "approve", "reject":
		if len(args) < 2 {
			log.Fatalf("Usage: review %s <id>", args[0])
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("Invalid candidate id %q", args[1])
		}
		cand, err := GetCandidateByID(db, id)
		if err != nil {
			log.Fatalf("Candidate %d not found: %v", id, err)
		}
		if cand.Status != CandidatePending {
			log.Fatalf("Candidate %d is already %s", id, cand.Status)
		}

		if args[0] == "reject" {
			if err := UpdateCandidateStatus(db, id, CandidateRejected); err != nil {
				log.Fatalf("Review reject error: %v", err)
			}
			fmt.Printf("Rejected #%d (%s).\n", id, cand.EntryID)
			return
		}

		if err := AppendCatalogEntry(cfg.DataPath, cand.Entry()); err != nil {
			log.Fatalf("Catalog append error: %v", err)
		}
		if err := UpdateCandidateStatus(db, id, CandidateApproved); err != nil {
			log.Fatalf("Review approve error: %v", err)
		}
		fmt.Printf("Approved #%d (%s) into %s.\n", id, cand.EntryID, cfg.DataPath)

	default:
		log.Fatalf("Unknown review action %q (use list, approve, reject)", args[0])
	}
}
