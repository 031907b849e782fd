package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/duobook/studio/internal/entities"
	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/license"
	"github.com/duobook/studio/internal/sources"
	"github.com/duobook/studio/internal/wizard"
)

// FetchCommand runs one import from the command line and prints the
// normalized document as JSON. It walks the same wizard state machine as
// the HTTP flow, so the license gate applies here too.
type FetchCommand struct {
	SourceID    string
	SelectedID  string
	Query       string
	Book        string
	Chapter     int
	Verse       int
	RandomCount int
	Images      bool
	Acknowledge bool
	Timeout     time.Duration
}

func NewFetchCommand() *FetchCommand {
	return &FetchCommand{}
}

func (cmd *FetchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	fs.StringVar(&cmd.SourceID, "source", "", "Source id to fetch from (required, see 'sources')")
	fs.StringVar(&cmd.SelectedID, "id", "", "Source-native record id to fetch")
	fs.StringVar(&cmd.Query, "query", "", "Free-text search / lookup term")
	fs.StringVar(&cmd.Book, "book", "", "Book name for scripture references (e.g. 'John')")
	fs.IntVar(&cmd.Chapter, "chapter", 0, "Chapter number for scripture references")
	fs.IntVar(&cmd.Verse, "verse", 0, "Verse number for scripture references")
	fs.IntVar(&cmd.RandomCount, "random", 0, "Number of random items to fetch")
	fs.BoolVar(&cmd.Images, "images", false, "Include image lines where the source has them")
	fs.BoolVar(&cmd.Acknowledge, "acknowledge", false, "Acknowledge the personal-only usage warning")
	fs.DurationVar(&cmd.Timeout, "timeout", 60*time.Second, "Fetch timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s fetch -source <id> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch content from an external source and print the normalized document as JSON.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # One chapter of scripture:\n")
		fmt.Fprintf(os.Stderr, "  %s fetch -source bible-api -book John -chapter 1\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # A Project Gutenberg book by search:\n")
		fmt.Fprintf(os.Stderr, "  %s fetch -source gutendex -query \"pride and prejudice\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Five random trivia entries (personal-only, needs acknowledgment):\n")
		fmt.Fprintf(os.Stderr, "  %s fetch -source pokeapi -random 5 -acknowledge\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.SourceID == "" {
		return fmt.Errorf("required flag -source not provided")
	}
	return nil
}

func (cmd *FetchCommand) Run() error {
	registry := sources.Catalog(library.DefaultRand())
	entry, ok := registry.Get(cmd.SourceID)
	if !ok {
		return fmt.Errorf("unknown source %q (run '%s sources' for the catalog)", cmd.SourceID, os.Args[0])
	}

	controller := wizard.New(entry.Adapter)

	if warning := controller.Warning(); warning != "" {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", warning)
		if !cmd.Acknowledge {
			return fmt.Errorf("this source is personal-only; re-run with -acknowledge to accept the terms")
		}
		controller.Acknowledge()
	}

	if err := controller.Start(); err != nil {
		return err
	}
	if err := controller.SetConfig(entities.WizardConfig{
		SelectedID:    cmd.SelectedID,
		SearchQuery:   cmd.Query,
		Book:          cmd.Book,
		Chapter:       cmd.Chapter,
		Verse:         cmd.Verse,
		RandomCount:   cmd.RandomCount,
		IncludeImages: cmd.Images,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	if _, err := controller.Import(ctx); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	result, err := controller.Accept()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	if result.Credits != nil {
		fmt.Fprintf(os.Stderr, "\nThis import requires attribution:\n")
		for _, credit := range result.Credits.Credits {
			fmt.Fprintf(os.Stderr, "  - %s\n", credit.AttributionText)
		}
	}
	if license.IsPersonalOnly(entry.Adapter.License()) {
		fmt.Fprintf(os.Stderr, "\nReminder: personal, non-commercial use only.\n")
	}

	return nil
}
