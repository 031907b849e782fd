package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/duobook/studio/internal/library"
	"github.com/duobook/studio/internal/sources"
)

// SourcesCommand prints the compiled-in source catalog with license tiers
// and capabilities.
type SourcesCommand struct{}

func NewSourcesCommand() *SourcesCommand {
	return &SourcesCommand{}
}

func (cmd *SourcesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sources", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sources\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List the available content sources, their license tiers and capabilities.\n")
	}
	return fs.Parse(args)
}

func (cmd *SourcesCommand) Run() error {
	registry := sources.Catalog(library.DefaultRand())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIER\tLICENSE\tSEARCH\tPREVIEW")
	for _, id := range registry.List() {
		entry, ok := registry.Get(id)
		if !ok {
			continue
		}
		info := entry.Adapter.License()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			id,
			entry.Adapter.DisplayName(),
			info.Type,
			info.Name,
			yesNo(entry.Capabilities.Search),
			yesNo(entry.Capabilities.Preview),
		)
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
