package main

import (
	"encoding/json"
	"io"

	"github.com/garyellow/calmmate-go/internal/buildinfo"
	"github.com/garyellow/calmmate-go/internal/contacts"
	"github.com/garyellow/calmmate-go/internal/refdata"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	locations string // empty = embedded table
	json      bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "calmmatectl",
		Short: "Operator tool for the CalmMate support backend",
		Long: `calmmatectl runs the severity classifier and reply selector offline,
queries the emergency contact table, and validates or publishes the
reference data documents the server loads at startup.`,
		Version:       buildinfo.Release(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.locations, "locations", "", "location table file (default is the embedded table)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")

	root.AddCommand(
		newClassifyCmd(opts),
		newReplyCmd(opts),
		newContactsCmd(opts),
		newDataCmd(),
		newDBCmd(),
		newHashPasswordCmd(),
	)
	return root
}

// resolver loads the location table selected by --locations.
func (o *globalOptions) resolver() (*contacts.Resolver, error) {
	if o.locations == "" {
		table, err := refdata.DefaultLocations()
		if err != nil {
			return nil, err
		}
		return contacts.NewResolver(table), nil
	}

	table, err := refdata.LocationsFromFile(o.locations)
	if err != nil {
		return nil, err
	}
	return contacts.NewResolver(table), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
