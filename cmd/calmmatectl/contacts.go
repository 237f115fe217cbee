package main

import (
	"fmt"
	"strings"

	"github.com/garyellow/calmmate-go/internal/contacts"
	"github.com/spf13/cobra"
)

func newContactsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Query the emergency contact table",
	}
	cmd.AddCommand(
		newContactsResolveCmd(opts),
		newContactsSearchCmd(opts),
		newContactsCountriesCmd(opts),
		newContactsCitiesCmd(opts),
	)
	return cmd
}

func newContactsResolveCmd(opts *globalOptions) *cobra.Command {
	var country, city, category string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up contacts for a country, city and category",
		Example: `  calmmatectl contacts resolve --country korea --city seoul --category helplines
  calmmatectl contacts resolve --country "United States" --city "new york" --category doctors --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := opts.resolver()
			if err != nil {
				return err
			}
			res, err := r.Lookup(country, city, category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, map[string]any{
					"location": res.Label(),
					"match":    res.Match,
					"contacts": res.Records,
				})
			}
			_, _ = fmt.Fprintln(out, contacts.Format(res.Records, res.Label()))
			return nil
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "country name or alias")
	cmd.Flags().StringVar(&city, "city", "", "city name")
	cmd.Flags().StringVar(&category, "category", string(contacts.Helplines),
		"one of "+categoryList())
	_ = cmd.MarkFlagRequired("country")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func newContactsSearchCmd(opts *globalOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts by name, number or location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.resolver()
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			hits, err := r.Search(query, category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, hits)
			}
			_, _ = fmt.Fprintln(out, contacts.FormatSearch(hits, query))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	return cmd
}

func newContactsCountriesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List countries with contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := opts.resolver()
			if err != nil {
				return err
			}
			return printList(cmd, opts, r.Countries())
		},
	}
}

func newContactsCitiesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cities <country>",
		Short: "List cities with contacts in a country",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.resolver()
			if err != nil {
				return err
			}
			return printList(cmd, opts, r.Cities(strings.Join(args, " ")))
		},
	}
}

func printList(cmd *cobra.Command, opts *globalOptions, items []string) error {
	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, items)
	}
	for _, item := range items {
		_, _ = fmt.Fprintln(out, item)
	}
	return nil
}

func categoryList() string {
	cats := contacts.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
