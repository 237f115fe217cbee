package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyellow/calmmate-go/internal/config"
	"github.com/garyellow/calmmate-go/internal/contacts"
	"github.com/garyellow/calmmate-go/internal/r2client"
	"github.com/garyellow/calmmate-go/internal/refdata"
	"github.com/garyellow/calmmate-go/internal/reply"
	"github.com/garyellow/calmmate-go/internal/suggestion"
	"github.com/garyellow/calmmate-go/internal/triage"
	"github.com/spf13/cobra"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Validate, verify and publish reference data",
	}
	cmd.AddCommand(newDataValidateCmd(), newDataVerifyCmd(), newDataPublishCmd())
	return cmd
}

func parseKind(s string) (refdata.Kind, error) {
	switch k := refdata.Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case refdata.Locations, refdata.Universities:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want %s or %s)", s, refdata.Locations, refdata.Universities)
	}
}

func newDataValidateCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check reference documents against their schema",
		Long: `Decode each file (JSON or YAML, optionally .zst compressed), validate it
against the schema of --kind, and build the in-memory table from it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := refdata.ValidateFile(k, path); err != nil {
					failed++
					_, _ = fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					continue
				}
				_, _ = fmt.Fprintf(out, "ok   %s\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(refdata.Locations), "document kind: locations or universities")
	return cmd
}

// check is one consistency check outcome.
type check struct {
	name    string
	passed  bool
	message string
}

func newDataVerifyCmd() *cobra.Command {
	var locations string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run consistency checks over the built-in tables",
		Long: `Verify that the location table, the country aliases, the suggestion
table and the reply templates agree with each other. Exits non-zero when
any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := refdata.DefaultLocations()
			if locations != "" {
				table, err = refdata.LocationsFromFile(locations)
			}
			if err != nil {
				return err
			}

			var results []check
			results = append(results, verifyLocations(contacts.NewResolver(table))...)
			results = append(results, verifySuggestions()...)
			results = append(results, verifyReplies()...)

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				status := "PASS"
				if !r.passed {
					status = "FAIL"
					failed++
				}
				_, _ = fmt.Fprintf(out, "%s %s: %s\n", status, r.name, r.message)
			}
			_, _ = fmt.Fprintf(out, "\n%d passed, %d failed\n", len(results)-failed, failed)

			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&locations, "locations", "", "location table file (default is the embedded table)")
	return cmd
}

// verifyLocations checks that every country has a helpline and every
// alias points at a country in the table.
func verifyLocations(r *contacts.Resolver) []check {
	countries := r.Countries()
	results := []check{{
		name:    "Location table",
		passed:  len(countries) > 0,
		message: fmt.Sprintf("%d countries, %d contacts", len(countries), r.Table().Size()),
	}}

	var missing []string
	for _, country := range countries {
		found := false
		for _, city := range r.Cities(country) {
			if res, err := r.Lookup(country, city, string(contacts.Helplines)); err == nil && len(res.Records) > 0 {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, country)
		}
	}
	results = append(results, check{
		name:    "Helpline coverage",
		passed:  len(missing) == 0,
		message: listOrAll(missing, "every country has a helpline city"),
	})

	var dangling []string
	for alias, target := range contacts.DefaultAliases() {
		if len(r.Cities(target)) == 0 {
			dangling = append(dangling, alias+" -> "+target)
		}
	}
	results = append(results, check{
		name:    "Country aliases",
		passed:  len(dangling) == 0,
		message: listOrAll(dangling, "every alias resolves to a listed country"),
	})
	return results
}

func verifySuggestions() []check {
	resolver := suggestion.NewResolver(suggestion.DefaultTable())

	var empty []string
	for _, level := range triage.Levels() {
		if len(resolver.Get(level)) == 0 {
			empty = append(empty, level.String())
		}
	}
	results := []check{{
		name:    "Suggestion coverage",
		passed:  len(empty) == 0,
		message: listOrAll(empty, "every level has suggestions"),
	}}

	emergency := resolver.Get(triage.Emergency)
	first := ""
	if len(emergency) > 0 {
		first = emergency[0]
	}
	results = append(results, check{
		name:    "Emergency suggestions",
		passed:  strings.Contains(strings.ToLower(first), "emergency services"),
		message: fmt.Sprintf("first item: %q", first),
	})
	return results
}

func verifyReplies() []check {
	selector := reply.NewDefaultSelector()
	_, ok := selector.Template(reply.TopicCrisis)
	return []check{
		{
			name:    "Crisis template",
			passed:  ok,
			message: "crisis bucket is present",
		},
		{
			name:    "Fallback reply",
			passed:  selector.Reply("zzqx") != "",
			message: "unmatched messages get a reply",
		},
	}
}

func listOrAll(items []string, ok string) string {
	if len(items) == 0 {
		return ok
	}
	return "missing: " + strings.Join(items, ", ")
}

func newDataPublishCmd() *cobra.Command {
	var kind, key string

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Validate a document and upload it to R2 compressed",
		Long: `Validate the document, normalize it to JSON, compress it with zstd, and
upload it to the configured R2 bucket. The server picks it up on its next
start when CALMMATE_R2_ENABLED is set. R2 credentials come from the same
environment variables the server reads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if key == "" {
				key = cfg.R2LocationKey
				if k == refdata.Universities {
					key = cfg.R2UniversityKey
				}
			}

			body, err := canonicalFile(k, args[0])
			if err != nil {
				return err
			}
			var compressed bytes.Buffer
			if err := r2client.Compress(&compressed, bytes.NewReader(body)); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), config.ReferenceDataLoad)
			defer cancel()

			client, err := newR2Client(ctx, cfg)
			if err != nil {
				return err
			}
			etag, err := client.Upload(ctx, key, &compressed, "application/zstd")
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%d bytes, %d compressed) etag=%s\n",
				key, len(body), compressed.Len(), etag)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(refdata.Locations), "document kind: locations or universities")
	cmd.Flags().StringVar(&key, "key", "", "object key (default from CALMMATE_R2_*_KEY)")
	return cmd
}

func canonicalFile(kind refdata.Kind, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return refdata.Canonical(kind, filepath.Base(path), f)
}

func newR2Client(ctx context.Context, cfg *config.Config) (*r2client.Client, error) {
	return r2client.New(ctx, r2client.Config{
		Endpoint:    r2client.EndpointForAccount(cfg.R2AccountID),
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
}
