package main

import (
	"fmt"
	"strings"

	"github.com/garyellow/calmmate-go/internal/reply"
	"github.com/garyellow/calmmate-go/internal/sentiment"
	"github.com/garyellow/calmmate-go/internal/suggestion"
	"github.com/garyellow/calmmate-go/internal/triage"
	"github.com/spf13/cobra"
)

type classifyOutput struct {
	Level       triage.Level         `json:"level"`
	Rule        triage.Rule          `json:"rule"`
	Score       float64              `json:"score"`
	Oracle      triage.OracleOutcome `json:"oracle"`
	Suggestions []string             `json:"suggestions"`
}

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Grade the seriousness of a message",
		Long: `Run the keyword tiers and the sentiment scorer over a message and print
the resulting level with the suggestions for it. The nuance oracle is not
consulted, so borderline messages fall through to the keyword rules.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			classifier := triage.NewClassifier(triage.DefaultTiers(), sentiment.NewVader())

			a, err := classifier.Assess(cmd.Context(), message)
			if err != nil {
				return err
			}
			items := suggestion.NewResolver(suggestion.DefaultTable()).Get(a.Level)

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, classifyOutput{
					Level:       a.Level,
					Rule:        a.Rule,
					Score:       a.Score,
					Oracle:      a.Oracle,
					Suggestions: items,
				})
			}

			_, _ = fmt.Fprintf(out, "Level:  %s\n", a.Level)
			_, _ = fmt.Fprintf(out, "Rule:   %s\n", a.Rule)
			_, _ = fmt.Fprintf(out, "Score:  %.4f\n\n", a.Score)
			_, _ = fmt.Fprintln(out, suggestion.Format(items))
			return nil
		},
	}
}

type replyOutput struct {
	Topic reply.Topic `json:"topic"`
	Reply string      `json:"reply"`
}

func newReplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <message>",
		Short: "Show the contextual reply for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := reply.NewDefaultSelector().Select(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, replyOutput{Topic: m.Topic, Reply: m.Text})
			}

			_, _ = fmt.Fprintf(out, "[%s]\n%s\n", m.Topic, m.Text)
			return nil
		},
	}
}
