// Package cli implements cmsctl, an offline helper for the complaint service.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/classifier"
	"github.com/campusdesk/complaint-service/internal/config"
	"github.com/campusdesk/complaint-service/internal/domain"
	"github.com/campusdesk/complaint-service/internal/sla"
)

// Options are the global flags.
type Options struct {
	Output string
	Local  bool
}

// NewRootCommand builds the command tree. loadConfig is injected for tests.
func NewRootCommand(loadConfig func() (*config.Config, error), now func() time.Time) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "cmsctl",
		Short:         "Campus complaint service tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format: text or json")

	root.AddCommand(newClassifyCmd(opts, loadConfig))
	root.AddCommand(newDeadlineCmd(opts, now))
	return root
}

func newClassifyCmd(opts *Options, loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Suggest sentiment and category for complaint text",
		Long:  "Classify text with the hosted model when CLASSIFIER_API_KEY is set, falling back to the keyword classifier.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			var remote classifier.Classifier
			if !opts.Local {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				if cfg.Classifier.APIKey != "" {
					remote = classifier.NewRemote(classifier.RemoteConfig{
						URL:         cfg.Classifier.APIURL,
						APIKey:      cfg.Classifier.APIKey,
						Model:       cfg.Classifier.Model,
						Temperature: cfg.Classifier.Temperature,
						Timeout:     cfg.Classifier.Timeout(),
					}, nil, zap.NewNop())
				}
			}
			result := classifier.NewComposite(remote, nil, nil).ClassifyWithCategory(cmd.Context(), text, "")
			return render(cmd.OutOrStdout(), opts.Output, result, func(w io.Writer) {
				fmt.Fprintf(w, "sentiment: %s (%s)\n", result.Sentiment, result.SentimentOrigin)
				fmt.Fprintf(w, "category:  %s (%s)\n", result.Category, result.CategoryOrigin)
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Local, "local", false, "skip the hosted model")
	return cmd
}

type deadlineView struct {
	Priority domain.Priority `json:"priority"`
	Created  time.Time       `json:"created_at"`
	Deadline time.Time       `json:"sla_deadline"`
	Window   string          `json:"window"`
}

func newDeadlineCmd(opts *Options, now func() time.Time) *cobra.Command {
	var (
		priority string
		at       string
	)
	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Compute the SLA deadline for a priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := domain.Priority(priority)
			if !p.Valid() {
				return fmt.Errorf("invalid priority %q (must be Low, Medium, High or Critical)", priority)
			}
			created := now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				created = parsed
			}
			view := deadlineView{
				Priority: p,
				Created:  created,
				Deadline: sla.Deadline(p, created),
				Window:   sla.Offset(p).String(),
			}
			return render(cmd.OutOrStdout(), opts.Output, view, func(w io.Writer) {
				fmt.Fprintf(w, "%s complaint created %s is due %s (%s)\n",
					view.Priority, view.Created.Format(time.RFC3339), view.Deadline.Format(time.RFC3339), view.Window)
			})
		},
	}
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "Low, Medium, High or Critical")
	cmd.Flags().StringVar(&at, "at", "", "creation time in RFC3339 (default now)")
	return cmd
}

func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
