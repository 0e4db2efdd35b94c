package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/felixggj/happy-robot-fde/internal/api"
	"github.com/felixggj/happy-robot-fde/internal/config"
	"github.com/felixggj/happy-robot-fde/internal/dashboard"
	"github.com/felixggj/happy-robot-fde/internal/models"
	"github.com/felixggj/happy-robot-fde/internal/ui/app"
	"github.com/felixggj/happy-robot-fde/internal/ui/format"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	baseURL  string
	apiKey   string
	logLevel string
	asJSON   bool

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Carrier sales dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "carrier sales API base URL (default from API_BASE_URL)")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "carrier sales API key (default from API_KEY)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (default from LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print raw JSON instead of tables")

	root.AddCommand(
		newTUICmd(opts),
		newHealthCmd(opts),
		newMetricsCmd(opts),
		newLoadsCmd(opts),
		newCallsCmd(opts),
		newVerifyCmd(opts),
		newOfferCmd(opts),
	)
	return root
}

func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("base-url") {
		cfg.APIBaseURL = o.baseURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = o.apiKey
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	o.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	o.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func (o *options) client() *api.Client {
	c := api.New(o.cfg.APIBaseURL, o.cfg.APIKey)
	c.Logger = o.logger
	return c
}

func (o *options) print(w io.Writer, v any, table func() string) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, table())
	return err
}

func newTUICmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := o.client()
			client.Logger = zerolog.Nop()
			board := dashboard.NewBoard(client, dashboard.Options{
				Loads:      models.LoadFilter{MaxResults: o.cfg.LoadsMaxResults},
				CallsLimit: o.cfg.CallsLimit,
			}, zerolog.Nop())
			defer board.Close()

			program := tea.NewProgram(app.NewModel(cmd.Context(), board), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := program.Run()
			return err
		},
	}
}

func newHealthCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the carrier sales API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := o.client().GetHealthStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage("health status", err), err)
			}
			return o.print(cmd.OutOrStdout(), status, func() string {
				keys := make([]string, 0, len(status))
				for k := range status {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				lines := make([]string, 0, len(keys))
				for _, k := range keys {
					lines = append(lines, fmt.Sprintf("%s: %v", k, status[k]))
				}
				return strings.Join(lines, "\n")
			})
		},
	}
}

func newMetricsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show call metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := o.client().GetMetrics(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage("metrics", err), err)
			}
			return o.print(cmd.OutOrStdout(), m, func() string { return app.RenderMetrics(m) })
		},
	}
}

func newLoadsCmd(o *options) *cobra.Command {
	var filter models.LoadFilter
	cmd := &cobra.Command{
		Use:   "loads",
		Short: "Search available loads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("max-results") {
				filter.MaxResults = o.cfg.LoadsMaxResults
			}
			loads, err := o.client().GetLoads(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage("loads", err), err)
			}
			return o.print(cmd.OutOrStdout(), loads, func() string { return app.RenderLoads(loads) })
		},
	}
	cmd.Flags().StringVar(&filter.Origin, "origin", "", "origin city")
	cmd.Flags().StringVar(&filter.Destination, "destination", "", "destination city")
	cmd.Flags().StringVar(&filter.EquipmentType, "equipment-type", "", "equipment type, e.g. \"Dry Van\"")
	cmd.Flags().StringVar(&filter.PickupFrom, "pickup-from", "", "earliest pickup time")
	cmd.Flags().StringVar(&filter.PickupTo, "pickup-to", "", "latest pickup time")
	cmd.Flags().IntVar(&filter.MaxResults, "max-results", 0, "page size, 0 leaves it to the server")
	return cmd
}

func newCallsCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List recent call sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = o.cfg.CallsLimit
			}
			calls, err := o.client().GetCallSessions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage("call sessions", err), err)
			}
			return o.print(cmd.OutOrStdout(), calls, func() string { return app.RenderCalls(calls) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "page size, 0 leaves it to the server")
	return cmd
}

func newVerifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <mc>",
		Short: "Check a carrier's eligibility by MC number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := o.client().VerifyCarrier(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("verify carrier: %w", err)
			}
			return o.print(cmd.OutOrStdout(), res, func() string {
				lines := []string{
					fmt.Sprintf("eligible: %t", res.Eligible),
					"legal name: " + format.Str(res.LegalName),
					"status: " + format.Str(res.Status),
				}
				for _, n := range res.RiskNotes {
					lines = append(lines, "risk: "+n)
				}
				return strings.Join(lines, "\n")
			})
		},
	}
}

func newOfferCmd(o *options) *cobra.Command {
	var (
		req    models.OfferEvaluationRequest
		agreed float64
		rounds int
	)
	cmd := &cobra.Command{
		Use:   "offer --load-id <id> --initial-rate <rate>",
		Short: "Evaluate a carrier offer against a load's floor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(req.LoadID) == "" {
				return fmt.Errorf("--load-id is required")
			}
			if cmd.Flags().Changed("agreed-rate") {
				req.AgreedRate = &agreed
			}
			if cmd.Flags().Changed("rounds") {
				req.NegotiationRounds = &rounds
			}
			res, err := o.client().EvaluateOffer(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("evaluate offer: %w", err)
			}
			return o.print(cmd.OutOrStdout(), res, func() string {
				return fmt.Sprintf("decision: %s\nrate: %s\nfloor: %s\nreason: %s",
					res.Decision, format.CurrencyPtr(res.Rate), format.Currency(res.Floor), res.Reason)
			})
		},
	}
	cmd.Flags().StringVar(&req.LoadID, "load-id", "", "load id")
	cmd.Flags().Float64Var(&req.InitialRate, "initial-rate", 0, "carrier's initial ask")
	cmd.Flags().Float64Var(&agreed, "agreed-rate", 0, "final agreed rate, if any")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "negotiation rounds so far")
	return cmd
}
