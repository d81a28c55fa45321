package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flexstarter/internal/events"
	"flexstarter/internal/models"
	"flexstarter/internal/policy"
	awsprovider "flexstarter/internal/providers/aws"
	"flexstarter/internal/recovery"
	"flexstarter/internal/report"
	"flexstarter/internal/revert"
	"flexstarter/pkg/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flexstarter",
		Short: "Recover EC2 start failures by substituting comparable instance types, and revert substitutions on stop",
	}
	rootCmd.AddCommand(newRecoverCommand())
	rootCmd.AddCommand(newRevertCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRecoverCommand() *cobra.Command {
	var eventPath string
	var instanceIDs string
	var policyPath string
	var region string
	var outputFormat string
	var concurrencyLimit int
	var logLevel string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Handle a failed StartInstances batch: retry each instance, fall back to comparable types",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewDefaultLogger()
			logger.SetLevel(logging.StringToLogLevel(logLevel))

			ev, err := loadFailureEvent(eventPath, instanceIDs)
			if err != nil {
				return err
			}

			pol, err := loadPolicy(policyPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			client, err := awsprovider.NewEC2Client(ctx, region)
			if err != nil {
				return err
			}

			service := recovery.NewService(
				recovery.Config{ConcurrencyLimit: concurrencyLimit},
				awsprovider.NewComputeServiceWithClient(client),
				awsprovider.NewCatalogServiceWithClient(client),
				pol,
				logger,
			)

			outcomes, err := service.Run(ctx, ev)
			if err != nil {
				return err
			}
			return printAndExit("recovery", outcomes, outputFormat)
		},
	}

	cmd.Flags().StringVar(&eventPath, "event", "", "Path to the failure event JSON document (\"-\" for stdin)")
	cmd.Flags().StringVar(&instanceIDs, "instance-ids", "", "Comma-separated instance IDs (alternative to --event)")
	cmd.Flags().StringVar(&policyPath, "policy", "", "Path to the policy document (.json or .hcl); defaults apply when omitted")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (defaults to the SDK configuration)")
	cmd.Flags().StringVar(&outputFormat, "output", "table", "Output format: table or json")
	cmd.Flags().IntVar(&concurrencyLimit, "concurrency", 0, "Maximum number of instances to process concurrently (0 = unlimited)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	return cmd
}

func newRevertCommand() *cobra.Command {
	var eventPath string
	var instanceIDs string
	var region string
	var outputFormat string
	var pollInterval time.Duration
	var maxAttempts int
	var logLevel string

	cmd := &cobra.Command{
		Use:   "revert",
		Short: "Handle a stop event: restore substituted instances to their original type",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewDefaultLogger()
			logger.SetLevel(logging.StringToLogLevel(logLevel))

			ev, err := loadStopEvent(eventPath, instanceIDs)
			if err != nil {
				return err
			}

			ctx := context.Background()
			client, err := awsprovider.NewEC2Client(ctx, region)
			if err != nil {
				return err
			}

			config := revert.DefaultConfig()
			if pollInterval > 0 {
				config.PollInterval = pollInterval
			}
			if maxAttempts > 0 {
				config.MaxAttempts = maxAttempts
			}

			service := revert.NewService(
				config,
				awsprovider.NewComputeServiceWithClient(client),
				awsprovider.NewCatalogServiceWithClient(client),
				logger,
			)

			outcomes, err := service.Run(ctx, ev)
			if err != nil {
				return err
			}
			return printAndExit("revert", outcomes, outputFormat)
		},
	}

	cmd.Flags().StringVar(&eventPath, "event", "", "Path to the stop event JSON document (\"-\" for stdin)")
	cmd.Flags().StringVar(&instanceIDs, "instance-ids", "", "Comma-separated instance IDs (alternative to --event)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (defaults to the SDK configuration)")
	cmd.Flags().StringVar(&outputFormat, "output", "table", "Output format: table or json")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Delay between stop-state checks (default 10s)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Maximum stop-state checks before giving up (default 30)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	return cmd
}

// loadFailureEvent builds the failure event from a document or, for manual
// invocations, from a plain instance id list.
func loadFailureEvent(eventPath, instanceIDs string) (events.FailureEvent, error) {
	if eventPath != "" {
		data, err := readEventData(eventPath)
		if err != nil {
			return events.FailureEvent{}, err
		}
		return events.ParseFailureEvent(data)
	}
	ids := splitIDs(instanceIDs)
	if len(ids) == 0 {
		return events.FailureEvent{}, fmt.Errorf("either --event or --instance-ids is required")
	}
	return events.FailureEvent{
		InstanceIDs: ids,
		ErrorCode:   "Server.InsufficientInstanceCapacity",
	}, nil
}

func loadStopEvent(eventPath, instanceIDs string) (events.StopEvent, error) {
	if eventPath != "" {
		data, err := readEventData(eventPath)
		if err != nil {
			return events.StopEvent{}, err
		}
		return events.ParseStopEvent(data)
	}
	ids := splitIDs(instanceIDs)
	if len(ids) == 0 {
		return events.StopEvent{}, fmt.Errorf("either --event or --instance-ids is required")
	}
	return events.StopEvent{InstanceIDs: ids}, nil
}

func readEventData(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func loadPolicy(path string) (policy.Policy, error) {
	if path == "" {
		return policy.Default(), nil
	}
	return policy.Load(path)
}

func printAndExit(workflow string, outcomes []models.Outcome, outputFormat string) error {
	format := report.OutputFormatTypeTABLE
	if strings.EqualFold(outputFormat, "json") {
		format = report.OutputFormatTypeJSON
	}

	printer := report.DefaultPrinter{}
	if err := printer.PrintOutcomes(workflow, outcomes, format); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Status == models.StatusFailed {
			os.Exit(1)
		}
	}
	return nil
}
