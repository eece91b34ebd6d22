package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kcache/internal/adapters/config"
	"go.trai.ch/kcache/internal/app"
)

func (c *CLI) newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace.yaml>",
		Short: "Replay a recorded workload trace and report cache statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			configPath, _ := flags.GetString("config")
			jsonLogs, _ := flags.GetBool("json-logs")
			noTimings, _ := flags.GetBool("no-timings")

			opts := app.ReplayOptions{
				ConfigPath: configPath,
				TracePath:  args[0],
				JSONLogs:   jsonLogs,
				NoTimings:  noTimings,
			}
			if flags.Changed("capacity") {
				v, _ := flags.GetInt("capacity")
				opts.Capacity = &v
			}
			if flags.Changed("workers") {
				v, _ := flags.GetInt("workers")
				opts.Workers = &v
			}
			if flags.Changed("policy") {
				v, _ := flags.GetString("policy")
				opts.DuplicatePolicy = &v
			}
			if flags.Changed("routing") {
				v, _ := flags.GetString("routing")
				opts.Routing = &v
			}
			if flags.Changed("latency") {
				v, _ := flags.GetDuration("latency")
				opts.CompileLatency = &v
			}

			_, err := c.app.Replay(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().StringP("config", "c", config.DefaultFilename, "Path to the configuration file")
	cmd.Flags().Int("capacity", 0, "Kernel cache capacity per worker (overrides config)")
	cmd.Flags().IntP("workers", "w", 0, "Number of workers (overrides config)")
	cmd.Flags().String("policy", "", "Duplicate-key policy: strict or lazy (overrides config)")
	cmd.Flags().String("routing", "", "Call routing: pattern or round_robin (overrides config)")
	cmd.Flags().Duration("latency", 0, "Synthetic compile latency (overrides config)")
	cmd.Flags().Bool("json-logs", false, "Emit logs as JSON")
	cmd.Flags().Bool("no-timings", false, "Skip the compile timing table")
	return cmd
}
