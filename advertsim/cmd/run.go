package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/advertise/catalog"
	"github.com/sarchlab/advertise/config"
	"github.com/sarchlab/advertise/simulation"
	"github.com/sarchlab/advertise/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario file]",
	Short: "Run a scenario.",
	Long: "`run [scenario file]` simulates the scenario and prints how " +
		"often each emitter broadcast.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, err := config.LoadFile(args[0])
		if err != nil {
			return err
		}

		if err = scenario.ApplyEnv(); err != nil {
			return err
		}

		logger, err := newLogger(cmd, scenario.LogLevel)
		if err != nil {
			return err
		}

		store, err := catalog.LoadFile(scenario.Catalog)
		if err != nil {
			return err
		}

		if err = store.Validate(); err != nil {
			return err
		}

		builder := simulation.MakeBuilder().
			WithScenario(scenario).
			WithCatalog(store).
			WithLogger(logger)

		if noMonitor, _ := cmd.Flags().GetBool("no-monitor"); noMonitor {
			builder = builder.WithoutMonitoring()
		}

		if out, _ := cmd.Flags().GetString("recording"); out != "" {
			builder = builder.WithOutputFileName(out)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sim := builder.Build()
		defer sim.Terminate()

		if err = sim.Run(ctx); err != nil {
			return err
		}

		printCounts(cmd.OutOrStdout(), sim.Counts())

		return nil
	},
}

func init() {
	runCmd.Flags().String("recording", "",
		"Record broadcasts into this SQLite file. Overrides the scenario.")
	runCmd.Flags().Bool("no-monitor", false,
		"Do not start the web monitor even if the scenario enables it.")

	rootCmd.AddCommand(runCmd)
}

func printCounts(w io.Writer, counts *tracing.CountTracer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "EMITTER\tBROADCASTS\tCANCELLED\tFAILED\tLAST")

	for _, c := range counts.Counts() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.0f\n",
			c.Owner, c.Broadcasts, c.Cancelled, c.Failed, c.LastTime)
	}

	tw.Flush()

	fmt.Fprintf(w, "total %d, peak %d at one time\n",
		counts.TotalBroadcasts(), counts.PeakSimultaneous())
}
