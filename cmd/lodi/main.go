package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lodi-go/lodi/internal/api"
	"github.com/lodi-go/lodi/internal/compare"
	"github.com/lodi-go/lodi/internal/config"
	"github.com/lodi-go/lodi/internal/dataset"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/logging"
	"github.com/lodi-go/lodi/internal/optimize"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "lodi",
	Short: "Swiss owner salary/dividend planner",
	Long: "Lodi compares and optimizes the salary/dividend split for Swiss\n" +
		"owner-managed companies across cantonal and communal tax regimes.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogger(logging.ParseLevel(viper.GetString("log_level")), viper.GetString("log_format"))
	},
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("data", "data", "directory with the tariff dataset")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.SetEnvPrefix("LODI")
	viper.AutomaticEnv()

	rootCmd.AddCommand(calculateCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
}

// loadAll loads the rule dataset and the owner profile.
func loadAll(profilePath string) (*domain.RuleSet, *config.Profile, error) {
	rules, err := dataset.NewLoader(viper.GetString("data")).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading dataset: %w", err)
	}
	profile, err := config.NewInputParser().LoadFromFile(profilePath)
	if err != nil {
		return nil, nil, err
	}
	return rules, profile, nil
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [profile-file]",
		Short: "Compare the salary-only and mixed scenarios for a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, profile, err := loadAll(args[0])
			if err != nil {
				return err
			}

			set, err := compare.NewCompareEngine(rules).Run(profile.Owner)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			formatter, err := compare.GetFormatterByName(format)
			if err != nil {
				return err
			}
			out, err := formatter.Format(set)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, out)
			return nil
		},
	}
	cmd.Flags().String("format", "table", "output format (table, csv, json)")
	return cmd
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [profile-file]",
		Short: "Grid-search the salary/dividend split minimizing the objective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, profile, err := loadAll(args[0])
			if err != nil {
				return err
			}

			opts := profile.Optimizer.Options()
			if step, _ := cmd.Flags().GetInt64("step"); step > 0 {
				opts.Step = decimal.NewFromInt(step)
			}
			if objective, _ := cmd.Flags().GetString("objective"); objective != "" {
				opts.Objective = optimize.Objective(objective)
			}
			if parallel, _ := cmd.Flags().GetBool("parallel"); parallel {
				opts.Parallel = true
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := optimize.NewSolver(rules, opts).Optimize(ctx, optimize.Request{Inputs: profile.Owner})
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, optimize.FormatResult(result))
			return nil
		},
	}
	cmd.Flags().Int64("step", 0, "salary grid step in CHF (overrides the profile)")
	cmd.Flags().String("objective", "", "min_total_tax or max_net_proceeds")
	cmd.Flags().Bool("parallel", false, "evaluate candidates on worker goroutines")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [profile-file]",
		Short: "Validate the dataset and a profile without computing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, profile, err := loadAll(args[0])
			if err != nil {
				return err
			}
			if _, err := rules.Jurisdiction(profile.Owner.Canton, profile.Owner.Commune); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "OK: %d cantons loaded, profile valid for %s/%s\n",
				len(rules.Cantons()), profile.Owner.Canton, profile.Owner.Commune)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison and optimizer over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := dataset.NewLoader(viper.GetString("data")).Load()
			if err != nil {
				return fmt.Errorf("loading dataset: %w", err)
			}

			port, _ := cmd.Flags().GetString("port")
			if port == "" {
				port = os.Getenv("PORT")
			}
			if port == "" {
				port = "8080"
			}
			return api.NewServer(rules, optimize.DefaultOptions()).ListenAndServe(port)
		},
	}
	cmd.Flags().String("port", "", "listen port (default $PORT or 8080)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "lodi %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, "go:", bi.GoVersion)
			}
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
