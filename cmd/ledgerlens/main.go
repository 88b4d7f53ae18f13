package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerlens/ledgerlens-core/internal/normalisers"
	"github.com/ledgerlens/ledgerlens-core/internal/postprocessors"
	"github.com/ledgerlens/ledgerlens-core/internal/queryfilters"
	"github.com/ledgerlens/ledgerlens-core/internal/statements"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ledgerlens",
	Short: "Inspect and prepare bank statement exports",
	Long: `LedgerLens is a companion tool for ledgerlens-core. It normalizes
statement exports to the canonical transaction table, shows the structured
filters extracted from a search query, and generates synthetic statements
for testing.`,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Normalize a statement export to the canonical transaction table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		table, err := statements.Read(path, f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		txs, err := normalisers.New().Normalise(table)
		if err != nil {
			return fmt.Errorf("normalizing %s: %w", path, err)
		}
		txs = postprocessors.DefaultPipeline().Process(txs)

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(txs)
		}

		w := csv.NewWriter(out)
		if err := w.Write([]string{"date", "description", "amount", "type", "month", "day_of_week"}); err != nil {
			return err
		}
		for i := range txs {
			t := &txs[i]
			record := []string{
				t.Date.Format("2006-01-02"),
				t.Description,
				strconv.FormatFloat(t.Amount, 'f', 2, 64),
				string(t.Type),
				t.Month,
				t.DayOfWeek,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters <query>",
	Short: "Show the structured filters extracted from a search query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters := queryfilters.Extract(args[0], time.Now())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(filters)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic statement export",
	RunE: func(cmd *cobra.Command, args []string) error {
		dialect := statements.Dialect(viper.GetString("generate.dialect"))
		switch dialect {
		case statements.DialectStandard, statements.DialectBank, statements.DialectEuro:
		default:
			return fmt.Errorf("unknown dialect %q (use: standard, bank, or euro)", dialect)
		}

		start, err := time.Parse("2006-01-02", viper.GetString("generate.start"))
		if err != nil {
			return fmt.Errorf("start must be YYYY-MM-DD: %w", err)
		}
		end, err := time.Parse("2006-01-02", viper.GetString("generate.end"))
		if err != nil {
			return fmt.Errorf("end must be YYYY-MM-DD: %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("end %s precedes start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
		}

		gen := statements.NewGenerator(viper.GetUint64("generate.seed"))
		txs := gen.Transactions(start, end, viper.GetInt("generate.count"))

		out := cmd.OutOrStdout()
		if path := viper.GetString("generate.output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		return gen.WriteCSV(out, dialect, txs)
	},
}

func init() {
	extractCmd.Flags().Bool("json", false, "emit JSON instead of CSV")

	generateCmd.Flags().String("dialect", "standard", "column layout: standard, bank, or euro")
	generateCmd.Flags().Int("count", 120, "number of merchant transactions")
	generateCmd.Flags().String("start", "2024-01-01", "first statement date (YYYY-MM-DD)")
	generateCmd.Flags().String("end", "2024-03-31", "last statement date (YYYY-MM-DD)")
	generateCmd.Flags().Uint64("seed", 1, "random seed, same seed gives the same statement")
	generateCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	_ = viper.BindPFlag("generate.dialect", generateCmd.Flags().Lookup("dialect"))
	_ = viper.BindPFlag("generate.count", generateCmd.Flags().Lookup("count"))
	_ = viper.BindPFlag("generate.start", generateCmd.Flags().Lookup("start"))
	_ = viper.BindPFlag("generate.end", generateCmd.Flags().Lookup("end"))
	_ = viper.BindPFlag("generate.seed", generateCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("generate.output", generateCmd.Flags().Lookup("output"))

	viper.SetEnvPrefix("LEDGERLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(extractCmd, filtersCmd, generateCmd)
}
