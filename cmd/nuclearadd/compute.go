package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	nuclear "github.com/GriffinCanCode/nuclear-add"
	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
	"github.com/GriffinCanCode/nuclear-add/internal/shared/types"
)

func parseFloats(args []string) ([]float64, error) {
	xs := make([]float64, 0, len(args))
	for _, arg := range args {
		x, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", arg)
		}
		xs = append(xs, x)
	}
	return xs, nil
}

// readFloats reads whitespace separated numbers
func readFloats(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var words []string
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return parseFloats(words)
}

func eventsOf(e *nuclear.Engine) []nuclear.ErrorEvent {
	var out []nuclear.ErrorEvent
	for ev := range e.Tracer().Events() {
		out = append(out, ev)
	}
	return out
}

func printEvents(w io.Writer, events []nuclear.ErrorEvent) {
	if len(events) == 0 {
		return
	}
	fmt.Fprintln(w, "anomalies:")
	for _, ev := range events {
		fmt.Fprintf(w, "  %s\n", ev)
	}
}

type addOutput struct {
	A      types.Float          `json:"a"`
	B      types.Float          `json:"b"`
	Mode   string               `json:"mode"`
	Result types.Float          `json:"result"`
	Lower  types.Float          `json:"lower"`
	Upper  types.Float          `json:"upper"`
	Events []nuclear.ErrorEvent `json:"events"`
	Error  string               `json:"error,omitempty"`
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		mode   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "add A B",
		Short: "Add two numbers and report the error bound",
		Long: `Adds two numbers under the configured precision mode and prints an
interval that contains the exact sum. NaN, Inf and -Inf are accepted.
Put negative operands after "--".

Examples:
  nuclearadd add 0.1 0.2
  nuclearadd add --mode interval -- 1 -0.9999999999
  nuclearadd add 1e308 1e308 --strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xs, err := parseFloats(args)
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var extra []nuclear.Option
			if mode != "" {
				m, err := nuclear.ParsePrecisionMode(mode)
				if err != nil {
					return err
				}
				extra = append(extra, nuclear.WithPrecisionMode(m))
			}
			if cmd.Flags().Changed("strict") {
				extra = append(extra, nuclear.WithStrict(strict))
			}
			eng, err := opts.newEngine(cfg, extra...)
			if err != nil {
				return err
			}

			out := addOutput{
				A:    types.Float(xs[0]),
				B:    types.Float(xs[1]),
				Mode: eng.Config().PrecisionMode().String(),
			}
			result, addErr := eng.Add(nuclear.Scalar(xs[0]), nuclear.Scalar(xs[1]))
			if addErr == nil {
				out.Result = types.Float(result.Scalar())
				if iv, ok := result.(numeric.Interval); ok {
					out.Lower, out.Upper = types.Float(iv.Lower), types.Float(iv.Upper)
				} else {
					bound := numeric.PointInterval(xs[0]).Add(numeric.PointInterval(xs[1]))
					out.Lower, out.Upper = types.Float(bound.Lower), types.Float(bound.Upper)
				}
			} else {
				out.Error = addErr.Error()
			}
			out.Events = eventsOf(eng)

			w := cmd.OutOrStdout()
			if opts.jsonOutput {
				if err := printJSON(w, out); err != nil {
					return err
				}
				return addErr
			}

			if addErr == nil {
				fmt.Fprintf(w, "result: %v\n", float64(out.Result))
				fmt.Fprintf(w, "bound:  [%v, %v]\n", float64(out.Lower), float64(out.Upper))
				fmt.Fprintf(w, "mode:   %s\n", out.Mode)
			}
			printEvents(w, out.Events)
			return addErr
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Precision mode: compensated, fast, interval or traced")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on the first warning or critical anomaly")
	return cmd
}

type sumOutput struct {
	Count      int                  `json:"count"`
	Safe       types.Float          `json:"safe"`
	Naive      types.Float          `json:"naive"`
	Difference types.Float          `json:"difference"`
	Events     []nuclear.ErrorEvent `json:"events"`
}

func newSumCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sum [VALUES...]",
		Short: "Compare compensated and naive summation",
		Long: `Adds the values with Kahan-Babuska compensation and with a plain left
fold, and prints both. Without arguments the values are read from stdin,
separated by whitespace. Put negative values after "--".

Examples:
  nuclearadd sum -- 1 1e16 1 -1e16
  seq 1 1000000 | nuclearadd sum`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				xs  []float64
				err error
			)
			if len(args) > 0 {
				xs, err = parseFloats(args)
			} else {
				xs, err = readFloats(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			if len(xs) == 0 {
				return errors.New("no values to sum")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			eng, err := opts.newEngine(cfg)
			if err != nil {
				return err
			}

			safe, err := eng.SumSafe(xs)
			if err != nil {
				return err
			}
			naive := numeric.NaiveSum(xs)
			out := sumOutput{
				Count:      len(xs),
				Safe:       types.Float(safe),
				Naive:      types.Float(naive),
				Difference: types.Float(safe - naive),
				Events:     eventsOf(eng),
			}

			w := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(w, out)
			}
			fmt.Fprintf(w, "count:      %d\n", out.Count)
			fmt.Fprintf(w, "safe:       %v\n", safe)
			fmt.Fprintf(w, "naive:      %v\n", naive)
			fmt.Fprintf(w, "difference: %v\n", safe-naive)
			printEvents(w, out.Events)
			return nil
		},
	}
	return cmd
}

func newBackendsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the registered batch backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := nuclear.ListAvailableBackends()
			w := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(w, map[string][]string{"backends": names})
			}
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}
