package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"listrik/internal/core"
	"listrik/internal/format"
	"listrik/internal/report"
)

type reportOptions struct {
	tariff string
	adds   []string
}

// renderer writes one report view as text.
type renderer func(w io.Writer, s core.Snapshot) error

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard reports as text tables",
		Long: `Builds a ledger from the catalog seed, applies --add and --tariff, and
prints one report. Example:

  listrik report cost --tariff R-2 --add "Setrika:1:350:R-1:1"`,
	}
	cmd.PersistentFlags().StringVar(&opts.tariff, "tariff", "", "tariff class for the aggregate cost")
	cmd.PersistentFlags().StringArrayVar(&opts.adds, "add", nil, "extra appliance as name:units:watts[:class[:hours]] (repeatable)")

	subs := []struct {
		use, short string
		render     renderer
	}{
		{"summary", "Headline figures", renderSummary},
		{"appliances", "Registered appliances and their power draw", renderAppliances},
		{"usage", "Monthly consumption per appliance", renderUsage},
		{"cost", "Estimated monthly cost per appliance", renderCost},
		{"suggest", "Savings from capping daily use", renderSuggestions},
	}
	for _, sub := range subs {
		render := sub.render
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				snap, err := buildSnapshot(root, opts)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), snap)
			},
		})
	}
	return cmd
}

func buildSnapshot(root *rootOptions, opts *reportOptions) (core.Snapshot, error) {
	cat, err := root.loadCatalog()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("loading catalog: %w", err)
	}
	l, err := cat.NewLedger()
	if err != nil {
		return core.Snapshot{}, err
	}

	for _, arg := range opts.adds {
		in, err := parseApplianceArg(arg, cat.DefaultClass)
		if err != nil {
			return core.Snapshot{}, err
		}
		if _, err := l.AddAppliance(in); err != nil {
			return core.Snapshot{}, fmt.Errorf("--add %q: %w", arg, err)
		}
	}

	if opts.tariff != "" {
		if !l.Snapshot().Tariffs.Has(opts.tariff) {
			return core.Snapshot{}, fmt.Errorf("--tariff: unknown class %q (have %s)",
				opts.tariff, strings.Join(l.Snapshot().Tariffs.Classes(), ", "))
		}
		l.SetTariffClass(opts.tariff)
	}
	return l.Snapshot(), nil
}

// parseApplianceArg reads name:units:watts[:class[:hours]]. Class defaults to
// defaultClass and hours to 1.
func parseApplianceArg(arg, defaultClass string) (core.ApplianceInput, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 || len(parts) > 5 {
		return core.ApplianceInput{}, fmt.Errorf("--add %q: want name:units:watts[:class[:hours]]", arg)
	}

	in := core.ApplianceInput{
		Name:        strings.TrimSpace(parts[0]),
		TariffClass: defaultClass,
		HoursPerDay: 1,
	}
	if in.Name == "" {
		return core.ApplianceInput{}, fmt.Errorf("--add %q: %w", arg, &core.ValidationError{Field: "name", Reason: "is required"})
	}

	units, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return core.ApplianceInput{}, fmt.Errorf("--add %q: %w", arg, &core.ValidationError{Field: "units", Reason: "must be a whole number"})
	}
	in.Units = units

	watts, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return core.ApplianceInput{}, fmt.Errorf("--add %q: %w", arg, &core.ValidationError{Field: "watts", Reason: "must be a number"})
	}
	in.WattsPerUnit = watts

	if len(parts) > 3 && strings.TrimSpace(parts[3]) != "" {
		in.TariffClass = strings.TrimSpace(parts[3])
	}
	if len(parts) > 4 {
		hours, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		if err != nil {
			return core.ApplianceInput{}, fmt.Errorf("--add %q: %w", arg, &core.ValidationError{Field: "hours", Reason: "must be a number"})
		}
		in.HoursPerDay = hours
	}
	return in, in.Validate()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func renderSummary(w io.Writer, s core.Snapshot) error {
	sum := s.Summary()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Appliances:\t%d\n", sum.ApplianceCount)
	fmt.Fprintf(tw, "Monthly consumption:\t%s\n", format.KWh(sum.TotalKWh))
	fmt.Fprintf(tw, "Average per day:\t%s\n", format.KWh(sum.TotalKWh/core.DaysPerMonth))
	fmt.Fprintf(tw, "Tariff class:\t%s (%s/kWh)\n", sum.SelectedTariffClass, format.Rupiah(s.SelectedPrice()))
	fmt.Fprintf(tw, "Estimated cost:\t%s\n", format.Rupiah(sum.EstimatedCost))
	fmt.Fprintf(tw, "Potential savings:\t%s (%s)\n", format.KWh(sum.SavingsKWh), format.Rupiah(sum.SavingsCost))
	return tw.Flush()
}

func renderAppliances(w io.Writer, s core.Snapshot) error {
	v := report.Appliances(s)
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tCLASS\tUNITS\tWATTS/UNIT\tTOTAL WATTS\tHOURS/DAY\t")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t\n",
			r.Name, r.TariffClass, r.Units, format.Watts(r.WattsPerUnit), format.Watts(r.TotalWatts), format.Hours(r.HoursPerDay))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\t\t\n", format.Watts(v.TotalWatts))
	return tw.Flush()
}

func renderUsage(w io.Writer, s core.Snapshot) error {
	v := report.Usage(s)
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tHOURS/DAY\tKWH/HOUR\tMONTHLY\t")
	for _, r := range v.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Name, format.Hours(r.HoursPerDay), format.Decimal(r.KWhPerHour), format.KWh(r.MonthlyKWh))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\t\n", format.KWh(v.TotalKWh))
	fmt.Fprintf(tw, "PER DAY\t\t\t%s\t\n", format.KWh(v.AveragePerDay))
	return tw.Flush()
}

// renderCost prints the aggregate even when a row cannot be priced, then
// returns the lookup error.
func renderCost(w io.Writer, s core.Snapshot) error {
	v, err := report.Cost(s)
	tw := newTable(w)
	if err == nil {
		fmt.Fprintln(tw, "NAME\tCLASS\tMONTHLY\tCOST\t")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Name, r.TariffClass, format.KWh(r.KWh), format.Rupiah(r.Cost))
		}
	}
	fmt.Fprintf(tw, "TOTAL (%s @ %s)\t\t%s\t%s\t\n",
		v.SelectedClass, format.Rupiah(v.SelectedPrice), format.KWh(v.TotalKWh), format.Rupiah(v.TotalCost))
	if ferr := tw.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return fmt.Errorf("per-appliance cost: %w", err)
	}
	return nil
}

func renderSuggestions(w io.Writer, s core.Snapshot) error {
	v := report.Suggestions(s)
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tHOURS\tSUGGESTED\tMONTHLY\tSUGGESTED\t")
	for _, r := range v.PerAppliance {
		name := r.Name
		if r.Exempt {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			name, format.Hours(r.CurrentHours), format.Hours(r.SuggestedHours), format.KWh(r.CurrentKWh), format.KWh(r.SuggestedKWh))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\t%s\t\n", format.KWh(v.CurrentTotalKWh), format.KWh(v.SuggestedTotalKWh))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n* always on: %s\n", strings.Join(v.AlwaysOn, ", "))
	fmt.Fprintf(w, "Capping other appliances at %s/day saves %s (%s).\n",
		format.Hours(v.CapHours), format.KWh(v.SavingsKWh), format.Rupiah(v.SavingsCost))
	return nil
}
