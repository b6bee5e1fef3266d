package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/service"
)

// localLayouts are accepted for --at values without a UTC offset.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func newChartCommand() *cobra.Command {
	var (
		at       string
		lat, lon float64
		tz       string
		label    string
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute a bodygraph chart",
		Long: `Compute a bodygraph chart from birth data.

The birth time is either RFC 3339 with an offset, or a local clock reading
that is interpreted in the --tz zone.`,
		Example: `  # Birth time with an explicit offset
  bodygraph chart --at 1984-01-11T12:00:00Z --lat 51.5 --lon -0.12 --tz Europe/London

  # Local clock time in the birth zone, archived
  bodygraph chart --at "1990-07-04 09:30" --lat 40.7 --lon -74 --tz America/New_York --save

  # JSON output
  bodygraph chart --at 1984-01-11T12:00:00Z --tz UTC --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			instant, err := parseBirthTime(at, tz)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), save)
			if err != nil {
				return err
			}
			defer a.close()

			chart, err := a.svc.Compute(cmd.Context(), service.ChartRequest{
				Birth: engine.BirthData{
					Instant:   instant,
					Latitude:  lat,
					Longitude: lon,
					Timezone:  tz,
				},
				Label: label,
				Save:  save,
			})
			if err != nil {
				return err
			}

			return printChart(cmd.OutOrStdout(), chart)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "birth time (RFC 3339, or local time in --tz)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "birth latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "birth longitude in degrees")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "IANA timezone of the birth place")
	cmd.Flags().StringVar(&label, "label", "", "label stored with the chart")
	cmd.Flags().BoolVar(&save, "save", false, "archive the chart")
	_ = cmd.MarkFlagRequired("at")

	return cmd
}

// parseBirthTime accepts RFC 3339, or a local reading in the tz zone.
func parseBirthTime(at, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		return t, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot interpret local time %q: unknown timezone %q", at, tz)
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, at, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid birth time %q: use RFC 3339 or YYYY-MM-DDTHH:MM", at)
}
