package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/service"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printChart(w io.Writer, chart *service.Chart) error {
	if jsonOutput {
		return printJSON(w, chart)
	}

	snap := chart.Snapshot
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if chart.Saved {
		fmt.Fprintf(tw, "ID:\t%s\n", chart.ID)
	}
	if chart.Label != "" {
		fmt.Fprintf(tw, "Label:\t%s\n", chart.Label)
	}
	fmt.Fprintf(tw, "Birth:\t%s (%s)\n", snap.Birth.Instant.Format(time.RFC3339), snap.Birth.Timezone)
	fmt.Fprintf(tw, "Design:\t%s\n", snap.DesignInstant.Format(time.RFC3339))
	fmt.Fprintf(tw, "Type:\t%s\n", snap.Type)
	fmt.Fprintf(tw, "Strategy:\t%s\n", snap.Strategy)
	fmt.Fprintf(tw, "Authority:\t%s\n", snap.Authority)
	fmt.Fprintf(tw, "Profile:\t%s\n", snap.Profile)
	fmt.Fprintf(tw, "Definition:\t%s\n", snap.Definition)
	fmt.Fprintf(tw, "Cross:\t%s\n", snap.IncarnationCross)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLANET\tPERSONALITY\tDESIGN")
	for i, p := range snap.Personality {
		design := ""
		if i < len(snap.Design) {
			design = activationString(snap.Design[i])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Planet, activationString(p), design)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(snap.Channels) == 0 {
		fmt.Fprintln(w, "No defined channels.")
	} else {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CHANNEL\tNAME\tCENTERS")
		for _, ch := range snap.Channels {
			fmt.Fprintf(tw, "%d-%d\t%s\t%s-%s\n", ch.Gate1, ch.Gate2, ch.Name,
				engine.CenterOf(ch.Gate1), engine.CenterOf(ch.Gate2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	var defined []string
	for _, c := range snap.Centers {
		if c.Defined {
			defined = append(defined, string(c.Center))
		}
	}
	if len(defined) == 0 {
		defined = []string{"none"}
	}
	_, err := fmt.Fprintf(w, "\nDefined centers: %s\n", strings.Join(defined, ", "))
	return err
}

func activationString(a engine.GateActivation) string {
	return fmt.Sprintf("%d.%d", a.Gate, a.Line)
}

func printChartList(w io.Writer, list *service.ChartList) error {
	if jsonOutput {
		return printJSON(w, list)
	}

	if len(list.Charts) == 0 {
		_, err := fmt.Fprintln(w, "No charts found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tBIRTH\tTYPE\tPROFILE\tAUTHORITY")
	for _, c := range list.Charts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Label, c.BirthInstant.Format(time.RFC3339), c.Type, c.Profile, c.Authority)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d of %d charts\n", len(list.Charts), list.Total)
	return err
}
