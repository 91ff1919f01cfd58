package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/aquaassist/internal/engine"
	"github.com/abhisek/aquaassist/internal/history"
	"github.com/abhisek/aquaassist/internal/report"
	"github.com/abhisek/aquaassist/internal/water"
)

const cardWidth = 72

// classifyOutput is the --json shape of one classification.
type classifyOutput struct {
	engine.Result
	Message  string `json:"message"`
	Recorded bool   `json:"recorded"`
	Count    int    `json:"count"`
}

// outputOpts are the presentation flags shared by classify and voice.
type outputOpts struct {
	json    bool
	speak   string
	lang    string
	notify  bool
	noChart bool
}

func addMeasurementFlags(cmd *cobra.Command) {
	d := water.DefaultMeasurements()
	cmd.Flags().Float64("ph", d.PH, "pH (4-9)")
	cmd.Flags().Float64("salinity", d.Salinity, "Salinity in ppt (5-40)")
	cmd.Flags().Float64("do", d.DissolvedOxygen, "Dissolved oxygen in mg/L (2-10)")
	cmd.Flags().Float64("ammonia", d.Ammonia, "Ammonia in ppm (0-2)")
}

func measurementsFrom(cmd *cobra.Command) water.Measurements {
	var m water.Measurements
	m.PH, _ = cmd.Flags().GetFloat64("ph")
	m.Salinity, _ = cmd.Flags().GetFloat64("salinity")
	m.DissolvedOxygen, _ = cmd.Flags().GetFloat64("do")
	m.Ammonia, _ = cmd.Flags().GetFloat64("ammonia")
	return m
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	cmd.Flags().String("speak", "", "Write the spoken advisory to this mp3 file")
	cmd.Flags().String("lang", "translated", "Advisory language for speech and notifications: primary or translated")
	cmd.Flags().Bool("notify", false, "Show a desktop notification")
	cmd.Flags().Bool("no-chart", false, "Hide the parameter chart")
}

func outputOptsFrom(cmd *cobra.Command) outputOpts {
	var o outputOpts
	o.json, _ = cmd.Flags().GetBool("json")
	o.speak, _ = cmd.Flags().GetString("speak")
	o.lang, _ = cmd.Flags().GetString("lang")
	o.notify, _ = cmd.Flags().GetBool("notify")
	o.noChart, _ = cmd.Flags().GetBool("no-chart")
	return o
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one water reading and record it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()
			return classifyAndShow(cmd, d, measurementsFrom(cmd), outputOptsFrom(cmd))
		},
	}
	addMeasurementFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

// classifyAndShow classifies m, records it and renders the outcome. A failed
// history append still shows the result, then returns ErrNotRecorded.
func classifyAndShow(cmd *cobra.Command, d *deps, m water.Measurements, o outputOpts) error {
	ctx := cmd.Context()
	if o.speak != "" && !d.caps.OutputAvailable {
		return fmt.Errorf("speech output unavailable: set AQUA_OPENAI_API_KEY")
	}

	r, err := d.service.ClassifyAndRecord(ctx, m)
	var appendErr *history.ErrStore
	if err != nil && !errors.As(err, &appendErr) {
		return err
	}
	recorded := appendErr == nil

	count, err := d.service.Count(ctx)
	if err != nil {
		d.logger.Warn("counting history", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(classifyOutput{Result: r, Message: r.Message(o.lang), Recorded: recorded, Count: count}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, report.Card(r, report.Options{
			Width:    cardWidth,
			Speech:   d.caps,
			Recorded: recorded,
			Count:    count,
		}))
		if !o.noChart {
			fmt.Fprintln(out)
			fmt.Fprintln(out, report.Chart(r.Input, cardWidth-20))
		}
	}

	n := d.notifier(o.lang)
	if o.notify {
		n.SetEnabled(true)
	}
	n.Result(r)

	if o.speak != "" {
		audio, err := d.speech.Synthesize(ctx, r.Message(o.lang))
		if err != nil {
			return fmt.Errorf("speak advisory: %w", err)
		}
		if err := os.WriteFile(o.speak, audio, 0o644); err != nil {
			return fmt.Errorf("write audio: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "🔊 Advisory audio written to %s\n", o.speak)
	}
	if appendErr != nil {
		return &ErrNotRecorded{Err: appendErr}
	}
	return nil
}
