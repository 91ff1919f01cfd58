package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/aquaassist/internal/speech"
	"github.com/abhisek/aquaassist/internal/water"
)

func newVoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Classify a spoken reading",
		Long: "Parses a reading such as \"pH seven point two, salinity eighteen, oxygen five\" " +
			"from --text, or transcribes it from --audio. Values not mentioned keep their flag values.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetString("text")
			audio, _ := cmd.Flags().GetString("audio")
			if (text == "") == (audio == "") {
				return fmt.Errorf("exactly one of --text or --audio is required")
			}

			d, err := buildDeps(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			if audio != "" {
				if !d.caps.InputAvailable {
					return fmt.Errorf("speech input unavailable: set AQUA_OPENAI_API_KEY")
				}
				text, err = d.speech.Transcribe(cmd.Context(), audio, d.cfg.Speech.Language)
				if err != nil {
					return fmt.Errorf("transcribe %s: %w", audio, err)
				}
			}

			reading, err := speech.ParseReading(text, measurementsFrom(cmd))
			if err != nil {
				return fmt.Errorf("%w in %q", err, text)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Heard: %s\n", heardList(reading.Heard))

			return classifyAndShow(cmd, d, reading.Measurements, outputOptsFrom(cmd))
		},
	}
	cmd.Flags().String("text", "", "Transcript of the spoken reading")
	cmd.Flags().String("audio", "", "Audio file to transcribe")
	addMeasurementFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

func heardList(fs []water.Feature) string {
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		if spec, ok := water.SpecFor(f); ok {
			names = append(names, spec.Label)
		}
	}
	return strings.Join(names, ", ")
}
