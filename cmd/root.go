// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/2samgu2/heartbeat-android/internal/config"
	"github.com/2samgu2/heartbeat-android/internal/diag"
	"github.com/2samgu2/heartbeat-android/internal/rppg"
	"github.com/2samgu2/heartbeat-android/internal/source"
)

var (
	inputPath string
	simBPM    float64
	simFPS    float64
	simSecs   float64
)

var rootCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "Heart-rate estimation from face-region brightness samples",
	Long: `Estimates heart rate from subtle periodic color fluctuations in a
tracked face region (remote photoplethysmography). Reads recorded samples
from a file or generates a synthetic pulse, and prints one aggregated
report per sampling interval.`,
	RunE: run,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().StringP("extraction", "e", "green", "extraction path: green or chrominance")
	rootCmd.PersistentFlags().Float64P("interval", "i", 1.0, "seconds between heart-rate reports")
	rootCmd.PersistentFlags().BoolP("log", "l", false, "write diagnostic CSV dumps")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	// Bind flags to viper
	viper.BindPFlag("extraction", rootCmd.PersistentFlags().Lookup("extraction"))
	viper.BindPFlag("sampling_frequency", rootCmd.PersistentFlags().Lookup("interval"))
	viper.BindPFlag("log_diagnostics", rootCmd.PersistentFlags().Lookup("log"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Source selection
	rootCmd.Flags().StringVar(&inputPath, "input", "", "recorded sample file (timestamp;value[;value;value];resync)")
	rootCmd.Flags().Float64Var(&simBPM, "bpm", 72, "synthetic source heart rate")
	rootCmd.Flags().Float64Var(&simFPS, "fps", 30, "synthetic source frame rate")
	rootCmd.Flags().Float64Var(&simSecs, "duration", 30, "synthetic source duration in seconds")
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Get()
	if err != nil {
		return err
	}

	if settings.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	pipeline, err := rppg.New(rppg.Config{
		Mode:              rppg.ExtractionMode(settings.Extraction),
		Channels:          settings.Channels,
		TimeBase:          settings.TimeBase,
		SamplingFrequency: settings.SamplingFrequency,
		WindowSeconds:     settings.WindowSeconds,
		LowBPM:            settings.LowBPM,
		HighBPM:           settings.HighBPM,
		DetrendLambda:     settings.DetrendLambda,
		SmoothPasses:      settings.SmoothPasses,
	})
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	if settings.LogDiagnostics {
		recorder, err := diag.New(settings.LogPath)
		if err != nil {
			return err
		}
		defer recorder.Close()
		pipeline.SetTracer(recorder)
	}

	pipeline.SetCallback(func(rep rppg.Report) {
		fmt.Printf("%d: %.1f bpm (min %.1f, max %.1f)\n", rep.Timestamp, rep.Mean, rep.Min, rep.Max)
	})

	src, cleanup, err := openSource(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	for {
		sample, ok := src.Next()
		if !ok {
			break
		}
		if err := pipeline.Process(sample); err != nil {
			return fmt.Errorf("process frame: %w", err)
		}
	}

	if replay, ok := src.(*source.Replay); ok {
		if err := replay.Err(); err != nil {
			return fmt.Errorf("read samples: %w", err)
		}
	}
	return nil
}

func openSource(settings *config.Settings) (source.Source, func(), error) {
	if inputPath != "" {
		replay, err := source.OpenReplay(inputPath)
		if err != nil {
			return nil, nil, err
		}
		return replay, func() { replay.Close() }, nil
	}

	cfg := source.DefaultPulseConfig()
	cfg.BPM = simBPM
	cfg.FPS = simFPS
	cfg.Duration = simSecs
	cfg.Channels = settings.Channels
	cfg.RescanInterval = settings.RescanInterval
	pulse, err := source.NewPulse(cfg)
	if err != nil {
		return nil, nil, err
	}
	return pulse, func() {}, nil
}
