// cmd/root_test.go
package cmd

import (
	"testing"

	"github.com/2samgu2/heartbeat-android/internal/config"
)

func TestRootCommand_Flags(t *testing.T) {
	persistent := []string{"extraction", "interval", "log", "debug"}
	for _, name := range persistent {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}

	local := []string{"input", "bpm", "fps", "duration"}
	for _, name := range local {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not registered", name)
		}
	}
}

func TestOpenSource_Synthetic(t *testing.T) {
	inputPath = ""
	simBPM = 72
	simFPS = 30
	simSecs = 1

	settings := &config.Settings{Channels: 1, RescanInterval: 1}
	src, cleanup, err := openSource(settings)
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	defer cleanup()

	frames := 0
	for {
		if _, ok := src.Next(); !ok {
			break
		}
		frames++
	}
	if frames != 30 {
		t.Errorf("frames = %d, want 30", frames)
	}
}

func TestOpenSource_MissingInput(t *testing.T) {
	inputPath = "/nonexistent/samples.csv"
	defer func() { inputPath = "" }()

	settings := &config.Settings{Channels: 1, RescanInterval: 1}
	if _, _, err := openSource(settings); err == nil {
		t.Error("missing input file accepted")
	}
}
