// internal/config/config_test.go
package config

import (
	"strings"
	"testing"
)

func validSettings() Settings {
	return Settings{
		Extraction:        "green",
		Channels:          1,
		TimeBase:          0.001,
		SamplingFrequency: 1.0,
		RescanInterval:    1.0,
		WindowSeconds:     10,
		LowBPM:            42,
		HighBPM:           240,
		DetrendLambda:     0,
		SmoothPasses:      3,
		LogPath:           "heartbeat",
	}
}

func TestValidate_Defaults(t *testing.T) {
	s := validSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
}

func TestValidate_ChrominanceRequiresRGB(t *testing.T) {
	s := validSettings()
	s.Extraction = "chrominance"
	s.Channels = 1
	if err := s.Validate(); err == nil {
		t.Fatal("chrominance with 1 channel accepted")
	}

	s.Channels = 3
	if err := s.Validate(); err != nil {
		t.Fatalf("chrominance with 3 channels rejected: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantMsg string
	}{
		{"unknown extraction", func(s *Settings) { s.Extraction = "ica" }, "extraction"},
		{"bad channels", func(s *Settings) { s.Channels = 2 }, "channels"},
		{"zero time base", func(s *Settings) { s.TimeBase = 0 }, "time_base"},
		{"negative sampling", func(s *Settings) { s.SamplingFrequency = -1 }, "sampling_frequency"},
		{"zero rescan", func(s *Settings) { s.RescanInterval = 0 }, "rescan_interval"},
		{"window too short", func(s *Settings) { s.WindowSeconds = 0.5 }, "window_seconds"},
		{"window too long", func(s *Settings) { s.WindowSeconds = 120 }, "window_seconds"},
		{"inverted band", func(s *Settings) { s.LowBPM = 240; s.HighBPM = 42 }, "bpm band"},
		{"band too high", func(s *Settings) { s.HighBPM = 1000 }, "high_bpm"},
		{"negative lambda", func(s *Settings) { s.DetrendLambda = -5 }, "detrend_lambda"},
		{"zero passes", func(s *Settings) { s.SmoothPasses = 0 }, "smooth_passes"},
		{"too many passes", func(s *Settings) { s.SmoothPasses = 50 }, "smooth_passes"},
		{"diagnostics without path", func(s *Settings) { s.LogDiagnostics = true; s.LogPath = "" }, "log_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("invalid settings accepted")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	s := validSettings()
	s.Extraction = "ica"
	s.TimeBase = -1
	s.SmoothPasses = 0

	err := s.Validate()
	if err == nil {
		t.Fatal("invalid settings accepted")
	}
	for _, want := range []string{"extraction", "time_base", "smooth_passes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q: %v", want, err)
		}
	}
}
