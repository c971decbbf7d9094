package detector_test

import (
	"testing"

	"go.trai.ch/qcache/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	for _, ci := range []string{"true", "1"} {
		t.Run("CI="+ci, func(t *testing.T) {
			t.Setenv("CI", ci)
			if mode := detector.DetectEnvironment(); mode != detector.ModePlain {
				t.Errorf("DetectEnvironment() = %v, want plain", mode)
			}
		})
	}
}

func TestDetectEnvironment_NotATerminal(t *testing.T) {
	t.Setenv("CI", "false")
	// go test captures stdout, so it is never a terminal here.
	if mode := detector.DetectEnvironment(); mode != detector.ModePlain {
		t.Errorf("DetectEnvironment() = %v, want plain", mode)
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name     string
		auto     detector.OutputMode
		flag     string
		expected detector.OutputMode
	}{
		{"empty flag keeps detection", detector.ModeTable, "", detector.ModeTable},
		{"auto keeps detection", detector.ModePlain, "auto", detector.ModePlain},
		{"table forces table", detector.ModePlain, "table", detector.ModeTable},
		{"plain forces plain", detector.ModeTable, "plain", detector.ModePlain},
		{"tsv is plain", detector.ModeTable, "tsv", detector.ModePlain},
		{"json forces json", detector.ModeTable, "json", detector.ModeJSON},
		{"unknown keeps detection", detector.ModeTable, "fancy", detector.ModeTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.ResolveMode(tt.auto, tt.flag); got != tt.expected {
				t.Errorf("ResolveMode(%v, %q) = %v, want %v", tt.auto, tt.flag, got, tt.expected)
			}
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	for mode, want := range map[detector.OutputMode]string{
		detector.ModeAuto:  "auto",
		detector.ModeTable: "table",
		detector.ModePlain: "plain",
		detector.ModeJSON:  "json",
	} {
		if got := mode.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
