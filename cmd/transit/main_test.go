package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/transit"
)

func TestPrintSamples_Table(t *testing.T) {
	steps, duration = 2, 200*time.Millisecond

	var buf bytes.Buffer
	if err := printSamples(&buf, "0px", "100px", transit.Linear); err != nil {
		t.Fatalf("printSamples() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"TIME", "PROGRESS", "VALUE", "0px", "50px", "100px", "100ms", "0.500"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestPrintSamples_MixedValues(t *testing.T) {
	steps, duration = 2, 200*time.Millisecond

	var buf bytes.Buffer
	if err := printSamples(&buf, "red", "10px", transit.Linear); err == nil {
		t.Error("expected error for mixed values")
	}
}
