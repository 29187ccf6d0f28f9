//go:build !fyne

package ui

import (
	"strings"
	"testing"
)

func TestRunStubReturnsGuidance(t *testing.T) {
	err := Run("")
	if err == nil {
		t.Fatalf("stub Run should error")
	}
	if !strings.Contains(err.Error(), "-tags fyne") {
		t.Fatalf("error should point at the fyne build tag: %v", err)
	}
}
