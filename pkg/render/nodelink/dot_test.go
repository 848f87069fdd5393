package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/leafstorm/railgen/internal/testnet"
)

func TestToDOT(t *testing.T) {
	dot, err := ToDOT(testnet.Metro(t), Options{})
	if err != nil {
		t.Fatalf("ToDOT() error: %v", err)
	}

	wants := []string{
		`digraph "Metro" {`,
		`"Central" [xlabel="Central", label="", pos="500,-400!", id="station-central"];`,
		`"Old Town" [xlabel="Old Town", label="", pos="420,-435!", id="station-old-town"];`,
		`"wp-1-2" [shape=point, width=0.05, pos="560,-380!"];`,
		`"Central" -> "wp-1-2" [color="#c0392b", tooltip="1 - Red", class="line-1", dir=none];`,
		`"Central" -> "Harbour" [color="#d35400", tooltip="2 - Harbour Shuttle", class="line-2"];`,
		`"Harbour" -> "Central" [color="#8e44ad", tooltip="3 - Circle", class="line-3", dir=none];`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"Harbour" -> "Central" [color="#d35400"`) {
		t.Error("one-way line closed like a loop")
	}
}

func TestToDOTScaleAndDetail(t *testing.T) {
	dot, err := ToDOT(testnet.Metro(t), Options{Scale: 10, Detailed: true})
	if err != nil {
		t.Fatalf("ToDOT() error: %v", err)
	}
	if !strings.Contains(dot, `pos="50,-40!"`) {
		t.Errorf("ToDOT() did not scale Central to (50, -40)\n%s", dot)
	}
	if !strings.Contains(dot, `xlabel="Central\nx = 0, z = 0\nInterchange with the ferry"`) {
		t.Errorf("ToDOT() missing detailed label\n%s", dot)
	}
	if !strings.Contains(dot, `tooltip="1 - Red (Trunk Line, Two-Way, Eastbound)"`) {
		t.Errorf("ToDOT() missing detailed tooltip\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	dot, err := ToDOT(testnet.Metro(t), Options{Scale: 4})
	if err != nil {
		t.Fatalf("ToDOT() error: %v", err)
	}
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("RenderSVG() did not produce SVG: %.80s", svg)
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() accepted malformed DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
}
