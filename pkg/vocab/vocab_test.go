package vocab

import (
	"testing"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		want     Direction
		wantDown string
		wantUp   string
	}{
		{"north", North, "Northbound", "Southbound"},
		{"east", East, "Eastbound", "Westbound"},
		{"south", South, "Southbound", "Northbound"},
		{"west", West, "Westbound", "Eastbound"},
		{"out", Out, "Outbound", "Inbound"},
		{"in", In, "Inbound", "Outbound"},
		{"dextro", Dextro, "Dextro (Clockwise)", "Levo (Counterclockwise)"},
		{"levo", Levo, "Levo (Counterclockwise)", "Dextro (Clockwise)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if err != nil {
				t.Fatalf("ParseDirection(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
			down, up, err := got.Labels()
			if err != nil {
				t.Fatalf("Labels() error: %v", err)
			}
			if down != tt.wantDown || up != tt.wantUp {
				t.Errorf("Labels() = (%q, %q), want (%q, %q)", down, up, tt.wantDown, tt.wantUp)
			}
		})
	}
}

func TestParseUnknownVocabulary(t *testing.T) {
	tests := []struct {
		name  string
		parse func() error
	}{
		{"direction", func() error { _, err := ParseDirection("northeast"); return err }},
		{"direction case", func() error { _, err := ParseDirection("North"); return err }},
		{"flow", func() error { _, err := ParseFlow("two-way"); return err }},
		{"level", func() error { _, err := ParseLevel("elevated"); return err }},
		{"type", func() error { _, err := ParseType("y12"); return err }},
		{"empty type", func() error { _, err := ParseType(""); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse()
			if !rgerrors.Is(err, rgerrors.ErrCodeUnknownVocabulary) {
				t.Errorf("error = %v, want UNKNOWN_VOCABULARY", err)
			}
		})
	}
}

func TestFlowPredicates(t *testing.T) {
	tests := []struct {
		input      string
		wantLoop   bool
		wantOneWay bool
		wantLabel  string
	}{
		{"twoway", false, false, "Two-Way"},
		{"oneway", false, true, "One-Way"},
		{"loop", true, false, "Loop"},
		{"onewayloop", true, true, "One-Way Loop"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFlow(tt.input)
			if err != nil {
				t.Fatalf("ParseFlow(%q) error: %v", tt.input, err)
			}
			if f.IsLoop() != tt.wantLoop {
				t.Errorf("IsLoop() = %v, want %v", f.IsLoop(), tt.wantLoop)
			}
			if f.IsOneWay() != tt.wantOneWay {
				t.Errorf("IsOneWay() = %v, want %v", f.IsOneWay(), tt.wantOneWay)
			}
			if label, _ := f.Label(); label != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", label, tt.wantLabel)
			}
		})
	}
}

func TestLevelLabels(t *testing.T) {
	l, err := ParseLevel("el")
	if err != nil {
		t.Fatalf("ParseLevel error: %v", err)
	}
	if label, _ := l.Label(); label != "Elevated" {
		t.Errorf("Label() = %q, want Elevated", label)
	}
}

func TestTypeTablesInLockStep(t *testing.T) {
	for _, typ := range Types() {
		t.Run(typ.String(), func(t *testing.T) {
			parsed, err := ParseType(typ.String())
			if err != nil || parsed != typ {
				t.Fatalf("ParseType(%q) = %v, %v", typ.String(), parsed, err)
			}
			if _, err := typ.Label(); err != nil {
				t.Errorf("Label() error: %v", err)
			}
			color, err := typ.Color()
			if err != nil {
				t.Fatalf("Color() error: %v", err)
			}
			if len(color) != 7 || color[0] != '#' {
				t.Errorf("Color() = %q, want #rrggbb", color)
			}
		})
	}
}

func TestMissingVocabulary(t *testing.T) {
	tests := []struct {
		name   string
		lookup func() error
	}{
		{"zero direction", func() error { _, _, err := Direction(0).Labels(); return err }},
		{"out of range flow", func() error { _, err := Flow(42).Label(); return err }},
		{"zero level", func() error { _, err := Level(0).Label(); return err }},
		{"type label", func() error { _, err := Type(99).Label(); return err }},
		{"type color", func() error { _, err := Type(99).Color(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.lookup(); !rgerrors.Is(err, rgerrors.ErrCodeMissingVocabulary) {
				t.Errorf("error = %v, want MISSING_VOCABULARY", err)
			}
		})
	}
}

func TestCheckTables(t *testing.T) {
	if err := CheckTables(); err != nil {
		t.Fatalf("CheckTables() = %v", err)
	}
}

func TestCheckTablesDetectsDrift(t *testing.T) {
	saved := typeColors[Branch]
	delete(typeColors, Branch)
	defer func() { typeColors[Branch] = saved }()

	err := CheckTables()
	if !rgerrors.Is(err, rgerrors.ErrCodeMissingVocabulary) {
		t.Errorf("CheckTables() = %v, want MISSING_VOCABULARY", err)
	}
}
