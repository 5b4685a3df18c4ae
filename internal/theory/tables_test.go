package theory

import (
	"reflect"
	"testing"
)

func TestScaleNotes(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		scaleType string
		expected  []string
	}{
		{
			name:      "C major",
			root:      "c",
			scaleType: "major",
			expected:  []string{"c", "d", "e", "f", "g", "a", "b"},
		},
		{
			name:      "G major spells f sharp",
			root:      "g",
			scaleType: "major",
			expected:  []string{"g", "a", "b", "c", "d", "e", "f#"},
		},
		{
			name:      "F major spells b flat",
			root:      "f",
			scaleType: "major",
			expected:  []string{"f", "g", "a", "bb", "c", "d", "e"},
		},
		{
			name:      "D major",
			root:      "d",
			scaleType: "major",
			expected:  []string{"d", "e", "f#", "g", "a", "b", "c#"},
		},
		{
			name:      "A natural minor",
			root:      "a",
			scaleType: "natural_minor",
			expected:  []string{"a", "b", "c", "d", "e", "f", "g"},
		},
		{
			name:      "E harmonic minor raises the seventh",
			root:      "e",
			scaleType: "harmonic_minor",
			expected:  []string{"e", "f#", "g", "a", "b", "c", "d#"},
		},
		{
			name:      "C major pentatonic",
			root:      "c",
			scaleType: "major_pentatonic",
			expected:  []string{"c", "d", "e", "g", "a"},
		},
		{
			name:      "A minor pentatonic",
			root:      "a",
			scaleType: "minor_pentatonic",
			expected:  []string{"a", "c", "d", "e", "g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScaleNotes(tt.root, tt.scaleType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}

	if _, err := ScaleNotes("c", "klezmer"); err == nil {
		t.Error("expected error for unknown scale type")
	}
	if _, err := ScaleNotes("x", "major"); err == nil {
		t.Error("expected error for bad root")
	}
}

func TestChordNotes(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		chordType string
		expected  []string
	}{
		{"C major triad", "c", "major", []string{"c", "e", "g"}},
		{"D minor triad", "d", "minor", []string{"d", "f", "a"}},
		{"G dominant seventh", "g", "dominant7", []string{"g", "b", "d", "f"}},
		{"B diminished", "b", "diminished", []string{"b", "d", "f"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChordNotes(tt.root, tt.chordType)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}

	if _, err := ChordNotes("c", "sus13"); err == nil {
		t.Error("expected error for unknown chord type")
	}
}

func TestKeyAlterations(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		sharps      []string
		flats       []string
		expectError bool
	}{
		{name: "C major is empty", key: "c"},
		{name: "G major", key: "g", sharps: []string{"f"}},
		{name: "case and mode words accepted", key: "G major", sharps: []string{"f"}},
		{name: "D major", key: "d", sharps: []string{"f", "c"}},
		{name: "F major", key: "f", flats: []string{"b"}},
		{name: "Bb major", key: "bb", flats: []string{"b", "e"}},
		{name: "relative minor maps to major signature", key: "e minor", sharps: []string{"f"}},
		{name: "compact minor spelling", key: "f#m", sharps: []string{"f", "c", "g"}},
		{name: "Eb minor", key: "eb minor", flats: []string{"b", "e", "a", "d", "g", "c"}},
		{name: "seven sharps", key: "c#", sharps: []string{"f", "c", "g", "d", "a", "e", "b"}},
		{name: "unknown tonic", key: "h", expectError: true},
		{name: "garbage", key: "not a key", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := KeyAlterations(tt.key)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.key)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(sig.Sharps, tt.sharps) {
				t.Errorf("sharps = %v, want %v", sig.Sharps, tt.sharps)
			}
			if !reflect.DeepEqual(sig.Flats, tt.flats) {
				t.Errorf("flats = %v, want %v", sig.Flats, tt.flats)
			}
		})
	}
}

func TestApplyKeySignature(t *testing.T) {
	tests := []struct {
		name     string
		pitch    string
		key      string
		expected string
	}{
		{"f gains sharp in G major", "f/4", "g", "f#/4"},
		{"b gains flat in F major", "b/4", "f", "bb/4"},
		{"explicit accidental untouched", "f#/4", "g", "f#/4"},
		{"explicit flat untouched", "bb/3", "c", "bb/3"},
		{"letter outside signature untouched", "c/4", "g", "c/4"},
		{"e gains flat in Bb major", "e/5", "bb", "eb/5"},
		{"minor key uses relative major signature", "f/3", "e minor", "f#/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyKeySignature(tt.pitch, tt.key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ApplyKeySignature(%q, %q) = %q, want %q", tt.pitch, tt.key, got, tt.expected)
			}
		})
	}

	if _, err := ApplyKeySignature("q/4", "c"); err == nil {
		t.Error("expected error for bad pitch")
	}
	if _, err := ApplyKeySignature("c/4", "zz"); err == nil {
		t.Error("expected error for bad key")
	}
}

func TestKeyTonic(t *testing.T) {
	tests := []struct {
		key   string
		tonic string
		minor bool
	}{
		{"c", "c", false},
		{"Bb", "bb", false},
		{"G major", "g", false},
		{"e minor", "e", true},
		{"f#m", "f#", true},
		{"am", "a", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			tonic, minor, err := KeyTonic(tt.key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tonic != tt.tonic || minor != tt.minor {
				t.Errorf("KeyTonic(%q) = (%q, %v), want (%q, %v)", tt.key, tonic, minor, tt.tonic, tt.minor)
			}
		})
	}
}
