package common

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"A", KeyA},
		{"z", KeyZ},
		{"Key1", Key1},
		{"F12", KeyF12},
		{"Equals", KeyEqual},
		{"equal", KeyEqual},
		{"Minus", KeyMinus},
		{" space ", KeySpace},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.name)
		if err != nil {
			t.Fatalf("ParseKey(%q): unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseKey(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := ParseKey("NotAKey"); err == nil {
		t.Errorf("ParseKey(NotAKey): expected error")
	}
}

func TestKeyYAML(t *testing.T) {
	var doc struct {
		Trigger Key `yaml:"trigger"`
	}
	if err := yaml.Unmarshal([]byte("trigger: Key7\n"), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Trigger != Key7 {
		t.Fatalf("got %v, want %v", doc.Trigger, Key7)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "trigger: Key7\n" {
		t.Errorf("got %q, want %q", out, "trigger: Key7\n")
	}

	if err := yaml.Unmarshal([]byte("trigger: Bogus\n"), &doc); err == nil {
		t.Errorf("expected error for unknown key name")
	}
}

func TestModifiers(t *testing.T) {
	mods := ModControl | ModShift
	if !mods.Has(ModControl) {
		t.Errorf("expected control to be held")
	}
	if mods.Has(ModAlt) {
		t.Errorf("alt should not be held")
	}
	if mods == ModControl {
		t.Errorf("ctrl+shift must not equal ctrl alone")
	}
	if !IsModifier(KeyRightControl) || IsModifier(KeyA) {
		t.Errorf("IsModifier classification is wrong")
	}
}

func TestSharedDisposesOnce(t *testing.T) {
	disposed := 0
	first := NewShared(42, func(v int) {
		if v != 42 {
			t.Errorf("dispose got %d, want 42", v)
		}
		disposed++
	})
	second := first.Clone()
	if first.Refs() != 2 {
		t.Fatalf("got %d refs, want 2", first.Refs())
	}

	first.Release()
	if disposed != 0 {
		t.Fatalf("disposed early")
	}
	if second.Value() != 42 {
		t.Errorf("got %d, want 42", second.Value())
	}
	second.Release()
	if disposed != 1 {
		t.Fatalf("got %d disposals, want 1", disposed)
	}
}

func TestSharedDoubleReleasePanics(t *testing.T) {
	s := NewShared("x", nil)
	s.Release()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on double release")
		}
	}()
	s.Release()
}
