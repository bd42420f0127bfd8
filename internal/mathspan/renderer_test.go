package mathspan

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderEscapesPlainSegments(t *testing.T) {
	r := NewRenderer(DelegateFunc(func(n string) (string, error) {
		return "<math>" + n + "</math>", nil
	}))

	got := r.Render(`Pick <b>one</b>: $$x<y**`)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[0].HTML != "Pick &lt;b&gt;one&lt;/b&gt;: " {
		t.Errorf("plain segment not escaped: %q", got[0].HTML)
	}
	if got[1].HTML != "<math>x<y</math>" {
		t.Errorf("math segment altered: %q", got[1].HTML)
	}
}

func TestRenderDelegateFailureIsLocalized(t *testing.T) {
	r := NewRenderer(DelegateFunc(func(n string) (string, error) {
		if n == "bad" {
			return "", errors.New("cannot typeset")
		}
		return n, nil
	}))

	got := r.Render("a $$bad** b $$ok** c")
	if len(got) != 5 {
		t.Fatalf("expected 5 segments, got %d", len(got))
	}

	if !got[1].Failed {
		t.Error("failed span not flagged")
	}
	if !strings.Contains(got[1].HTML, "math-error") || !strings.Contains(got[1].HTML, "bad") {
		t.Errorf("fallback marker missing original notation: %q", got[1].HTML)
	}

	// Rendering continues past the failure.
	if got[3].Failed || got[3].HTML != "ok" {
		t.Errorf("segment after failure affected: %+v", got[3])
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	r := NewRenderer(ClientSideDelegate{})

	first := r.Render("Evaluate $$x^2** now")
	second := r.Render("Evaluate $$x^2** now")

	if len(first) != len(second) {
		t.Fatalf("segment counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs between renders: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestClientSideDelegate(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		wantErr  bool
	}{
		{"simple", "x^2", false},
		{"balanced braces", "\\frac{1}{2}", false},
		{"empty", "   ", true},
		{"unclosed brace", "\\frac{1", true},
		{"stray closing brace", "x}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := ClientSideDelegate{}.RenderMath(tt.notation)
			if tt.wantErr {
				if err == nil {
					t.Errorf("RenderMath(%q) succeeded, want error", tt.notation)
				}
				return
			}
			if err != nil {
				t.Fatalf("RenderMath(%q) failed: %v", tt.notation, err)
			}
			if !strings.Contains(html, "data-notation=") {
				t.Errorf("output missing notation attribute: %q", html)
			}
		})
	}
}
