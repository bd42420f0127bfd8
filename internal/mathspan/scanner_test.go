package mathspan

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "plain and math and plain",
			input: "Evaluate $$x^2** now",
			want: []Segment{
				{Kind: KindPlain, Text: "Evaluate "},
				{Kind: KindMath, Text: "x^2"},
				{Kind: KindPlain, Text: " now"},
			},
		},
		{
			name:  "no delimiters",
			input: "What is the capital of France?",
			want: []Segment{
				{Kind: KindPlain, Text: "What is the capital of France?"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want: []Segment{
				{Kind: KindPlain, Text: ""},
			},
		},
		{
			name:  "math only",
			input: "$$\\frac{1}{2}**",
			want: []Segment{
				{Kind: KindMath, Text: "\\frac{1}{2}"},
			},
		},
		{
			name:  "two math spans",
			input: "$$a** + $$b** = c",
			want: []Segment{
				{Kind: KindMath, Text: "a"},
				{Kind: KindPlain, Text: " + "},
				{Kind: KindMath, Text: "b"},
				{Kind: KindPlain, Text: " = c"},
			},
		},
		{
			name:  "non-greedy end matching",
			input: "$$a** tail **",
			want: []Segment{
				{Kind: KindMath, Text: "a"},
				{Kind: KindPlain, Text: " tail **"},
			},
		},
		{
			name:  "unterminated span stays plain",
			input: "Evaluate $$x^2 now",
			want: []Segment{
				{Kind: KindPlain, Text: "Evaluate $$x^2 now"},
			},
		},
		{
			name:  "unterminated after valid span",
			input: "$$a** then $$broken",
			want: []Segment{
				{Kind: KindMath, Text: "a"},
				{Kind: KindPlain, Text: " then $$broken"},
			},
		},
		{
			name:  "empty math span",
			input: "x$$**y",
			want: []Segment{
				{Kind: KindPlain, Text: "x"},
				{Kind: KindMath, Text: ""},
				{Kind: KindPlain, Text: "y"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
