package tokens

import "testing"

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty string", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"single word", "hello", 2},         // ceil(1 * 1.3)
		{"two words", "hello world", 3},     // ceil(2 * 1.3)
		{"ten words", "a b c d e f g h i j", 13},
		{"runs of whitespace collapse", "a   b\n\nc", 4}, // ceil(3 * 1.3)
		{"leading and trailing whitespace", "  hello world  ", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.text); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateNonNegative(t *testing.T) {
	for _, text := range []string{"", "x", "some longer piece of text"} {
		if got := Estimate(text); got < 0 {
			t.Errorf("Estimate(%q) = %d, want >= 0", text, got)
		}
	}
}

func TestEstimateAll(t *testing.T) {
	got := EstimateAll("hello world", "", "one two three")
	want := Estimate("hello world") + Estimate("one two three")
	if got != want {
		t.Errorf("EstimateAll = %d, want %d", got, want)
	}
}
