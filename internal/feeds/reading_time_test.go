package feeds

import (
	"strings"
	"testing"
)

func TestReadingMinutes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty text", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"punctuation only", "-- ... !!", 0},
		{"single word", "hello", 1},
		{"short paragraph", "Markets rallied on Tuesday after the central bank held rates.", 1},
		{"230 words is 1 minute", strings.Repeat("word ", 230), 1},
		{"231 words is 2 minutes", strings.Repeat("word ", 231), 2},
		{"dashes split words", strings.Repeat("well-known ", 230), 2},
		{"1150 words is 5 minutes", strings.Repeat("word ", 1150), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingMinutes(tt.text); got != tt.want {
				t.Errorf("ReadingMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}
