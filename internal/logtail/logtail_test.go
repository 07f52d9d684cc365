package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("Read() = %v, want no lines", lines)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Line
	}{
		{
			name:  "empty line",
			input: "",
			want:  Line{},
		},
		{
			name:  "no timestamp",
			input: "plain text",
			want:  Line{Message: "plain text"},
		},
		{
			name:  "tick failure",
			input: "2026/10/18 21:01:05 crown refresh (tick) failed (1 in a row): fetch crown state: boom",
			want: Line{
				Stamp:   "2026/10/18 21:01:05",
				Message: "crown refresh (tick) failed (1 in a row): fetch crown state: boom",
				Level:   LevelError,
			},
		},
		{
			name:  "claim broadcast",
			input: "2026/10/18 21:01:06 claim broadcast: txid=0xabc price=5000000",
			want: Line{
				Stamp:   "2026/10/18 21:01:06",
				Message: "claim broadcast: txid=0xabc price=5000000",
				Level:   LevelNotice,
			},
		},
		{
			name:  "malformed stamp",
			input: "2026-10-18 21:01:06 something",
			want:  Line{Message: "2026-10-18 21:01:06 something"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
