package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is a coarse severity inferred from a log message.
type Level int

const (
	LevelInfo Level = iota
	LevelNotice
	LevelError
)

// Line is one log line split into its timestamp and message.
type Line struct {
	Stamp   string // "2006/01/02 15:04:05", empty when the line has none
	Message string
	Level   Level
}

// stampLen is the width of the standard logger's date and time prefix.
const stampLen = len("2006/01/02 15:04:05")

// Parse splits a line written by the standard logger with LstdFlags.
func Parse(raw string) Line {
	line := Line{Message: raw}
	if len(raw) > stampLen && raw[stampLen] == ' ' && looksLikeStamp(raw[:stampLen]) {
		line.Stamp = raw[:stampLen]
		line.Message = raw[stampLen+1:]
	}
	line.Level = classify(line.Message)
	return line
}

func looksLikeStamp(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch i {
		case 4, 7:
			if c != '/' {
				return false
			}
		case 10:
			if c != ' ' {
				return false
			}
		case 13, 16:
			if c != ':' {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

var (
	errorWords  = []string{"failed", "rejected", "error", "panic"}
	noticeWords = []string{"claim broadcast", "new reign", "signed in", "signed out"}
)

func classify(msg string) Level {
	lower := strings.ToLower(msg)
	for _, w := range errorWords {
		if strings.Contains(lower, w) {
			return LevelError
		}
	}
	for _, w := range noticeWords {
		if strings.Contains(lower, w) {
			return LevelNotice
		}
	}
	return LevelInfo
}
