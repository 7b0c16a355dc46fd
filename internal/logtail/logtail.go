package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
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
	count := 0
	idx := 0
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

// Attr is one key=value pair from a log line, in line order.
type Attr struct {
	Key   string
	Value string
}

// Entry is a parsed slog text-handler line.
type Entry struct {
	Time  time.Time
	Level slog.Level
	Msg   string
	Attrs []Attr
	// Raw is the unparsed line; set for every entry.
	Raw string
	// Parsed is false when the line did not look like slog output.
	Parsed bool
}

// Parse reads a line written by slog.NewTextHandler, e.g.
//
//	time=2024-06-10T12:00:00.000Z level=WARN msg="persist catalog failed" error="disk full"
//
// Lines in any other shape come back with Parsed=false and Level INFO.
func Parse(line string) Entry {
	e := Entry{Raw: line, Level: slog.LevelInfo}
	pairs, ok := splitPairs(line)
	if !ok {
		return e
	}
	for _, p := range pairs {
		switch p.Key {
		case slog.TimeKey:
			if t, err := time.Parse(time.RFC3339Nano, p.Value); err == nil {
				e.Time = t
			}
		case slog.LevelKey:
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(p.Value)); err == nil {
				e.Level = lvl
				e.Parsed = true
			}
		case slog.MessageKey:
			e.Msg = p.Value
		default:
			e.Attrs = append(e.Attrs, p)
		}
	}
	return e
}

func splitPairs(line string) ([]Attr, bool) {
	var out []Attr
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \t\"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			quoted, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return nil, false
			}
			value, err = strconv.Unquote(quoted)
			if err != nil {
				return nil, false
			}
			rest = rest[len(quoted):]
		} else {
			end := strings.IndexByte(rest, ' ')
			if end < 0 {
				end = len(rest)
			}
			value = rest[:end]
			rest = rest[end:]
		}
		out = append(out, Attr{Key: key, Value: value})
		rest = strings.TrimLeft(rest, " ")
	}
	return out, len(out) > 0
}

// Filter keeps entries at or above minLevel.
func Filter(entries []Entry, minLevel slog.Level) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level >= minLevel {
			out = append(out, e)
		}
	}
	return out
}

// Tail reads and parses the last maxLines of the log at path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(lines))
	for i, l := range lines {
		entries[i] = Parse(l)
	}
	return entries, nil
}
