// Package lrc reads LRC lyrics files and tracks which part of them is being sung.
package lrc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/util"
)

var (
	ErrEmptyTag    = errors.New("tag content must not be empty")
	ErrInvalidTag  = errors.New("invalid tag")
	ErrInvalidLine = errors.New("line must start with '['")
)

// ParseError locates a failure within an LRC file.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Span is a timed byte range of a line's text.
type Span struct {
	Time     time.Duration
	From, To int
}

// TimedLine is a lyrics line with one span per time tag it carried.
type TimedLine struct {
	Text  string
	Spans []Span
}

// Tag is an ID tag such as [ar:Artist] or [ti:Title].
type Tag struct {
	Key, Value string
}

// File is the parsed content of an LRC file.
type File struct {
	Tags  []Tag
	Lines []TimedLine
}

// ParseFile parses the LRC file at path.
func ParseFile(path string) (*File, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, err
	}
	defer util.Ignore(f.Close)

	return Parse(f)
}

// Parse reads LRC content from r.
//
// A line holding several time tags, as in "[00:01.00]Never [00:01.50]gonna",
// yields one span per tag so that words can be highlighted individually.
// An [offset:ms] tag shifts every timed line that follows it.
func Parse(r io.Reader) (*File, error) {
	var (
		file    File
		offset  time.Duration
		scanner = bufio.NewScanner(r)
		number  int
	)

	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		number++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if number == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" {
			continue
		}

		parsed, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: number, Err: err}
		}

		switch v := parsed.(type) {
		case TimedLine:
			for i := range v.Spans {
				v.Spans[i].Time = max(v.Spans[i].Time+offset, 0)
			}
			file.Lines = append(file.Lines, v)
		case offsetTag:
			offset = time.Duration(v) * time.Millisecond
		case Tag:
			file.Tags = append(file.Tags, v)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &file, nil
}

type offsetTag int64

func parseLine(line string) (any, error) {
	if line[0] != '[' {
		return nil, fmt.Errorf("%w, found %q", ErrInvalidLine, line[0])
	}

	var (
		timed TimedLine
		text  strings.Builder
	)

	for _, part := range strings.Split(line, "[")[1:] {
		content, rest, _ := strings.Cut(part, "]")
		chunk, _, _ := strings.Cut(rest, "]")

		tag, err := parseTag(content)
		if err != nil {
			return nil, err
		}

		at, ok := tag.(time.Duration)
		if !ok {
			return tag, nil
		}

		from := text.Len()
		text.WriteString(chunk)
		timed.Spans = append(timed.Spans, Span{Time: at, From: from, To: text.Len()})
	}

	timed.Text = text.String()
	return timed, nil
}

func parseTag(content string) (any, error) {
	if content == "" {
		return nil, ErrEmptyTag
	}

	if content[0] >= '0' && content[0] <= '9' {
		return parseTimestamp(content)
	}

	name, value, _ := strings.Cut(content, ":")
	if name != "offset" {
		return Tag{Key: name, Value: value}, nil
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad offset %q: %s", ErrInvalidTag, value, err)
	}
	return offsetTag(ms), nil
}

// parseTimestamp reads "mm:ss.cc" or "mm:ss:cc". Digits past the centiseconds are ignored.
func parseTimestamp(s string) (time.Duration, error) {
	if len(s) < 8 {
		return 0, fmt.Errorf("%w: timestamp %q too short", ErrInvalidTag, s)
	}

	if s[2] != ':' {
		return 0, fmt.Errorf("%w: bad seconds divider in %q", ErrInvalidTag, s)
	}

	if s[5] != '.' && s[5] != ':' {
		return 0, fmt.Errorf("%w: bad centiseconds divider in %q", ErrInvalidTag, s)
	}

	field := func(name, digits string) (time.Duration, error) {
		n, err := strconv.ParseUint(digits, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: bad %s %q", ErrInvalidTag, name, digits)
		}
		return time.Duration(n), nil
	}

	minutes, err := field("minutes", s[0:2])
	if err != nil {
		return 0, err
	}

	seconds, err := field("seconds", s[3:5])
	if err != nil {
		return 0, err
	}

	centis, err := field("centiseconds", s[6:8])
	if err != nil {
		return 0, err
	}

	return minutes*time.Minute + seconds*time.Second + centis*10*time.Millisecond, nil
}
