package lrc

import (
	"fmt"
	"sort"
	"time"
)

// TimingMark activates the byte range [From, To) of line Line at Time.
type TimingMark struct {
	Time time.Duration
	Line int
	From int
	To   int
}

func (m TimingMark) String() string {
	return fmt.Sprintf("%s line %d [%d, %d)", FormatDuration(m.Time), m.Line, m.From, m.To)
}

// Lyrics is the timing model of a lyrics file: its lines and the marks sorted by time.
// Marks always start with a zero-time mark on line 0 when there is any line,
// standing for the part of the song before the first timed line.
type Lyrics struct {
	Lines []string
	Marks []TimingMark
	Tags  []Tag
}

// NewLyrics builds the timing model of a parsed file.
func NewLyrics(file *File) *Lyrics {
	lyrics := &Lyrics{Tags: file.Tags}

	if len(file.Lines) > 0 {
		lyrics.Marks = append(lyrics.Marks, TimingMark{})
	}

	for i, line := range file.Lines {
		lyrics.Lines = append(lyrics.Lines, line.Text)
		for _, span := range line.Spans {
			lyrics.Marks = append(lyrics.Marks, TimingMark{
				Time: span.Time,
				Line: i,
				From: span.From,
				To:   span.To,
			})
		}
	}

	// Lines repeated through several time tags are not in chronological order.
	sort.SliceStable(lyrics.Marks, func(i, j int) bool {
		return lyrics.Marks[i].Time < lyrics.Marks[j].Time
	})

	return lyrics
}

// Load parses the file at path and builds its timing model.
func Load(path string) (*Lyrics, error) {
	file, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewLyrics(file), nil
}

// Tag returns the value of the first ID tag named key.
func (l *Lyrics) Tag(key string) (string, bool) {
	for _, tag := range l.Tags {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}
