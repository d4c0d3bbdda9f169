package mpris

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

var (
	ErrNegativePosition = errors.New("negative position")
	ErrMissingProperty  = errors.New("missing property")
	ErrUnexpectedType   = errors.New("unexpected type")
)

func unwrap(v any) any {
	if variant, ok := v.(dbus.Variant); ok {
		return variant.Value()
	}
	return v
}

// ParsePosition reads a position given in microseconds.
func ParsePosition(v any) (time.Duration, error) {
	us, ok := unwrap(v).(int64)
	if !ok {
		return 0, fmt.Errorf("%w: position should be int64, got %T", ErrUnexpectedType, unwrap(v))
	}

	if us < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativePosition, us)
	}

	return time.Duration(us) * time.Microsecond, nil
}

// ParsePlaybackStatus reads the PlaybackStatus property.
func ParsePlaybackStatus(v any) (player.PlaybackStatus, error) {
	s, ok := unwrap(v).(string)
	if !ok {
		return "", fmt.Errorf("%w: playback status should be a string, got %T", ErrUnexpectedType, unwrap(v))
	}
	return player.ParsePlaybackStatus(s)
}

// ParseMetadata reads the Metadata property.
// Players send metadata without xesam:url when a playlist ends, which yields None.
func ParseMetadata(v any) (mo.Option[player.Metadata], error) {
	fields, ok := unwrap(v).(map[string]dbus.Variant)
	if !ok {
		return mo.None[player.Metadata](), fmt.Errorf("%w: metadata should be a{sv}, got %T", ErrUnexpectedType, unwrap(v))
	}

	raw, ok := fields[MetaURL]
	if !ok {
		return mo.None[player.Metadata](), nil
	}

	location, ok := raw.Value().(string)
	if !ok {
		return mo.None[player.Metadata](), fmt.Errorf("%w: %s should be a string, got %T", ErrUnexpectedType, MetaURL, raw.Value())
	}

	meta := player.Metadata{
		Path:    filePath(location),
		Title:   stringField(fields, MetaTitle),
		Album:   stringField(fields, MetaAlbum),
		Artists: stringsField(fields, MetaArtist),
		Length:  lengthField(fields, MetaLength),
	}

	return mo.Some(meta), nil
}

// filePath turns a xesam:url into a local path. Values that do not parse as a URL
// are taken as paths already; remote URLs have no local path.
func filePath(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" {
		return location
	}

	if u.Scheme != "file" {
		return ""
	}

	return u.Path
}

func stringField(fields map[string]dbus.Variant, key string) string {
	s, _ := fields[key].Value().(string)
	return s
}

func stringsField(fields map[string]dbus.Variant, key string) []string {
	switch v := fields[key].Value().(type) {
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

func lengthField(fields map[string]dbus.Variant, key string) time.Duration {
	var us int64
	switch v := fields[key].Value().(type) {
	case int64:
		us = v
	case uint64:
		us = int64(v)
	case int32:
		us = int64(v)
	case uint32:
		us = int64(v)
	case float64:
		us = int64(v)
	}
	return time.Duration(us) * time.Microsecond
}

// ParseState reads the full property set returned by Properties.GetAll.
func ParseState(props map[string]dbus.Variant, now time.Time) (player.State, error) {
	get := func(name string) (dbus.Variant, error) {
		v, ok := props[name]
		if !ok {
			return dbus.Variant{}, fmt.Errorf("%w: %s", ErrMissingProperty, name)
		}
		return v, nil
	}

	rawStatus, err := get(PropPlaybackStatus)
	if err != nil {
		return player.State{}, err
	}

	status, err := ParsePlaybackStatus(rawStatus)
	if err != nil {
		return player.State{}, err
	}

	rawPosition, err := get(PropPosition)
	if err != nil {
		return player.State{}, err
	}

	position, err := ParsePosition(rawPosition)
	if err != nil {
		return player.State{}, err
	}

	state := player.State{
		Status:   status,
		Snapshot: player.PositionSnapshot{Position: position, CapturedAt: now},
		Metadata: mo.None[player.Metadata](),
	}

	if status == player.Stopped {
		return state, nil
	}

	rawMetadata, err := get(PropMetadata)
	if err != nil {
		return player.State{}, err
	}

	state.Metadata, err = ParseMetadata(rawMetadata)
	if err != nil {
		return player.State{}, err
	}

	return state, nil
}

// ChangedEvents converts the changed properties of a PropertiesChanged signal.
// A Paused status comes without its position; the caller has to query it.
func ChangedEvents(changed map[string]dbus.Variant) ([]player.Event, error) {
	keys := lo.Keys(changed)
	sort.Strings(keys)

	var events []player.Event
	for _, name := range keys {
		value := changed[name]

		switch name {
		case PropPlaybackStatus:
			status, err := ParsePlaybackStatus(value)
			if err != nil {
				return nil, err
			}
			events = append(events, player.StatusChanged{Status: status})
		case PropMetadata:
			meta, err := ParseMetadata(value)
			if err != nil {
				return nil, err
			}
			events = append(events, player.MetadataChanged{Metadata: meta})
		case PropPosition:
			position, err := ParsePosition(value)
			if err != nil {
				return nil, err
			}
			events = append(events, player.Seeked{Position: position})
		case PropVolume:
		default:
			events = append(events, player.UnknownProperty{Key: name, Value: value.String()})
		}
	}

	return events, nil
}
