// Package mpris follows a media player over the MPRIS D-Bus interface and
// turns its signals into player events.
package mpris

import "strings"

const (
	BusPrefix   = "org.mpris.MediaPlayer2."
	ObjectPath  = "/org/mpris/MediaPlayer2"
	PlayerIface = "org.mpris.MediaPlayer2.Player"

	propertiesIface = "org.freedesktop.DBus.Properties"
	dbusIface       = "org.freedesktop.DBus"

	signalPropertiesChanged = propertiesIface + ".PropertiesChanged"
	signalSeeked            = PlayerIface + ".Seeked"
	signalNameOwnerChanged  = dbusIface + ".NameOwnerChanged"
)

// Player properties.
const (
	PropPlaybackStatus = "PlaybackStatus"
	PropPosition       = "Position"
	PropMetadata       = "Metadata"
	PropVolume         = "Volume"
)

// Metadata keys.
const (
	MetaURL    = "xesam:url"
	MetaTitle  = "xesam:title"
	MetaAlbum  = "xesam:album"
	MetaArtist = "xesam:artist"
	MetaLength = "mpris:length"
)

// BusName returns the well-known bus name of a player, e.g. "mpv" becomes
// "org.mpris.MediaPlayer2.mpv".
func BusName(player string) string {
	return BusPrefix + player
}

// PlayerName strips the MPRIS prefix from a bus name.
func PlayerName(busName string) (string, bool) {
	name, ok := strings.CutPrefix(busName, BusPrefix)
	return name, ok && name != ""
}
