package constant

// Exported D-Bus surface of the daemon.
const (
	DBusName = "com.github.lrcshow_cli.lrcshow"

	DBusLyricsPath  = "/com/github/lrcshow_cli/lrcshow/Lyrics"
	DBusLyricsIface = DBusName + ".Lyrics"

	DBusDaemonPath  = "/com/github/lrcshow_cli/lrcshow/Daemon"
	DBusDaemonIface = DBusName + ".Daemon"
)

// Exported method and signal names.
const (
	GetCurrentLyrics           = "GetCurrentLyrics"
	GetCurrentLyricsPosition   = "GetCurrentLyricsPosition"
	ActiveLyricsSegmentChanged = "ActiveLyricsSegmentChanged"
	ActiveLyricsChanged        = "ActiveLyricsChanged"
)
