// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player Selection - these keys choose the MPRIS player the daemon follows.
const (
	PlayerName = "player.name"
)

// Lyrics Lookup - these keys control where lyrics files are found for the current track.
const (
	LyricsPath           = "lyrics.path"
	LyricsDirectories    = "lyrics.directories"
	LyricsResolverScript = "lyrics.resolver_script"
)

// Synchronization Loop - these keys tune the orchestration loop.
const (
	DaemonTickMs = "daemon.tick_ms"
)

// MPRIS Binding - these keys tune queries issued to the media player.
const (
	MprisStartedRetries = "mpris.started_retries"
	MprisQueryTimeoutMs = "mpris.query_timeout_ms"
)

// Outward Service - these keys configure how lyrics are exposed to other processes.
const (
	ServerDBus            = "server.dbus"
	ServerHTTPEnabled     = "server.http.enabled"
	ServerHTTPAddress     = "server.http.address"
	ServerHTTPCorsOrigins = "server.http.cors_origins"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the application behavior outside the daemon.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
