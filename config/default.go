package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/lrcshow-cli/lrcshow/color"
	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/lrcshow-cli/lrcshow/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a registered configuration key with its default value.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Section is the first segment of the key, e.g. "lyrics" for lyrics.directories.
func (f *Field) Section() string {
	section, _, _ := strings.Cut(f.Key, ".")
	return section
}

// Env returns the environment variable overriding the field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Lrcshow + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Type names the Go type of the default value.
func (f *Field) Type() string {
	return fmt.Sprintf("%T", f.Value)
}

// Pretty renders the field for config info.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Env         string `json:"env"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Env:         f.Env(),
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.Type(),
	})
}

// Default holds every registered field by key.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(k string, v any, description string) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}

	Default[k] = Field{Key: k, Value: v, Description: description}
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.PlayerName, "", "MPRIS player to follow, e.g. mpv, vlc or spotify.\nWill prompt if not set.\nType \"lrcshow players\" to list running players")
	register(key.LyricsPath, "", "Lyrics file to use for every track.\nBy default the .lrc file next to the audio file is used")
	register(key.LyricsDirectories, []string{}, "Additional directories searched for <track>.lrc")
	register(key.LyricsResolverScript, "", "Lua script defining ResolveLyrics(track).\nType \"lrcshow resolver gen\" to scaffold one")
	register(key.DaemonTickMs, 16, "Synchronization tick period in milliseconds. From 1 to 1000")
	register(key.MprisStartedRetries, 5, "Attempts to query a freshly started player before giving up")
	register(key.MprisQueryTimeoutMs, 1000, "Timeout of player state and position queries in milliseconds")
	register(key.ServerDBus, true, "Expose current lyrics and position on the session bus")
	register(key.ServerHTTPEnabled, false, "Serve current lyrics and position over HTTP with server-sent events")
	register(key.ServerHTTPAddress, "127.0.0.1:7717", "HTTP listen address")
	register(key.ServerHTTPCorsOrigins, []string{"*"}, "Origins allowed to query the HTTP endpoint")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

func highlight(v any) string {
	switch value := v.(type) {
	case bool:
		if value {
			return style.Fg(color.Green)(strconv.FormatBool(value))
		}
		return style.Fg(color.Red)(strconv.FormatBool(value))
	case string:
		if value == "" {
			return style.Faint(`""`)
		}
		return style.Fg(color.Yellow)(value)
	case []string:
		return "[" + strings.Join(lo.Map(value, func(s string, _ int) string {
			return style.Fg(color.Yellow)(s)
		}), ", ") + "]"
	default:
		return fmt.Sprint(value)
	}
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"value":  viper.Get,
	"hl":     highlight,
}).Parse(`{{ purple .Key }} {{ faint .Type }}
{{ faint .Description }}
{{ blue "env" }}      {{ .Env }}
{{ blue "value" }}    {{ hl (value .Key) }}
{{ blue "default" }}  {{ hl .Value }}`))
