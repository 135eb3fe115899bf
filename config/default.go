package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/reelgate/reelgate/color"
	"github.com/reelgate/reelgate/constant"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.APIBaseURL, "http://localhost:8080/api", "Base URL of the feed backend")
	register(key.APIToken, "", "Bearer token for the feed backend.\nFalls back to the system keyring (see \"reelgate login\")")
	register(key.APIUserID, "", "Id of the signed-in viewer, used to recognise owned content")
	register(key.APIPageSize, 6, "Number of feed items requested per page")
	register(key.APITimeout, 15000, "Backend request timeout in milliseconds")
	register(key.PlayerEngine, "mpv", "Media engine to use.\nAvailable options are: mpv, sim")
	register(key.PlayerMuted, false, "Start the active player muted")
	register(key.PlaybackFrameInterval, 50, "Sampling interval in milliseconds for engines with frame updates")
	register(key.PlaybackPollInterval, 100, "Sampling interval in milliseconds for polled engines")
	register(key.PlaybackSeekGrace, 300, "Milliseconds to wait before verifying a seek")
	register(key.PlaybackSeekTolerance, 1.0, "Seconds a verified seek may differ from its target before one retry")
	register(key.PlaybackPaywallEpsilon, 0.1, "Seconds before the free window end at which the paywall fires")
	register(key.PlaybackRewindReset, 0.5, "Seconds past the free window start that re-arm a dismissed paywall")
	register(key.PlaybackWatchedThreshold, 2.0, "Watched percentage that records a view and a history entry")
	register(key.FeedVisibilityThreshold, 95, "Visible percentage an item needs to become active. From 0 to 100")
	register(key.FeedMinViewTime, 200, "Milliseconds an item must stay visible before it becomes active")
	register(key.FeedPrefetchOffset, 2, "Load the next page when this many items remain after the active one")
	register(key.GestureMinVelocity, 400.0, "Minimum horizontal swipe velocity that changes the speed")
	register(key.GestureMinDistance, 40.0, "Minimum horizontal swipe distance that changes the speed")
	register(key.GestureCooldown, 300, "Milliseconds between two accepted speed swipes")
	register(key.HistorySave, true, "Keep a local watch log")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
