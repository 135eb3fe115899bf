// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Backend API - these keys locate and authenticate the feed backend.
const (
	APIBaseURL  = "api.base_url"
	APIToken    = "api.token"
	APIUserID   = "api.user_id"
	APIPageSize = "api.page_size"
	APITimeout  = "api.timeout"
)

// Media Engine - these keys select and configure the playback engine.
const (
	PlayerEngine = "player.engine"
	PlayerMuted  = "player.muted"
)

// Playback Timing - durations are in milliseconds, tolerances in seconds.
const (
	PlaybackFrameInterval    = "playback.frame_interval"
	PlaybackPollInterval     = "playback.poll_interval"
	PlaybackSeekGrace        = "playback.seek_grace"
	PlaybackSeekTolerance    = "playback.seek_tolerance"
	PlaybackPaywallEpsilon   = "playback.paywall_epsilon"
	PlaybackRewindReset      = "playback.rewind_reset"
	PlaybackWatchedThreshold = "playback.watched_threshold"
)

// Feed Scheduling - these keys tune visibility-driven activation and prefetching.
const (
	FeedVisibilityThreshold = "feed.visibility_threshold"
	FeedMinViewTime         = "feed.min_view_time"
	FeedPrefetchOffset      = "feed.prefetch_offset"
)

// Speed Gestures
const (
	GestureMinVelocity = "gesture.min_velocity"
	GestureMinDistance = "gesture.min_distance"
	GestureCooldown    = "gesture.cooldown"
)

// History Tracking - these keys configure the local watch log.
const (
	HistorySave = "history.save"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment
const (
	CliColored = "cli.colored"
)
