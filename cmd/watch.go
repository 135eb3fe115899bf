package cmd

import (
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Open the feed (default command)",
	Aliases: []string{"w"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		watch()
	},
}

// watch opens the feed viewer with the configured engine.
func watch() {
	engine := viper.GetString(key.PlayerEngine)
	if engine == "mpv" {
		CheckDependencies()
	}

	client, err := backend.NewFromConfig()
	handleErr(err)

	handleErr(tui.Run(&tui.Options{
		Client:   client,
		Engine:   engine,
		PageSize: viper.GetInt(key.APIPageSize),
		Muted:    viper.GetBool(key.PlayerMuted),
	}))
}
