// Package cmd implements the command-line interface for reelgate.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/reelgate/reelgate/color"
	"github.com/reelgate/reelgate/constant"
	"github.com/reelgate/reelgate/icon"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/style"
	"github.com/reelgate/reelgate/util"
	"github.com/reelgate/reelgate/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Record watched videos in the local watch log")
	lo.Must0(viper.BindPFlag(key.HistorySave, rootCmd.PersistentFlags().Lookup("write-history")))

	rootCmd.PersistentFlags().StringP("engine", "e", "", "Media engine to play with (mpv, sim)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("engine", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"mpv", "sim"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerEngine, rootCmd.PersistentFlags().Lookup("engine")))

	rootCmd.PersistentFlags().BoolP("muted", "m", false, "Start every video muted")
	lo.Must0(viper.BindPFlag(key.PlayerMuted, rootCmd.PersistentFlags().Lookup("muted")))

	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd opens the feed.
var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Scroll a video feed with free previews and paywalls from the terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Scroll a video feed with free previews and paywalls from the terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		watch()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
