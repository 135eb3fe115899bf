package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reelgate/reelgate/color"
	"github.com/reelgate/reelgate/history"
	"github.com/reelgate/reelgate/icon"
	"github.com/reelgate/reelgate/style"
	"github.com/reelgate/reelgate/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringP("query", "q", "", "Only show entries fuzzily matching the title or creator")
	historyCmd.Flags().BoolP("json", "j", false, "Print the entries as JSON")
	historyCmd.Flags().StringSliceP("remove", "r", []string{}, "Remove entries by content id")

	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local watch log",
	Run: func(cmd *cobra.Command, args []string) {
		if ids := lo.Must(cmd.Flags().GetStringSlice("remove")); len(ids) > 0 {
			for _, id := range ids {
				handleErr(history.Remove(id))
			}
			fmt.Printf("%s Removed %s\n", icon.Get(icon.Success), util.Quantify(len(ids), "entry", "entries"))
			return
		}

		entries, err := history.List()
		handleErr(err)
		entries = history.Filter(entries, lo.Must(cmd.Flags().GetString("query")))

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("Nothing watched yet"))
			return
		}

		for _, e := range entries {
			cmd.Printf("%s %s %s\n",
				style.Fg(color.Purple)(e.WatchedAt.Local().Format("2006-01-02 15:04")),
				e.String(),
				style.Faint(e.ContentID),
			)
		}
	},
}
