package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/invopop/jsonschema"
	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/backend"
	"github.com/reelgate/reelgate/filesystem"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/style"
	"github.com/reelgate/reelgate/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().IntP("page", "p", 1, "Page to fetch, starting at 1")
	feedCmd.Flags().IntP("limit", "l", 0, "Items per page, defaults to api.page_size")
	feedCmd.Flags().BoolP("json", "j", false, "Print the page as JSON")
	feedCmd.Flags().StringP("output", "o", "", "Write the output to a file instead of stdout")
	feedCmd.Flags().Bool("schema", false, "Print the JSON schema of a feed item and exit")

	feedCmd.SetOut(os.Stdout)
}

// feedSchema describes one feed item as printed by "feed --json".
func feedSchema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		return t.Name()
	}
	return reflector.Reflect([]backend.ContentSummary{})
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetch one feed page without playing it",
	Run: func(cmd *cobra.Command, args []string) {
		var out io.Writer = cmd.OutOrStdout()
		if path := lo.Must(cmd.Flags().GetString("output")); path != "" {
			file, err := filesystem.API().Create(path)
			handleErr(err)
			defer util.Ignore(file.Close)
			out = file
		}

		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(json.NewEncoder(out).Encode(feedSchema()))
			return
		}

		limit := lo.Must(cmd.Flags().GetInt("limit"))
		if limit <= 0 {
			limit = viper.GetInt(key.APIPageSize)
		}
		page := lo.Must(cmd.Flags().GetInt("page"))

		client, err := backend.NewFromConfig()
		handleErr(err)

		items, err := client.FetchPage(context.Background(), page, limit)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(items))
			return
		}

		handleErr(printFeed(out, items))
	},
}

func printFeed(out io.Writer, items []backend.ContentSummary) error {
	rows := lo.Map(items, func(item backend.ContentSummary, _ int) []string {
		window := item.FreeWindow()
		policy := access.Policy{Window: window, Duration: item.Duration}
		free := "all"
		switch {
		case policy.IsPremium():
			free = fmt.Sprintf("%s-%s", util.Timestamp(window.Start), util.Timestamp(window.End))
		case !policy.IsFree():
			free = "from " + util.Timestamp(window.Start)
		}

		return []string{
			item.ID,
			item.Title,
			util.Timestamp(item.Duration),
			lo.Ternary(item.Access.Type == "", "-", item.Access.Type),
			free,
		}
	})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(style.BorderColor)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ID", "TITLE", "DURATION", "ACCESS", "FREE").
		Rows(rows...)

	_, err := fmt.Fprintln(out, t.Render())
	return err
}
