package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/reelgate/reelgate/auth"
	"github.com/reelgate/reelgate/icon"
	"github.com/reelgate/reelgate/key"
	"github.com/reelgate/reelgate/log"
	"github.com/reelgate/reelgate/open"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().Bool("logout", false, "Forget the stored token")
	loginCmd.Flags().BoolP("browser", "b", false, "Open the token page in the browser first")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token in the system keyring",
	Long: `Store the feed backend token in the system keyring.
The token is used whenever api.token is not set.`,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("logout")) {
			handleErr(auth.DeleteToken())
			fmt.Printf("%s Logged out\n", icon.Get(icon.Success))
			return
		}

		if lo.Must(cmd.Flags().GetBool("browser")) {
			page := strings.TrimRight(viper.GetString(key.APIBaseURL), "/") + "/tokens"
			if err := open.Start(page); err != nil {
				log.Warnf("open %s: %v", page, err)
				fmt.Printf("Open %s to create a token\n", page)
			}
		}

		if viper.GetString(key.APIUserID) == "" {
			var userID string
			handleErr(survey.AskOne(&survey.Input{
				Message: "User id (optional):",
				Help:    "Lets the player recognise videos you uploaded",
			}, &userID))

			if userID = strings.TrimSpace(userID); userID != "" {
				viper.Set(key.APIUserID, userID)
				writeConfig()
			}
		}

		var token string
		handleErr(survey.AskOne(&survey.Password{
			Message: "API token:",
		}, &token, survey.WithValidator(survey.Required)))

		token = strings.TrimSpace(token)
		if token == "" {
			handleErr(errors.New("token is empty"))
		}

		handleErr(auth.SetToken(token))
		fmt.Printf("%s Token saved to the keyring\n", icon.Get(icon.Success))
	},
}
