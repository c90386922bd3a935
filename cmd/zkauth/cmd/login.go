package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

func init() {
	addProverFlags(loginCmd)
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <identity>",
	Short: "Prove knowledge of a password, and print the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, c, err := newProver(cmd, args[0])
		if err != nil {
			return err
		}
		token, err := p.Login(cmd.Context(), c)
		if err != nil {
			log.WithField("state", p.State()).Error("Login failed")
			return err
		}
		log.WithField("identity", p.Identity()).Debug("Logged in")
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
