package cmd

import (
	"github.com/apex/log"
	"github.com/spf13/cobra"
)

func init() {
	addProverFlags(registerCmd)
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register <identity>",
	Short: "Register the commitments of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, c, err := newProver(cmd, args[0])
		if err != nil {
			return err
		}
		if err := p.Register(cmd.Context(), c); err != nil {
			return err
		}
		log.WithField("identity", p.Identity()).Info("Registered")
		return nil
	},
}
