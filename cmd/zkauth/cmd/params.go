package cmd

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/taurusgroup/zkauth/internal/hash"
	"github.com/taurusgroup/zkauth/pkg/group"
	"github.com/taurusgroup/zkauth/pkg/math/sample"
	zkcp "github.com/taurusgroup/zkauth/pkg/zk/cp"
)

func init() {
	paramsCmd.Flags().Bool("self-test", false, "prove and verify a random secret with the parameters")
}

// paramsCmd represents the params command
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print and validate the group parameters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := conf.Parameters()
		if err != nil {
			return err
		}
		if err := g.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "p = %x\n", g.P().Big())
		fmt.Fprintf(out, "q = %x\n", g.Q().Big())
		fmt.Fprintf(out, "α = %x\n", g.Alpha().Big())
		fmt.Fprintf(out, "β = %x\n", g.Beta().Big())

		if selfTest, _ := cmd.Flags().GetBool("self-test"); selfTest {
			if err := proveRandom(g); err != nil {
				return err
			}
			log.Info("Self-test passed")
		}
		return nil
	},
}

func proveRandom(g *group.Parameters) error {
	x := sample.ModN(rand.Reader, g.Q())
	y1, y2 := zkcp.PublicKey(g, x)
	proof, err := zkcp.NewProof(rand.Reader, hash.New("zkauth self-test"), g, x)
	if err != nil {
		return err
	}
	if !proof.Verify(hash.New("zkauth self-test"), g, y1, y2) {
		return errors.New("self-test: proof did not verify")
	}
	return nil
}
