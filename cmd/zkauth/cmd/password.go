package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/zkauth/pkg/client"
	"github.com/taurusgroup/zkauth/pkg/prover"
	"golang.org/x/term"
)

func addProverFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	cmd.Flags().Bool("raw", false, "use the password bytes as the secret, as early clients did")
}

// readPassword prompts on the terminal, or reads one line from stdin when asked to
// or when stdin is not a terminal.
func readPassword(cmd *cobra.Command) ([]byte, error) {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	fd := int(os.Stdin.Fd())
	if fromStdin || !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// newProver connects to the configured server and derives the secret of identity.
func newProver(cmd *cobra.Command, identity string) (*prover.Prover, *client.Client, error) {
	conf, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	c := client.New(conf.Server.URL)
	g, err := c.Parameters(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch parameters: %w", err)
	}
	if local, _ := conf.Parameters(); !local.Equal(g) {
		return nil, nil, errors.New("server parameters differ from the configured group")
	}

	password, err := readPassword(cmd)
	if err != nil {
		return nil, nil, err
	}
	if len(password) == 0 {
		return nil, nil, errors.New("empty password")
	}

	x := prover.SecretFromPassword(g, identity, password)
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		x = prover.SecretFromBytes(password)
	}
	return prover.New(g, identity, x), c, nil
}
