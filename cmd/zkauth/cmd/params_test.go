package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/zkauth/pkg/group"
)

func TestProveRandom(t *testing.T) {
	require.NoError(t, proveRandom(group.Toy()))
	require.NoError(t, proveRandom(group.Default()))
}

func TestReadPassword_Stdin(t *testing.T) {
	cmd := &cobra.Command{}
	addProverFlags(cmd)
	require.NoError(t, cmd.Flags().Set("password-stdin", "true"))
	cmd.SetIn(strings.NewReader("correct horse\r\nignored\n"))

	password, err := readPassword(cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte("correct horse"), password)

	cmd.SetIn(bytes.NewReader(nil))
	_, err = readPassword(cmd)
	assert.Error(t, err)
}
