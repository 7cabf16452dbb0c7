package credentials

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
)

func execute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	secret, jsonOutput = "", false

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestDerive_FromFlag(t *testing.T) {
	want, err := auth.DeriveCredentials("abc-123-secret")
	require.NoError(t, err)

	out := execute(t, "", "derive", "--secret", "abc-123-secret")
	assert.Contains(t, out, want.Token)
	assert.Contains(t, out, want.SecretMaterial)
}

func TestDerive_FromStdinAsJSON(t *testing.T) {
	want, err := auth.DeriveCredentials("abc-123-secret")
	require.NoError(t, err)

	out := execute(t, "  abc-123-secret \n", "derive", "--json")

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want.Token, got["store_token"])
	assert.Equal(t, want.SecretMaterial, got["secret_material"])
}

func TestDerive_EmptySecret(t *testing.T) {
	secret, jsonOutput = "", false
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{"derive"})
	assert.ErrorIs(t, cmd.Execute(), auth.ErrEmptyLicenseSecret)
}
