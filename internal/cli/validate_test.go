package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Text(t *testing.T) {
	p := newProject(t)

	stdout, _, err := execute(t, testOptions(), "validate", p.csv)
	require.NoError(t, err)
	assert.Equal(t, "✓ 4 record(s) valid\n", stdout)
}

func TestValidate_JSON(t *testing.T) {
	p := newProject(t)

	stdout, _, err := execute(t, testOptions(), "validate", "--format", "json", p.csv)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ValidationResult{
		Valid:   true,
		Records: 4,
		Fields:  []string{"hostname", "ip", "mac", "vlan", "role"},
	}, resp.Data)
}

func TestValidate_IntegrityError(t *testing.T) {
	p := newProject(t)
	p.write(t, "hosts.csv", "hostname,ip\nns1,10.0.10.2\nweb1,10.0.10.300\n")

	stdout, _, err := execute(t, testOptions(), "validate", "--format", "json", p.csv)
	require.Error(t, err)
	assert.Equal(t, ExitIntegrity, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeIntegrity, resp.Error.Code)
	assert.Equal(t, map[string]any{"row": float64(3), "field": "ip"}, resp.Error.Details)
}

func TestValidate_CustomSchema(t *testing.T) {
	p := newProject(t)
	schema := p.write(t, "schema.cue", `
#Record: {
	hostname: string
	vlan?:    int & <15
	...
}
`)

	_, _, err := execute(t, testOptions(), "validate", "--schema", schema, p.csv)
	require.Error(t, err)
	assert.Equal(t, ExitIntegrity, GetExitCode(err), "vlan 20 is out of range for this schema")
}

func TestValidate_TextError(t *testing.T) {
	p := newProject(t)

	stdout, _, err := execute(t, testOptions(), "validate", p.dir+"/missing.csv")
	require.Error(t, err)
	assert.Equal(t, ExitCSVUnreadable, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E002]: could not read inventory")
}
