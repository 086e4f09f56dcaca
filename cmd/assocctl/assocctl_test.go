package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otherOwner = `[HKEY_CURRENT_USER\Software\Classes]

[HKEY_CURRENT_USER\Software\Classes\.plt]
@="OtherApp.Document"
`

func TestAssociateUnassociateRoundTrip(t *testing.T) {
	env := newCLIEnv(t, "")
	env.seed(t, otherOwner)

	out, err := runCLI(t, "--config", env.config, "associate", ".plt", env.exe)
	require.NoError(t, err)
	assert.Contains(t, out, "Associated .plt with Plotter (Plotter_PLT_File)")

	text := env.regText(t)
	assert.Contains(t, text, `[HKEY_CURRENT_USER\Software\Classes\.plt\Backup_by_Plotter]`)
	assert.Contains(t, text, `@="Plotter_PLT_File"`)
	assert.Contains(t, text, `[HKEY_CURRENT_USER\Software\Classes\Plotter_PLT_File\shell\open\command]`)

	out, err = runCLI(t, "--config", env.config, "status", "plt", env.exe, "--json")
	require.NoError(t, err)
	var st statusResult
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "associated-with-backup", st.State)
	require.NotNil(t, st.Associated)
	assert.True(t, *st.Associated)
	require.NotNil(t, st.Record)
	assert.Equal(t, "OtherApp.Document", st.Record.Backup)

	out, err = runCLI(t, "--config", env.config, "unassociate", "plt")
	require.NoError(t, err)
	assert.Contains(t, out, "Unassociated .plt")
	assert.Contains(t, out, "Restored previous owner: OtherApp.Document")

	text = env.regText(t)
	assert.NotContains(t, text, "Plotter_PLT_File")
	assert.NotContains(t, text, "Backup_by_Plotter")
	assert.Contains(t, text, `@="OtherApp.Document"`)

	out, err = runCLI(t, "--config", env.config, "status", "plt")
	require.NoError(t, err)
	assert.Contains(t, out, ".plt: associated-by-other")
}

func TestUnassociate_ReportsRestoreWithoutProgID(t *testing.T) {
	env := newCLIEnv(t, "")
	env.seed(t, `[HKEY_CURRENT_USER\Software\Classes]

[HKEY_CURRENT_USER\Software\Classes\.plt]

[HKEY_CURRENT_USER\Software\Classes\.plt\Backup_by_Plotter]
@="OtherApp.Document"
`)

	out, err := runCLI(t, "--config", env.config, "unassociate", "plt")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored previous owner: OtherApp.Document")
	assert.NotContains(t, env.regText(t), "Backup_by_Plotter")
}

func TestAssociate_InvalidArgumentsLeaveFileUntouched(t *testing.T) {
	env := newCLIEnv(t, "")

	_, err := runCLI(t, "--config", env.config, "associate", "tar.gz", env.exe)
	require.Error(t, err)

	_, err = runCLI(t, "--config", env.config, "associate", "plt", env.exe+".missing")
	require.Error(t, err)

	_, statErr := os.Stat(env.regFile)
	assert.True(t, os.IsNotExist(statErr), "reg file must not be created")
}

func TestProgramRequired(t *testing.T) {
	env := newCLIEnv(t, "")
	require.NoError(t, os.WriteFile(env.config, []byte("[store]\nbackend = \"memory\"\n"), 0o644))

	_, err := runCLI(t, "--config", env.config, "status", "plt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program is not set")

	out, err := runCLI(t, "--config", env.config, "--program", "Plotter", "status", "plt")
	require.NoError(t, err)
	assert.Contains(t, out, ".plt: unassociated")
}

func TestFlagsOverrideConfig(t *testing.T) {
	env := newCLIEnv(t, "")

	out, err := runCLI(t, "--config", env.config, "--store", "memory", "--program", "Charts", "associate", "plt", env.exe)
	require.NoError(t, err)
	assert.Contains(t, out, "(Charts_PLT_File)")

	_, statErr := os.Stat(env.regFile)
	assert.True(t, os.IsNotExist(statErr), "memory backend must not touch the reg file")
}

func TestApply(t *testing.T) {
	env := newCLIEnv(t, "executable = '{exe}'\nextensions = [\"plt\", \"dat\"]")

	out, err := runCLI(t, "--config", env.config, "apply")
	require.NoError(t, err)
	assert.Contains(t, out, "associate .plt: ok")
	assert.Contains(t, out, "associate .dat: ok")

	text := env.regText(t)
	assert.Contains(t, text, "Plotter_PLT_File")
	assert.Contains(t, text, "Plotter_DAT_File")

	out, err = runCLI(t, "--config", env.config, "apply", "--remove", "--json")
	require.NoError(t, err)
	var results []applyResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "unassociate", r.Action)
		assert.Empty(t, r.Error)
	}

	text = env.regText(t)
	assert.NotContains(t, text, "Plotter_PLT_File")
	assert.NotContains(t, text, "Plotter_DAT_File")
}

func TestApply_NoExtensions(t *testing.T) {
	env := newCLIEnv(t, "")
	_, err := runCLI(t, "--config", env.config, "apply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extensions configured")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "assocctl dev")
}
