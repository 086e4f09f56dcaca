package assoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regassoc/pkg/regstore"
	"github.com/joshuapare/regassoc/pkg/types"
)

const fileExts = FileExtsKey + `\.plt`

func TestUnassociate_ForgetsOpenWithHistory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.Associate("plt", exePath))
	f.seed(t, fileExts+`\OpenWithProgids`, map[string]string{progID: "", "txtfile": ""})
	f.seed(t, fileExts+`\OpenWithList`, map[string]string{"a": progID, "b": "notepad.exe", "MRUList": "ab"})
	f.seed(t, fileExts+`\UserChoice`, map[string]string{"ProgId": progID, "Hash": "abc="})

	require.NoError(t, f.m.Unassociate("plt"))

	snap := f.mem.Snapshot()
	assert.Equal(t, map[string]string{"txtfile": ""}, snap[fileExts+`\OpenWithProgids`])
	assert.Equal(t, map[string]string{"b": "notepad.exe", "MRUList": "b"}, snap[fileExts+`\OpenWithList`])
	assert.NotContains(t, snap, fileExts+`\UserChoice`)
}

func TestUnassociate_ForgetsExecutableInOpenWithList(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.Associate("plt", exePath))
	f.seed(t, fileExts+`\OpenWithList`, map[string]string{"a": "notepad.exe", "b": "PLOTTER.EXE", "c": "wordpad.exe", "MRUList": "bca"})

	require.NoError(t, f.m.Unassociate("plt"))

	assert.Equal(t, map[string]string{"a": "notepad.exe", "c": "wordpad.exe", "MRUList": "ca"}, f.mem.Snapshot()[fileExts+`\OpenWithList`])
}

func TestUnassociate_OpenWithLeavesOtherHandlers(t *testing.T) {
	f := newFixture(t)
	f.seed(t, fileExts+`\UserChoice`, map[string]string{"ProgId": "txtfile", "Hash": "abc="})
	f.seed(t, fileExts+`\OpenWithList`, map[string]string{"a": "notepad.exe", "MRUList": "a"})
	before := f.mem.Snapshot()

	require.NoError(t, f.m.Unassociate("plt"))
	assert.Equal(t, before, f.mem.Snapshot())
}

func TestUnassociate_OpenWithFailuresAreSwallowed(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.Associate("plt", exePath))
	f.seed(t, fileExts+`\UserChoice`, map[string]string{"ProgId": progID})
	f.seed(t, fileExts+`\OpenWithProgids`, map[string]string{progID: ""})
	f.seed(t, fileExts+`\OpenWithList`, map[string]string{"a": progID, "MRUList": "a"})
	f.mem.FailOn(regstore.OpDeleteValue, fileExts+`\UserChoice`, types.CodeAccessDenied)
	f.mem.FailOn(regstore.OpList, fileExts+`\OpenWithList`, 1359)

	require.NoError(t, f.m.Unassociate("plt"))

	assert.Contains(t, f.log.String(), "open-with history cleanup failed")
	v, ok := f.value(t, fileExts+`\UserChoice`, "ProgId")
	assert.True(t, ok, "protected value survives")
	assert.Equal(t, progID, v)
	assert.NotContains(t, f.mem.Snapshot()[fileExts+`\OpenWithProgids`], progID, "cleanup continued past failures")
	assert.Equal(t, Unassociated, f.status(t, "plt"))
}
