package regstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regassoc/pkg/types"
)

// ============================================================================
// Helper Functions
// ============================================================================

func newTestStore(t *testing.T) (*Store, *Memory) {
	t.Helper()
	mem := NewMemory()
	st := New(mem)
	t.Cleanup(func() {
		assert.Zero(t, mem.OpenHandles(), "handles leaked")
	})
	return st, mem
}

func kp(t *testing.T, s string) types.KeyPath {
	t.Helper()
	p, err := types.ParseKeyPath(s)
	require.NoError(t, err)
	return p
}

func mustCreate(t *testing.T, st *Store, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, st.CreateKey(kp(t, p)))
	}
}

// ============================================================================
// Properties
// ============================================================================

func TestStore_WriteReadRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)
	mustCreate(t, st, "Classes", `Classes\.plt`)
	key := kp(t, `Classes\.plt`)

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "default value", value: "Prog_PLT_File", want: "Prog_PLT_File"},
		{name: "command line", value: `C:\app.exe "%1"`, want: `C:\app.exe "%1"`},
		{name: "empty", value: "", want: ""},
		{name: "trimmed", value: "  padded\x00", want: "padded"},
		{name: "non-ascii", value: "Grüße", want: "Grüße"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"", "Named"} {
				require.NoError(t, st.WriteValue(key, name, tt.value))
				got, ok, err := st.ReadValue(key, name)
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStore_CreateKeyIdempotent(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes", `Classes\.plt`)
	require.NoError(t, st.WriteValue(kp(t, `Classes\.plt`), "", "x"))
	before := mem.Snapshot()

	require.NoError(t, st.CreateKey(kp(t, `Classes\.plt`)))
	require.NoError(t, st.CreateKey(kp(t, `CLASSES\.PLT`)))
	assert.Equal(t, before, mem.Snapshot())
}

func TestStore_CreateKeyRequiresParent(t *testing.T) {
	st, mem := newTestStore(t)
	err := st.CreateKey(kp(t, `Classes\.plt`))
	require.Error(t, err)
	k, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindStore, k)
	assert.Equal(t, types.CodeFileNotFound, types.CodeOf(err))
	assert.Empty(t, mem.Snapshot())
}

func TestStore_DeleteKeyGuard(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes", `Classes\.plt`, `Classes\.plt\Backup_by_Prog`)
	before := mem.Snapshot()

	err := st.DeleteKey(kp(t, `Classes\.plt`))
	require.Error(t, err)
	assert.True(t, types.IsInvalidState(err), "got %v", err)
	assert.ErrorIs(t, err, types.ErrKeyHasSubkeys)
	assert.Equal(t, before, mem.Snapshot())

	require.NoError(t, st.DeleteKey(kp(t, `Classes\.plt\Backup_by_Prog`)))
	require.NoError(t, st.DeleteKey(kp(t, `Classes\.plt`)))

	err = st.DeleteKey(kp(t, `Classes\.plt`))
	assert.True(t, types.IsNotFound(err), "got %v", err)
}

func TestStore_Absence(t *testing.T) {
	st, _ := newTestStore(t)
	mustCreate(t, st, "Classes")

	v, ok, err := st.ReadValue(kp(t, `Classes\.missing`), "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	_, ok, err = st.ReadValue(kp(t, "Classes"), "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	err = st.DeleteValue(kp(t, "Classes"), "nope")
	assert.True(t, types.IsNotFound(err))
	err = st.DeleteValue(kp(t, `Classes\.missing`), "")
	assert.True(t, types.IsNotFound(err))

	err = st.WriteValue(kp(t, `Classes\.missing`), "", "x")
	assert.True(t, types.IsNotFound(err), "write requires an existing key")

	exists, err := st.KeyExists(kp(t, `Classes\.missing`))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_ListSubkeyNames(t *testing.T) {
	st, _ := newTestStore(t)
	mustCreate(t, st, "Classes", `Classes\b`, `Classes\a`, `Classes\c`)

	names, err := st.ListSubkeyNames(kp(t, "Classes"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names)

	names, err = st.ListSubkeyNames(kp(t, `Classes\a`))
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)

	_, err = st.ListSubkeyNames(kp(t, `Classes\zz`))
	assert.True(t, types.IsNotFound(err))
}

func TestStore_DeleteValue(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes")
	key := kp(t, "Classes")
	require.NoError(t, st.WriteValue(key, "a", "1"))
	require.NoError(t, st.WriteValue(key, "b", "2"))

	require.NoError(t, st.DeleteValue(key, "A"))
	assert.Equal(t, map[string]string{"b": "2"}, mem.Snapshot()["Classes"])

	names, err := st.ListValueNames(key)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestStore_RejectsInvalidPaths(t *testing.T) {
	st, _ := newTestStore(t)
	var zero types.KeyPath

	assert.True(t, types.IsInvalidArgument(st.CreateKey(zero)))
	assert.True(t, types.IsInvalidArgument(st.CreateKey(types.NewKeyPath(`Classes\`))))
	_, _, err := st.ReadValue(zero, "")
	assert.True(t, types.IsInvalidArgument(err))
	_, err = st.OpenKey(zero, types.AccessRead)
	assert.True(t, types.IsInvalidArgument(err))
}

func TestStore_ReleasesHandleOnFailure(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes")
	mem.FailOn(OpWrite, "Classes", 1359)
	mem.FailOn(OpList, "Classes", 1359)

	err := st.WriteValue(kp(t, "Classes"), "", "x")
	require.Error(t, err)
	assert.Equal(t, uint32(1359), types.CodeOf(err))

	err = st.DeleteKey(kp(t, "Classes"))
	require.Error(t, err)
	assert.Zero(t, mem.OpenHandles())
}

func TestStore_ScopedOpenClose(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes")

	h, err := st.OpenKey(kp(t, "Classes"), types.AccessRead)
	require.NoError(t, err)
	assert.Equal(t, 1, mem.OpenHandles())

	err = h.WriteString("", "x")
	assert.True(t, types.IsAccessDenied(err), "read handle must not write")

	require.NoError(t, st.CloseKey(h))
	assert.Zero(t, mem.OpenHandles())
	assert.True(t, types.IsInvalidState(st.CloseKey(h)), "second close is rejected")
	assert.Zero(t, mem.OpenHandles())
}
