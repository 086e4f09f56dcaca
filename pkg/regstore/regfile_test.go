package regstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regassoc/internal/regtext"
	"github.com/joshuapare/regassoc/pkg/types"
)

const storeFile = `Windows Registry Editor Version 5.00

[HKEY_CURRENT_USER\Software\Classes\.txt]
@="txtfile"
"PerceivedType"="text"

[HKEY_CURRENT_USER\Software\Classes\txtfile\shell\open\command]
@=hex(2):6e,00,6f,00,74,00,65,00,70,00,61,00,64,00,00,00
"EditFlags"=dword:00000001

[HKEY_LOCAL_MACHINE\Software\Other]
@="untouched"
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "user.reg")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRegFile_Load(t *testing.T) {
	rf, err := OpenRegFile(writeFile(t, storeFile), RegFileOptions{})
	require.NoError(t, err)
	st := New(rf)

	v, ok, err := st.ReadValue(kp(t, `Classes\.txt`), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "txtfile", v)

	// Intermediate keys omitted by the file exist after loading.
	names, err := st.ListSubkeyNames(kp(t, `Classes\txtfile`))
	require.NoError(t, err)
	assert.Equal(t, []string{"shell"}, names)

	v, ok, err = st.ReadValue(kp(t, `Classes\txtfile\shell\open\command`), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "notepad", v)

	_, ok, err = st.ReadValue(kp(t, `Classes\txtfile\shell\open\command`), "EditFlags")
	require.NoError(t, err)
	assert.False(t, ok, "dword is not a string value")
}

func TestRegFile_FlushRoundTrip(t *testing.T) {
	path := writeFile(t, storeFile)
	rf, err := OpenRegFile(path, RegFileOptions{})
	require.NoError(t, err)
	st := New(rf)

	mustCreate(t, st, `Classes\.plt`)
	require.NoError(t, st.WriteValue(kp(t, `Classes\.plt`), "", "Prog_PLT_File"))
	require.NoError(t, st.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, regtext.UTF16LEBOM, raw[:2], "regedit encoding by default")

	doc, err := regtext.Parse(raw)
	require.NoError(t, err)
	other, ok := doc.Lookup(`HKEY_LOCAL_MACHINE\Software\Other`)
	require.True(t, ok, "foreign sections survive")
	assert.Equal(t, "untouched", other.Values[0].Data)

	again, err := OpenRegFile(path, RegFileOptions{})
	require.NoError(t, err)
	assert.Equal(t, rf.Snapshot(), again.Snapshot())
	assert.Equal(t, "dword:00000001", again.Snapshot()[`Classes\txtfile\shell\open\command`]["EditFlags"])
}

func TestRegFile_CreateIfMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "new.reg")

	_, err := OpenRegFile(path, RegFileOptions{})
	require.Error(t, err)

	rf, err := OpenRegFile(path, RegFileOptions{CreateIfMissing: true, Encoding: regtext.EncodingANSI})
	require.NoError(t, err)
	st := New(rf)
	mustCreate(t, st, "Classes")
	require.NoError(t, st.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), regtext.RegFileHeaderANSI)
	assert.Contains(t, string(raw), `[HKEY_CURRENT_USER\Software\Classes]`)
}

func TestRegFile_CustomRoot(t *testing.T) {
	content := regtext.RegFileHeader + "\r\n\r\n[HKEY_USERS\\S-1-5-21\\Software\\Classes\\.x]\r\n@=\"y\"\r\n"
	rf, err := OpenRegFile(writeFile(t, content), RegFileOptions{Root: `HKEY_USERS\S-1-5-21\Software\`})
	require.NoError(t, err)

	v, ok, err := New(rf).ReadValue(kp(t, `Classes\.x`), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestRegFile_RejectsPatchDirectives(t *testing.T) {
	content := regtext.RegFileHeader + "\r\n\r\n[-HKEY_CURRENT_USER\\Software\\Classes\\.x]\r\n"
	_, err := OpenRegFile(writeFile(t, content), RegFileOptions{})
	require.Error(t, err)
	assert.True(t, types.IsInvalidArgument(err))
}

func TestRegFile_LineBreaksSurviveFlush(t *testing.T) {
	const multi = "line1\nline2\r\nline3"

	for _, enc := range []string{regtext.EncodingUTF16LE, regtext.EncodingUTF8, regtext.EncodingANSI} {
		t.Run(enc, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "user.reg")
			rf, err := OpenRegFile(path, RegFileOptions{Encoding: enc, CreateIfMissing: true})
			require.NoError(t, err)
			st := New(rf)

			mustCreate(t, st, "A")
			require.NoError(t, st.WriteValue(kp(t, "A"), "", multi))
			require.NoError(t, st.WriteValue(kp(t, "A"), "Plain", "one line"))
			require.NoError(t, st.Flush())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			doc, err := regtext.Parse(raw)
			require.NoError(t, err)
			sec, ok := doc.Lookup(DefaultRegFileRoot + `\A`)
			require.True(t, ok)
			require.Len(t, sec.Values, 2)
			assert.Equal(t, regtext.KindString, sec.Values[0].Kind)
			assert.Equal(t, multi, sec.Values[0].Data)

			again, err := OpenRegFile(path, RegFileOptions{Encoding: enc})
			require.NoError(t, err)
			got, ok, err := New(again).ReadValue(kp(t, "A"), "")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, multi, got)

			plain, _, err := New(again).ReadValue(kp(t, "A"), "Plain")
			require.NoError(t, err)
			assert.Equal(t, "one line", plain)
		})
	}
}
