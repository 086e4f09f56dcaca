package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyPath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{name: "single segment", in: "Classes", want: []string{"Classes"}},
		{name: "nested", in: `Classes\.plt\Backup_by_Prog`, want: []string{"Classes", ".plt", "Backup_by_Prog"}},
		{name: "empty", in: "", wantErr: true},
		{name: "trailing separator", in: `Classes\`, wantErr: true},
		{name: "leading separator", in: `\Classes`, wantErr: true},
		{name: "double separator", in: `Classes\\.plt`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseKeyPath(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsInvalidArgument(err), "want invalid argument, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Segments())
			assert.Equal(t, tt.in, p.String())
		})
	}
}

func TestKeyPath_ZeroValueInvalid(t *testing.T) {
	var p KeyPath
	assert.True(t, p.IsZero())
	assert.True(t, IsInvalidArgument(p.Validate()))
}

func TestKeyPath_ChildParentBase(t *testing.T) {
	root := NewKeyPath("Classes")
	cmd := root.Child("Prog_PLT_File", `shell\open\command`)

	require.NoError(t, cmd.Validate())
	assert.Equal(t, `Classes\Prog_PLT_File\shell\open\command`, cmd.String())
	assert.Equal(t, "command", cmd.Base())
	assert.Equal(t, 5, cmd.Len())

	parent, ok := cmd.Parent()
	require.True(t, ok)
	assert.Equal(t, `Classes\Prog_PLT_File\shell\open`, parent.String())

	_, ok = root.Parent()
	assert.False(t, ok, "single-segment path has no parent")

	// Child must not alias the receiver's backing array.
	a := parent.Child("a")
	b := parent.Child("b")
	assert.Equal(t, "a", a.Base())
	assert.Equal(t, "b", b.Base())
}

func TestKeyPath_EqualIsCaseInsensitive(t *testing.T) {
	a := NewKeyPath(`Classes\.PLT`)
	b := NewKeyPath(`classes\.plt`)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewKeyPath(`Classes`)))
	assert.True(t, a.HasPrefix(NewKeyPath("CLASSES")))
	assert.False(t, NewKeyPath("Classes").HasPrefix(a))
}
