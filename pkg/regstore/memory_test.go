package regstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regassoc/pkg/types"
)

func TestMemory_PreservesCaseAndOrder(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes", `Classes\Zeta`, `Classes\alpha`)
	require.NoError(t, st.WriteValue(kp(t, `classes\ZETA`), "Name", "1"))
	require.NoError(t, st.WriteValue(kp(t, `Classes\Zeta`), "name", "2"))

	names, err := st.ListSubkeyNames(kp(t, "CLASSES"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta", "alpha"}, names)
	assert.Equal(t, map[string]string{"Name": "2"}, mem.Snapshot()[`Classes\Zeta`])
}

func TestMemory_RejectsLineBreakInValueName(t *testing.T) {
	mem := NewMemory()
	st := New(mem)
	mustCreate(t, st, "A")
	before := mem.Snapshot()

	for _, name := range []string{"bad\nname", "bad\rname"} {
		err := st.WriteValue(kp(t, "A"), name, "v")
		require.Error(t, err)
		assert.True(t, types.IsInvalidArgument(err), name)
	}
	assert.Equal(t, before, mem.Snapshot())
	assert.Zero(t, mem.OpenHandles())
}

func TestMemory_HandleToDeletedKey(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes")

	h, err := mem.OpenKey(kp(t, "Classes"), types.AccessReadWrite)
	require.NoError(t, err)
	defer func() { require.NoError(t, h.Close()) }()

	require.NoError(t, st.DeleteKey(kp(t, "Classes")))
	err = h.WriteString("", "x")
	require.Error(t, err)
	assert.Equal(t, types.CodeKeyDeleted, types.CodeOf(err))
}

func TestMemory_FaultInjection(t *testing.T) {
	st, mem := newTestStore(t)
	mem.FailOn(OpCreateKey, "classes", 5)

	err := st.CreateKey(kp(t, "Classes"))
	require.Error(t, err)
	assert.Equal(t, uint32(5), types.CodeOf(err))

	mem.ClearFaults()
	require.NoError(t, st.CreateKey(kp(t, "Classes")))
}

func TestMemory_ConcurrentCallers(t *testing.T) {
	st, mem := newTestStore(t)
	mustCreate(t, st, "Classes")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := kp(t, fmt.Sprintf(`Classes\k%02d`, i))
			assert.NoError(t, st.CreateKey(p))
			assert.NoError(t, st.WriteValue(p, "", fmt.Sprint(i)))
			_, _, err := st.ReadValue(p, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	names, err := st.ListSubkeyNames(kp(t, "Classes"))
	require.NoError(t, err)
	assert.Len(t, names, 16)
	assert.Zero(t, mem.OpenHandles())
}
