//go:build !windows

package regstore

import "github.com/joshuapare/regassoc/pkg/types"

// OpenNative binds to the live per-user registry. It is only available on
// Windows; elsewhere use OpenRegFile or NewMemory.
func OpenNative() (Backend, error) {
	return nil, &types.Error{Kind: types.ErrKindStore, Op: string(OpOpen), Msg: "native registry requires windows"}
}
