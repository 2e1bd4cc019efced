package ramfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/container"
	gfs "github.com/gpcc-project/gpcc/internal/fs"
	"github.com/gpcc-project/gpcc/resource/ramfile"
)

func Test_Store_SaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "od.snapshot")

	store := ramfile.NewStore(gfs.NewReal(), path)

	block := container.NewRAMBlock(4)
	require.NoError(t, block.Write(0, 4, []byte{1, 2, 3, 4}))
	require.True(t, block.IsDirty())

	require.NoError(t, store.Save(block))
	require.False(t, block.IsDirty(), "Save clears the dirty flag on success")

	ok, err := store.Exists()
	require.NoError(t, err)
	require.True(t, ok)

	restored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, uint64(4), restored.GetSize())

	buf := make([]byte, 4)
	require.NoError(t, restored.Read(0, 4, buf))
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
}

func Test_Store_Load_DetectsCorruption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "od.snapshot")

	realfs := gfs.NewReal()
	store := ramfile.NewStore(realfs, path)

	block := container.NewRAMBlock(4)
	require.NoError(t, block.Write(0, 4, []byte{1, 2, 3, 4}))
	require.NoError(t, store.Save(block))

	raw, err := realfs.ReadFile(path)
	require.NoError(t, err)

	raw[0] ^= 0xFF
	require.NoError(t, realfs.WriteFileAtomic(path, raw, 0o644))

	_, err = store.Load()
	require.ErrorIs(t, err, ramfile.ErrChecksumFail)
}

func Test_Store_Load_DetectsTruncation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "od.snapshot")

	realfs := gfs.NewReal()
	require.NoError(t, realfs.WriteFileAtomic(path, []byte{1, 2}, 0o644))

	store := ramfile.NewStore(realfs, path)

	_, err := store.Load()
	require.ErrorIs(t, err, ramfile.ErrTruncated)
}

// alwaysFailsWrite wraps a real FS but rejects every WriteFileAtomic call,
// simulating a full disk or a read-only remount.
type alwaysFailsWrite struct {
	*gfs.Real
}

func (alwaysFailsWrite) WriteFileAtomic(string, []byte, os.FileMode) error {
	return errInjected
}

var errInjected = errors.New("injected write fault")

func Test_Store_Save_FailsUnderInjectedWriteFaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "od.snapshot")

	faulty := alwaysFailsWrite{Real: gfs.NewReal()}
	store := ramfile.NewStore(faulty, path)

	block := container.NewRAMBlock(2)
	require.NoError(t, block.Write(0, 2, []byte{9, 9}))

	err := store.Save(block)
	require.ErrorIs(t, err, errInjected)
	require.True(t, block.IsDirty(), "a failed save must not clear the dirty flag")
}
