package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcrocket/hpcrocket/pkg/environment"
	"github.com/hpcrocket/hpcrocket/pkg/testutils"
)

func exists(t *testing.T, fs *testutils.MemoryFilesystem, path string) bool {
	t.Helper()
	ok, err := fs.Exists(path)
	require.NoError(t, err)
	return ok
}

func TestPrepare_NoSideEffectsBeforeCall(t *testing.T) {
	source := testutils.NewMemoryFilesystem("file1.txt")
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)
	sut.FilesToCopy([]environment.CopyInstruction{
		{Source: "file1.txt", Destination: "file2.txt"},
	})

	assert.False(t, exists(t, target, "file2.txt"))
}

func TestPrepare_CopiesFilesInOrder(t *testing.T) {
	source := testutils.NewMemoryFilesystem("file.txt", "funny.gif")
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)
	sut.FilesToCopy([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "filecopy.txt"},
		{Source: "funny.gif", Destination: "evenfunnier.gif", Overwrite: true},
	})

	require.NoError(t, sut.Prepare())

	assert.True(t, exists(t, target, "filecopy.txt"))
	assert.True(t, exists(t, target, "evenfunnier.gif"))
	assert.Equal(t, source.Content("file.txt"), target.Content("filecopy.txt"))
}

func TestPrepare_MissingSourceFailsFast(t *testing.T) {
	source := testutils.NewMemoryFilesystem("file.txt")
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)
	sut.FilesToCopy([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "filecopy.txt"},
		{Source: "funny.gif", Destination: "evenfunnier.gif"},
		{Source: "file.txt", Destination: "never.txt"},
	})

	require.Error(t, sut.Prepare())

	// The failing instruction stops the run before later ones are tried.
	assert.True(t, exists(t, target, "filecopy.txt"))
	assert.False(t, exists(t, target, "never.txt"))
}

func TestPrepare_FailureThenRollbackRemovesStagedFiles(t *testing.T) {
	source := testutils.NewMemoryFilesystem("file.txt")
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)
	sut.FilesToCopy([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "filecopy.txt"},
		{Source: "funny.gif", Destination: "evenfunnier.gif"},
	})

	require.Error(t, sut.Prepare())
	require.NoError(t, sut.Rollback())

	assert.False(t, exists(t, target, "filecopy.txt"))
	assert.False(t, exists(t, target, "evenfunnier.gif"))
}

func TestRollback_ExternallyDeletedFileIsDrainedSilently(t *testing.T) {
	source := testutils.NewMemoryFilesystem("file.txt", "funny.gif")
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)
	sut.FilesToCopy([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "filecopy.txt"},
		{Source: "funny.gif", Destination: "evenfunnier.gif"},
	})
	require.NoError(t, sut.Prepare())

	// Someone else removed the first staged file.
	require.NoError(t, target.Delete("filecopy.txt"))

	require.NoError(t, sut.Rollback())

	assert.False(t, exists(t, target, "evenfunnier.gif"))

	// The not-found entry was drained, so nothing is retried.
	deletesBefore := len(target.DeleteCalls)
	require.NoError(t, sut.Rollback())
	assert.Equal(t, deletesBefore, len(target.DeleteCalls))
}

func TestRollback_IsIdempotent(t *testing.T) {
	source := testutils.NewMemoryFilesystem("file.txt", "funny.gif")
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)
	sut.FilesToCopy([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "filecopy.txt"},
		{Source: "funny.gif", Destination: "evenfunnier.gif"},
	})
	require.NoError(t, sut.Prepare())
	require.NoError(t, sut.Rollback())

	deletesBefore := len(target.DeleteCalls)
	require.NoError(t, sut.Rollback())

	assert.Equal(t, deletesBefore, len(target.DeleteCalls))
}

func TestRollback_EmptyLedgerIsNoOp(t *testing.T) {
	source := testutils.NewMemoryFilesystem()
	target := testutils.NewMemoryFilesystem()

	sut := environment.New(source, target, nil)

	require.NoError(t, sut.Rollback())
	assert.Empty(t, target.DeleteCalls)
}

func TestClean_NoSideEffectsBeforeCall(t *testing.T) {
	target := testutils.NewMemoryFilesystem("file1.txt")

	sut := environment.New(testutils.NewMemoryFilesystem(), target, nil)
	sut.FilesToClean([]string{"file1.txt"})

	assert.Empty(t, target.DeleteCalls)
}

func TestClean_DeletesFilesInOrder(t *testing.T) {
	target := testutils.NewMemoryFilesystem("file.txt", "funny.gif")

	sut := environment.New(testutils.NewMemoryFilesystem(), target, nil)
	sut.FilesToClean([]string{"file.txt", "funny.gif"})

	sut.Clean()

	assert.Equal(t, []string{"file.txt", "funny.gif"}, target.DeleteCalls)
	assert.False(t, exists(t, target, "file.txt"))
	assert.False(t, exists(t, target, "funny.gif"))
}

func TestClean_MissingFileIsReportedAndRemainingFilesAreCleaned(t *testing.T) {
	target := testutils.NewMemoryFilesystem("funny.gif")
	ui := testutils.NewUISpy()

	sut := environment.New(testutils.NewMemoryFilesystem(), target, ui)
	sut.FilesToClean([]string{"file.txt", "funny.gif"})

	sut.Clean()

	assert.False(t, exists(t, target, "funny.gif"))
	assert.Equal(t, []string{"FileNotFoundError: Cannot delete file 'file.txt'"}, ui.Errors)
}

func TestCollect_CopiesBackToSource(t *testing.T) {
	source := testutils.NewMemoryFilesystem()
	target := testutils.NewMemoryFilesystem("file.txt", "funny.gif")

	sut := environment.New(source, target, nil)
	sut.FilesToCollect([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "copy_file.txt", Overwrite: true},
		{Source: "funny.gif", Destination: "copy_funny.gif"},
	})

	sut.Collect()

	require.Len(t, target.CopyCalls, 2)
	assert.Equal(t, testutils.CopyCall{Source: "file.txt", Destination: "copy_file.txt", Overwrite: true, Target: source}, target.CopyCalls[0])
	assert.Equal(t, testutils.CopyCall{Source: "funny.gif", Destination: "copy_funny.gif", Overwrite: false, Target: source}, target.CopyCalls[1])
	assert.True(t, exists(t, source, "copy_file.txt"))
	assert.True(t, exists(t, source, "copy_funny.gif"))
}

func TestCollect_MissingFileIsReportedAndRemainingFilesAreCollected(t *testing.T) {
	source := testutils.NewMemoryFilesystem()
	target := testutils.NewMemoryFilesystem("funny.gif")
	ui := testutils.NewUISpy()

	sut := environment.New(source, target, ui)
	sut.FilesToCollect([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "copy_file.txt"},
		{Source: "funny.gif", Destination: "copy_funny.gif"},
	})

	sut.Collect()

	require.Len(t, target.CopyCalls, 2)
	assert.Same(t, source, target.CopyCalls[1].Target)
	assert.True(t, exists(t, source, "copy_funny.gif"))
	assert.Equal(t, []string{"FileNotFoundError: Cannot copy file 'file.txt'"}, ui.Errors)
}

func TestCollect_ExistingDestinationIsReportedAndRemainingFilesAreCollected(t *testing.T) {
	source := testutils.NewMemoryFilesystem("copy_file.txt")
	target := testutils.NewMemoryFilesystem("file.txt", "funny.gif")
	ui := testutils.NewUISpy()

	sut := environment.New(source, target, ui)
	sut.FilesToCollect([]environment.CopyInstruction{
		{Source: "file.txt", Destination: "copy_file.txt"},
		{Source: "funny.gif", Destination: "copy_funny.gif"},
	})

	sut.Collect()

	require.Len(t, target.CopyCalls, 2)
	assert.True(t, exists(t, source, "copy_funny.gif"))
	assert.Equal(t, []string{"FileExistsError: Cannot copy file 'file.txt'"}, ui.Errors)
}
