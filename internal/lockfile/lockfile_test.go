package lockfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/builderr"
	"github.com/packforge/packforge/internal/lockfile"
	"github.com/packforge/packforge/internal/testutil"
)

func TestParse(t *testing.T) {
	t.Parallel()

	decls := []lockfile.Declaration{
		{Name: "anyhow", Version: "1.0.86"},
		{Name: "clap", Version: "4.5.4"},
	}
	f, err := lockfile.Parse([]byte(testutil.LockFor(decls...)))
	require.NoError(t, err)

	assert.Equal(t, 1, f.LockVersion)
	require.Len(t, f.Packages, 2)

	entry, ok := f.Entry("clap")
	require.True(t, ok)
	assert.Equal(t, "4.5.4", entry.Version)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := lockfile.Parse([]byte("version = [not toml"))
	require.Error(t, err)
}

func TestVerify_AgreeingDeclarationsPass(t *testing.T) {
	t.Parallel()

	decls := []lockfile.Declaration{
		{Name: "anyhow", Version: "1.0.86"},
		{Name: "clap", Version: "4.5.4"},
	}
	f, err := lockfile.Parse([]byte(testutil.LockFor(decls...)))
	require.NoError(t, err)

	require.NoError(t, f.Verify(decls))
	// Verification is read-only; repeating it gives the same verdict.
	require.NoError(t, f.Verify(decls))
}

func TestVerify_MissingDeclarationIsIntegrityViolation(t *testing.T) {
	t.Parallel()

	f, err := lockfile.Parse([]byte(testutil.LockFor(
		lockfile.Declaration{Name: "anyhow", Version: "1.0.86"},
	)))
	require.NoError(t, err)

	err = f.Verify([]lockfile.Declaration{{Name: "clap", Version: "4.5.4"}})
	var integrity *builderr.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "clap", integrity.Dependency)
}

func TestVerify_VersionDriftIsIntegrityViolation(t *testing.T) {
	t.Parallel()

	f, err := lockfile.Parse([]byte(testutil.LockFor(
		lockfile.Declaration{Name: "anyhow", Version: "1.0.86"},
	)))
	require.NoError(t, err)

	err = f.Verify([]lockfile.Declaration{{Name: "anyhow", Version: "1.0.99"}})
	var integrity *builderr.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Contains(t, integrity.Reason, "lock records 1.0.86")
}

func TestVerify_ChecksumMismatchIsIntegrityViolation(t *testing.T) {
	t.Parallel()

	f, err := lockfile.Parse([]byte(`
version = 1

[[package]]
name = "anyhow"
version = "1.0.86"
checksum = "deadbeef"
`))
	require.NoError(t, err)

	err = f.Verify([]lockfile.Declaration{{Name: "anyhow", Version: "1.0.86"}})
	var integrity *builderr.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Contains(t, integrity.Reason, "checksum")
}
