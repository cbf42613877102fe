package proc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaps = `55d4c8a00000-55d4c8a02000 r--p 00000000 08:01 1311 /usr/bin/cat
55d4c8a02000-55d4c8a07000 r-xp 00002000 08:01 1311 /usr/bin/cat
55d4c8a07000-55d4c8a0a000 r--p 00007000 08:01 1311 /usr/bin/cat
55d4ca1b4000-55d4ca1d5000 rw-p 00000000 00:00 0 [heap]
7f1c2c228000-7f1c2c3bd000 r-xp 00028000 08:01 2098 /usr/lib/x86_64-linux-gnu/libc.so.6
7f1c2c400000-7f1c2c401000 r-xp 00001000 08:01 4444 /opt/app/libold.so (deleted)
7f1c2c410000-7f1c2c420000 r-xp 00000000 00:01 7001 /memfd:jit-code (deleted)
7f1c2c420000-7f1c2c430000 r-xp 00000000 00:01 7002 /SYSV00000000 (deleted)
7f1c2c430000-7f1c2c440000 r-xp 00000000 00:01 7003 /memfd:doublemapper
7f1c2c440000-7f1c2c441000 r-xp 00002000 08:01 4445 /opt/app/libnew.so
7f1c2c5e0000-7f1c2c5e6000 r--p 00000000 08:01 5001 /usr/lib/locale/C.utf8/LC_CTYPE
7ffd1e9f1000-7ffd1e9f3000 r-xp 00000000 00:00 0 [vdso]
`

func TestParseExecutableMappings(t *testing.T) {
	mappings, err := ParseExecutableMappings(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	require.Len(t, mappings, 3)

	assert.Equal(t, "/usr/bin/cat", mappings[0].File)
	assert.Equal(t, uint64(0x55d4c8a02000), mappings[0].Start)
	assert.Equal(t, uint64(0x55d4c8a07000), mappings[0].Limit)
	assert.Equal(t, uint64(0x2000), mappings[0].Offset)

	assert.Equal(t, "/usr/lib/x86_64-linux-gnu/libc.so.6", mappings[1].File)
	assert.Equal(t, uint64(0x28000), mappings[1].Offset)

	assert.Equal(t, "/opt/app/libnew.so", mappings[2].File)
	assert.Equal(t, uint64(0x7f1c2c440000), mappings[2].Start)
}

func TestIsPseudoFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/memfd:jit-code", true},
		{"/memfd:doublemapper (deleted)", true},
		{"/SYSV0000162e", true},
		{"/dev/zero", true},
		{"/anon_hugepage", true},
		{"/usr/lib/libc.so.6", false},
		{"/opt/memfd:lib.so", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPseudoFile(tt.path), tt.path)
	}
}

func TestReadExecutableMappings_Self(t *testing.T) {
	if _, err := os.Stat("/proc/self/maps"); err != nil {
		t.Skip("Skipping test: /proc not available (not on Linux)")
	}

	mappings, err := ReadExecutableMappings(0)
	require.NoError(t, err)
	require.NotEmpty(t, mappings)

	exe, err := GetBinaryPath(0)
	require.NoError(t, err)

	found := false
	for _, m := range mappings {
		if m.File == exe {
			found = true
		}
	}
	assert.True(t, found, "test executable %s should be mapped", exe)
}

func TestParseKallsyms(t *testing.T) {
	input := `ffffffff81000000 T _stext
ffffffff81000010 t do_one_initcall
ffffffff82000000 D some_data
0000000000000000 T hidden
ffffffffc0a01000 t ext4_open [ext4]
garbage
`
	symbols, zero, err := ParseKallsyms(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, zero)
	require.Len(t, symbols, 4)

	assert.Equal(t, "_stext", symbols[0].Name)
	assert.Equal(t, uint64(0xffffffff81000000), symbols[0].Address)
	assert.True(t, symbols[0].IsText())
	assert.False(t, symbols[2].IsText())
	assert.Equal(t, "ext4", symbols[3].Module)
	assert.Empty(t, symbols[0].Module)
}

func TestKallsymsReadable(t *testing.T) {
	old := Root
	t.Cleanup(func() { Root = old })
	Root = t.TempDir()

	_, err := KallsymsReadable()
	assert.Error(t, err)

	path := filepath.Join(Root, "kallsyms")
	require.NoError(t, os.WriteFile(path, []byte("0000000000000000 T _stext\n"), 0o644))
	ok, err := KallsymsReadable()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("ffffffff81000000 T _stext\n"), 0o644))
	ok, err = KallsymsReadable()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirAndHostPath(t *testing.T) {
	assert.Equal(t, "/proc/self", Dir(0))
	assert.Equal(t, "/proc/42", Dir(42))
	assert.True(t, IsSelf(0))
	assert.True(t, IsSelf(os.Getpid()))
	assert.Equal(t, "/usr/lib/libc.so.6", HostPath(0, "/usr/lib/libc.so.6"))
	assert.Equal(t, "/proc/999999/root/usr/lib/libc.so.6", HostPath(999999, "/usr/lib/libc.so.6"))
}
