// Package proc provides utilities for process introspection on Linux systems.
// It parses the /proc filesystem to find executable mappings and kernel symbols.
package proc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/pprof/profile"
)

// Root is the procfs mount point.
var Root = "/proc"

const deletedSuffix = " (deleted)"

// Dir returns the /proc directory of pid. Zero means the current process.
func Dir(pid int) string {
	if pid == 0 {
		return filepath.Join(Root, "self")
	}
	return filepath.Join(Root, strconv.Itoa(pid))
}

// IsSelf reports whether pid designates the current process.
func IsSelf(pid int) bool {
	return pid == 0 || pid == os.Getpid()
}

// GetBinaryPath returns the path to the executable for the given PID.
// Deleted binaries (common after upgrades in containers) keep their original path.
func GetBinaryPath(pid int) (string, error) {
	target, err := os.Readlink(filepath.Join(Dir(pid), "exe"))
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(target, deletedSuffix), nil
}

// HostPath returns a path through which a file of pid's mount namespace can be
// opened from ours.
func HostPath(pid int, path string) string {
	if IsSelf(pid) {
		return path
	}
	return filepath.Join(Dir(pid), "root", path)
}

// ReadExecutableMappings returns the executable file mappings of pid, in
// address order, as listed by /proc/<pid>/maps.
func ReadExecutableMappings(pid int) ([]*profile.Mapping, error) {
	mapsPath := filepath.Join(Dir(pid), "maps")
	//nolint:gosec // G304: Path is from /proc filesystem for system information.
	f, err := os.Open(mapsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", mapsPath, err)
	}
	defer f.Close() // nolint:errcheck

	mappings, err := ParseExecutableMappings(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", mapsPath, err)
	}
	return mappings, nil
}

// ParseExecutableMappings parses maps in /proc/<pid>/maps format and keeps the
// executable mappings backed by files that can be reopened by path. Deleted
// files are dropped since their path now names a different file or none.
func ParseExecutableMappings(r io.Reader) ([]*profile.Mapping, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var live bytes.Buffer
	for line := range bytes.Lines(data) {
		if bytes.HasSuffix(bytes.TrimRight(line, "\n"), []byte(deletedSuffix)) {
			continue
		}
		live.Write(line)
	}

	all, err := profile.ParseProcMaps(&live)
	if err != nil {
		return nil, err
	}

	mappings := make([]*profile.Mapping, 0, len(all))
	for _, m := range all {
		// Skip anonymous and pseudo mappings like [vdso] or [stack].
		if !strings.HasPrefix(m.File, "/") || IsPseudoFile(m.File) {
			continue
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// pseudoFilePrefixes name kernel objects that show up in maps with an absolute
// path but have no directory entry.
var pseudoFilePrefixes = []string{
	"/memfd:",
	"/SYSV",
	"/dev/zero",
	"/anon_hugepage",
}

// IsPseudoFile reports whether a maps path names an in-memory object, such as
// a memfd, that cannot be opened through that path.
func IsPseudoFile(path string) bool {
	for _, prefix := range pseudoFilePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// KernelSymbol represents a kernel symbol from /proc/kallsyms.
type KernelSymbol struct {
	Address uint64
	Type    byte
	Name    string
	Module  string // Empty for core kernel, module name for loadable modules
}

// IsText reports whether the symbol lives in a text (code) section.
func (s KernelSymbol) IsText() bool {
	return s.Type == 't' || s.Type == 'T'
}

// ReadKallsyms reads and parses /proc/kallsyms.
// It returns a list of symbols and the count of zero addresses found (indicating permission issues).
func ReadKallsyms() ([]KernelSymbol, int, error) {
	path := filepath.Join(Root, "kallsyms")
	//nolint:gosec // G304: Path is from /proc filesystem for system information.
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close() // nolint:errcheck

	symbols, zeroAddresses, err := ParseKallsyms(file)
	if err != nil {
		return nil, zeroAddresses, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return symbols, zeroAddresses, nil
}

// ParseKallsyms parses symbols in /proc/kallsyms format.
func ParseKallsyms(r io.Reader) ([]KernelSymbol, int, error) {
	var symbols []KernelSymbol
	scanner := bufio.NewScanner(r)
	zeroAddresses := 0

	for scanner.Scan() {
		sym, ok := parseKallsymsLine(scanner.Text())
		if !ok {
			continue
		}

		// Check for zero addresses (means insufficient permissions)
		if sym.Address == 0 {
			zeroAddresses++
			continue
		}

		symbols = append(symbols, sym)
	}

	if err := scanner.Err(); err != nil {
		return nil, zeroAddresses, err
	}

	return symbols, zeroAddresses, nil
}

// KallsymsReadable reports whether /proc/kallsyms exposes real addresses. Only
// the first line is read.
func KallsymsReadable() (bool, error) {
	//nolint:gosec // G304: Path is from /proc filesystem for system information.
	file, err := os.Open(filepath.Join(Root, "kallsyms"))
	if err != nil {
		return false, err
	}
	defer file.Close() // nolint:errcheck

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		sym, ok := parseKallsymsLine(scanner.Text())
		if !ok {
			continue
		}
		return sym.Address != 0, nil
	}
	return false, scanner.Err()
}

func parseKallsymsLine(line string) (KernelSymbol, bool) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return KernelSymbol{}, false
	}

	addr, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return KernelSymbol{}, false
	}

	// Parse optional module name [module_name]
	var module string
	if len(parts) > 3 && strings.HasPrefix(parts[3], "[") && strings.HasSuffix(parts[3], "]") {
		module = strings.Trim(parts[3], "[]")
	}

	return KernelSymbol{
		Address: addr,
		Type:    parts[1][0],
		Name:    parts[2],
		Module:  module,
	}, true
}
