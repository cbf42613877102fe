package gofunc

import (
	"debug/elf"
	"fmt"
	"os"

	"github.com/google/pprof/profile"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	ierrors "github.com/coral-mesh/apiresolver/internal/errors"
	"github.com/coral-mesh/apiresolver/internal/objfile"
	"github.com/coral-mesh/apiresolver/internal/sys/proc"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

// Type is the resolver type tag of this backend.
const Type = "go"

// MappingReader returns the executable mappings of a process.
type MappingReader func(pid int) ([]*profile.Mapping, error)

// Backend resolves the functions and methods of one Go process.
// It is not safe for concurrent use.
type Backend struct {
	pid          int
	exe          string
	logger       zerolog.Logger
	readMappings MappingReader

	populated   bool
	bias        uint64
	funcs       []function
	fingerprint uint64
}

var (
	_ resolver.Backend           = (*Backend)(nil)
	_ resolver.StalenessReporter = (*Backend)(nil)
)

// New creates a Go backend for opts.PID. It fails when the process's
// executable carries no Go function table.
func New(opts resolver.Options) (resolver.Backend, error) {
	return NewWithReader(opts, proc.ReadExecutableMappings)
}

// NewWithReader is New with a custom source of mappings.
func NewWithReader(opts resolver.Options, read MappingReader) (*Backend, error) {
	pid := opts.PID
	if proc.IsSelf(pid) {
		pid = os.Getpid()
	}

	p, err := process.NewProcess(int32(pid)) // #nosec G115
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", pid, err)
	}
	exe, err := p.Exe()
	if err != nil {
		return nil, fmt.Errorf("resolve executable of %d: %w", pid, err)
	}

	logger := opts.Logger.With().
		Str("component", "go_resolver").
		Int("pid", opts.PID).
		Str("exe", exe).
		Logger()

	f, err := elf.Open(proc.HostPath(opts.PID, exe))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", exe, err)
	}
	defer ierrors.DeferClose(logger, f, "failed to close ELF file")

	if f.Section(".gopclntab") == nil && f.Section(".go.buildinfo") == nil {
		return nil, fmt.Errorf("%s: %w", exe, ErrNotGo)
	}

	return &Backend{
		pid:          opts.PID,
		exe:          exe,
		logger:       logger,
		readMappings: read,
	}, nil
}

// Enumerate implements resolver.Backend.
func (b *Backend) Enumerate(q resolver.Query, visit resolver.Visitor) error {
	parsed, err := parseQuery(q)
	if err != nil {
		return err
	}

	if err := b.populate(); err != nil {
		return err
	}

	for _, fn := range b.funcs {
		if !parsed.matches(fn) {
			continue
		}
		if !visit(resolver.Match{
			Name:    fn.name,
			Address: b.bias + fn.entry,
			Size:    resolver.SizeOf(fn.end - fn.entry),
			Module:  b.exe,
		}) {
			return nil
		}
	}
	return nil
}

func (b *Backend) populate() error {
	if b.populated {
		return nil
	}

	f, err := elf.Open(proc.HostPath(b.pid, b.exe))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", b.exe, err)
	}
	defer ierrors.DeferClose(b.logger, f, "failed to close ELF file")

	funcs, err := readFunctions(f)
	if err != nil {
		return fmt.Errorf("%s: %w", b.exe, err)
	}

	mappings, err := b.readMappings(b.pid)
	if err != nil {
		return fmt.Errorf("read executable mappings: %w", err)
	}
	bias, err := b.loadBias(f, mappings)
	if err != nil {
		return err
	}

	b.funcs = funcs
	b.bias = bias
	b.fingerprint = objfile.Fingerprint(mappings)
	b.populated = true

	b.logger.Debug().
		Int("functions", len(funcs)).
		Uint64("bias", bias).
		Msg("Function table loaded")

	return nil
}

func (b *Backend) loadBias(f *elf.File, mappings []*profile.Mapping) (uint64, error) {
	if f.Type == elf.ET_EXEC {
		return 0, nil
	}
	for _, mod := range objfile.GroupModules(b.pid, mappings) {
		if mod.Path == b.exe {
			return mod.LoadBias(f)
		}
	}
	return 0, fmt.Errorf("executable %s not mapped in process %d", b.exe, b.pid)
}

// Stale reports whether the process's executable mappings changed since the
// function table was loaded.
func (b *Backend) Stale() (bool, error) {
	if !b.populated {
		return false, nil
	}
	mappings, err := b.readMappings(b.pid)
	if err != nil {
		return false, fmt.Errorf("read executable mappings: %w", err)
	}
	return objfile.Fingerprint(mappings) != b.fingerprint, nil
}

// Close drops the function table.
func (b *Backend) Close() error {
	b.populated = false
	b.funcs = nil
	return nil
}
