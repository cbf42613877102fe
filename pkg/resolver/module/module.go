package module

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/pprof/profile"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/coral-mesh/apiresolver/internal/objfile"
	"github.com/coral-mesh/apiresolver/internal/sys/proc"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

// Type is the resolver type tag of this backend.
const Type = "module"

// MappingReader returns the executable mappings of a process.
type MappingReader func(pid int) ([]*profile.Mapping, error)

// Backend resolves symbols of the modules loaded in one process.
// It is not safe for concurrent use.
type Backend struct {
	pid          int
	logger       zerolog.Logger
	readMappings MappingReader

	populated   bool
	modules     []*objfile.Module
	fingerprint uint64
	tables      map[*objfile.Module]*tables
	imports     map[string]resolution
}

// resolution is where an imported name was found.
type resolution struct {
	match resolver.Match
	ok    bool
}

var (
	_ resolver.Backend           = (*Backend)(nil)
	_ resolver.StalenessReporter = (*Backend)(nil)
)

// New creates a module backend for opts.PID. It only checks that the process
// exists.
func New(opts resolver.Options) (resolver.Backend, error) {
	return NewWithReader(opts, proc.ReadExecutableMappings)
}

// NewWithReader is New with a custom source of mappings.
func NewWithReader(opts resolver.Options, read MappingReader) (*Backend, error) {
	if !proc.IsSelf(opts.PID) {
		exists, err := process.PidExists(int32(opts.PID)) // #nosec G115
		if err != nil {
			return nil, fmt.Errorf("check process %d: %w", opts.PID, err)
		}
		if !exists {
			return nil, fmt.Errorf("process %d not found", opts.PID)
		}
	}

	if _, err := os.Stat(filepath.Join(proc.Dir(opts.PID), "maps")); err != nil {
		return nil, fmt.Errorf("memory maps not accessible: %w", err)
	}

	return &Backend{
		pid: opts.PID,
		logger: opts.Logger.With().
			Str("component", "module_resolver").
			Int("pid", opts.PID).
			Logger(),
		readMappings: read,
		tables:       make(map[*objfile.Module]*tables),
		imports:      make(map[string]resolution),
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

	for _, mod := range b.modules {
		if !parsed.selects(mod) {
			continue
		}

		t, err := b.load(mod)
		if err != nil {
			return err
		}

		var more bool
		switch parsed.kind {
		case kindExports:
			more = b.visitExports(mod, t, parsed, visit)
		case kindImports:
			more, err = b.visitImports(t, parsed, visit)
		case kindSections:
			more = visitSymbols(mod, t.sections, t.bias, parsed.symbol, visit)
		}
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}

	return nil
}

func (b *Backend) visitExports(mod *objfile.Module, t *tables, q query, visit resolver.Visitor) bool {
	if !q.symbol.IsLiteral() || q.symbol.CaseInsensitive() {
		return visitSymbols(mod, t.exports, t.bias, q.symbol, visit)
	}

	for _, i := range t.byName[q.symbol.Pattern()] {
		s := t.exports[i]
		if !visit(resolver.Match{
			Name:    s.name,
			Address: t.bias + s.value,
			Size:    resolver.SizeOf(s.size),
			Module:  mod.Path,
		}) {
			return false
		}
	}
	return true
}

func visitSymbols(mod *objfile.Module, syms []symbol, bias uint64, g resolver.Glob, visit resolver.Visitor) bool {
	for _, s := range syms {
		if !g.Match(s.name) {
			continue
		}
		if !visit(resolver.Match{
			Name:    s.name,
			Address: bias + s.value,
			Size:    resolver.SizeOf(s.size),
			Module:  mod.Path,
		}) {
			return false
		}
	}
	return true
}

func (b *Backend) visitImports(t *tables, q query, visit resolver.Visitor) (bool, error) {
	for _, name := range t.imports {
		if !q.symbol.Match(name) {
			continue
		}
		res, err := b.resolveImport(name)
		if err != nil {
			return false, err
		}
		if !res.ok {
			continue
		}
		m := res.match
		m.Name = name
		if !visit(m) {
			return false, nil
		}
	}
	return true, nil
}

// resolveImport finds the first module exporting name.
func (b *Backend) resolveImport(name string) (resolution, error) {
	if res, ok := b.imports[name]; ok {
		return res, nil
	}

	res := resolution{}
	for _, mod := range b.modules {
		t, err := b.load(mod)
		if err != nil {
			return resolution{}, err
		}
		if s, ok := t.export(name); ok {
			res = resolution{
				match: resolver.Match{
					Address: t.bias + s.value,
					Size:    resolver.SizeOf(s.size),
					Module:  mod.Path,
				},
				ok: true,
			}
			break
		}
	}

	b.imports[name] = res
	return res, nil
}

// populate reads the module list once.
func (b *Backend) populate() error {
	if b.populated {
		return nil
	}

	mappings, err := b.readMappings(b.pid)
	if err != nil {
		return fmt.Errorf("read executable mappings: %w", err)
	}

	b.modules = orderModules(objfile.GroupModules(b.pid, mappings), b.mainExecutable())
	b.fingerprint = objfile.Fingerprint(mappings)
	b.populated = true

	b.logger.Debug().
		Int("modules", len(b.modules)).
		Msg("Module list populated")

	return nil
}

func (b *Backend) load(mod *objfile.Module) (*tables, error) {
	if t, ok := b.tables[mod]; ok {
		return t, nil
	}
	t, err := loadTables(b.pid, mod, b.logger)
	if err != nil {
		return nil, err
	}
	b.tables[mod] = t
	return t, nil
}

func (b *Backend) mainExecutable() string {
	path, err := proc.GetBinaryPath(b.pid)
	if err != nil {
		b.logger.Debug().Err(err).Msg("Failed to resolve main executable")
		return ""
	}
	return path
}

// orderModules moves the main executable first, keeping address order
// otherwise.
func orderModules(modules []*objfile.Module, exe string) []*objfile.Module {
	for i, mod := range modules {
		if mod.Path != exe || i == 0 {
			continue
		}
		ordered := make([]*objfile.Module, 0, len(modules))
		ordered = append(ordered, mod)
		ordered = append(ordered, modules[:i]...)
		return append(ordered, modules[i+1:]...)
	}
	return modules
}

// Modules returns the module list, populating it if needed.
func (b *Backend) Modules() ([]*objfile.Module, error) {
	if err := b.populate(); err != nil {
		return nil, err
	}
	return b.modules, nil
}

// Stale reports whether the process's executable mappings changed since the
// module list was read.
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

// Close drops the cached tables.
func (b *Backend) Close() error {
	b.populated = false
	b.modules = nil
	b.tables = make(map[*objfile.Module]*tables)
	b.imports = make(map[string]resolution)
	return nil
}
