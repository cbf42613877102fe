package module

import (
	"debug/elf"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	ierrors "github.com/coral-mesh/apiresolver/internal/errors"
	"github.com/coral-mesh/apiresolver/internal/objfile"
)

// sttGNUIFunc is missing from debug/elf.
const sttGNUIFunc elf.SymType = 10

// stbGNUUnique is missing from debug/elf.
const stbGNUUnique elf.SymBind = 10

type symbol struct {
	name  string
	value uint64 // link-time address
	size  uint64
}

// tables holds the parsed ELF tables of one module.
type tables struct {
	bias     uint64
	exports  []symbol
	byName   map[string][]int // indexes into exports
	imports  []string
	sections []symbol
}

func loadTables(pid int, mod *objfile.Module, logger zerolog.Logger) (*tables, error) {
	f, err := mod.Open(pid)
	if err != nil {
		return nil, err
	}
	defer ierrors.DeferClose(logger, f, "failed to close ELF file")

	bias, err := mod.LoadBias(f)
	if err != nil {
		return nil, fmt.Errorf("compute load bias of %s: %w", mod.Path, err)
	}

	t := &tables{
		bias:   bias,
		byName: make(map[string][]int),
	}

	syms, err := f.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("read dynamic symbols of %s: %w", mod.Path, err)
	}

	seenImports := make(map[string]bool)
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		typ := elf.ST_TYPE(s.Info)
		bind := elf.ST_BIND(s.Info)

		if s.Section == elf.SHN_UNDEF {
			if typ != elf.STT_FUNC && typ != elf.STT_NOTYPE && typ != sttGNUIFunc {
				continue
			}
			if !seenImports[s.Name] {
				seenImports[s.Name] = true
				t.imports = append(t.imports, s.Name)
			}
			continue
		}

		if typ != elf.STT_FUNC && typ != sttGNUIFunc {
			continue
		}
		if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK && bind != stbGNUUnique {
			continue
		}
		if s.Value == 0 {
			continue
		}

		t.byName[s.Name] = append(t.byName[s.Name], len(t.exports))
		t.exports = append(t.exports, symbol{name: s.Name, value: s.Value, size: s.Size})
	}

	for _, sec := range f.Sections {
		if sec.Flags&elf.SHF_ALLOC == 0 || sec.Name == "" || sec.Addr == 0 {
			continue
		}
		t.sections = append(t.sections, symbol{name: sec.Name, value: sec.Addr, size: sec.Size})
	}

	logger.Debug().
		Str("module", mod.Path).
		Uint64("bias", bias).
		Int("exports", len(t.exports)).
		Int("imports", len(t.imports)).
		Int("sections", len(t.sections)).
		Msg("Module tables loaded")

	return t, nil
}

// export returns the first export named name.
func (t *tables) export(name string) (symbol, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return symbol{}, false
	}
	return t.exports[idx[0]], true
}
