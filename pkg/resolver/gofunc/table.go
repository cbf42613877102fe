package gofunc

import (
	"debug/elf"
	"debug/gosym"
	"errors"
	"fmt"
	"strings"
)

// ErrNotGo is returned for executables without a Go function table.
var ErrNotGo = errors.New("not a Go executable")

// function is one entry of the runtime function table.
type function struct {
	name     string
	pkg      string
	receiver string // without parentheses or '*'
	base     string
	closure  bool
	entry    uint64 // link-time address
	end      uint64
}

// pclntab returns the raw function table and the address it is relative to.
func pclntab(f *elf.File) ([]byte, uint64, error) {
	text := f.Section(".text")
	if text == nil {
		return nil, 0, fmt.Errorf("%w: no .text section", ErrNotGo)
	}

	if sect := f.Section(".gopclntab"); sect != nil {
		data, err := sect.Data()
		if err != nil {
			return nil, 0, fmt.Errorf("read .gopclntab: %w", err)
		}
		return data, text.Addr, nil
	}

	// Externally linked PIE binaries fold the table into .data.rel.ro.
	data, err := symbolRange(f, "runtime.pclntab", "runtime.epclntab")
	if err != nil {
		return nil, 0, err
	}
	return data, text.Addr, nil
}

func symbolRange(f *elf.File, start, end string) ([]byte, error) {
	syms, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGo, err)
	}

	var lo, hi uint64
	for _, s := range syms {
		switch s.Name {
		case start:
			lo = s.Value
		case end:
			hi = s.Value
		}
	}
	if lo == 0 || hi <= lo {
		return nil, fmt.Errorf("%w: no function table", ErrNotGo)
	}

	for _, sect := range f.Sections {
		if lo < sect.Addr || hi > sect.Addr+sect.Size {
			continue
		}
		data, err := sect.Data()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sect.Name, err)
		}
		return data[lo-sect.Addr : hi-sect.Addr], nil
	}
	return nil, fmt.Errorf("%w: function table outside any section", ErrNotGo)
}

// readFunctions decodes the function table of f.
func readFunctions(f *elf.File) ([]function, error) {
	data, textStart, err := pclntab(f)
	if err != nil {
		return nil, err
	}

	var symtab []byte
	if sect := f.Section(".gosymtab"); sect != nil {
		if symtab, err = sect.Data(); err != nil {
			return nil, fmt.Errorf("read .gosymtab: %w", err)
		}
	}

	table, err := gosym.NewTable(symtab, gosym.NewLineTable(data, textStart))
	if err != nil {
		return nil, fmt.Errorf("decode function table: %w", err)
	}

	funcs := make([]function, 0, len(table.Funcs))
	for _, fn := range table.Funcs {
		if fn.Sym == nil || fn.Entry == 0 {
			continue
		}
		funcs = append(funcs, newFunction(fn.Sym, fn.Entry, fn.End))
	}
	return funcs, nil
}

func newFunction(sym *gosym.Sym, entry, end uint64) function {
	recv := sym.ReceiverName()
	base := sym.BaseName()
	return function{
		name:     sym.Name,
		pkg:      sym.PackageName(),
		receiver: trimReceiver(recv),
		base:     base,
		closure:  strings.Contains(recv, ".") || isClosure(base),
		entry:    entry,
		end:      end,
	}
}

// trimReceiver turns "(*T)" into "T".
func trimReceiver(recv string) string {
	recv = strings.TrimPrefix(recv, "(")
	recv = strings.TrimSuffix(recv, ")")
	return strings.TrimPrefix(recv, "*")
}

// isClosure reports compiler-generated function literal names: func1, gowrap2,
// deferwrap3.
func isClosure(base string) bool {
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		rest, ok := strings.CutPrefix(base, prefix)
		if !ok || rest == "" {
			continue
		}
		if strings.Trim(rest, "0123456789.") == "" {
			return true
		}
	}
	return false
}
