// Package objfile maps the executable modules of a process to their ELF images.
package objfile

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/pprof/profile"
	"github.com/zeebo/xxh3"

	"github.com/coral-mesh/apiresolver/internal/sys/proc"
)

// ErrNoLoadSegment is returned when no PT_LOAD segment covers a mapping.
var ErrNoLoadSegment = errors.New("no PT_LOAD segment covers mapping")

// Module is a file mapped executable into a process.
type Module struct {
	// Path is the file path as seen from the target's mount namespace.
	Path string

	// Name is the base name of Path.
	Name string

	// ID identifies the file independently of the path used to map it.
	ID ID

	// Mappings are the executable mappings of the file, in address order.
	Mappings []*profile.Mapping
}

// Start returns the lowest executable address of the module.
func (m *Module) Start() uint64 {
	return m.Mappings[0].Start
}

// Open opens the module's ELF image as seen by pid.
func (m *Module) Open(pid int) (*elf.File, error) {
	f, err := elf.Open(proc.HostPath(pid, m.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", m.Path, err)
	}
	return f, nil
}

// LoadBias returns the difference between runtime and link-time addresses of
// the module.
func (m *Module) LoadBias(f *elf.File) (uint64, error) {
	return LoadBias(f, m.Mappings[0])
}

// GroupModules groups executable mappings by backing file, in order of first
// appearance. Files mapped under several paths are reported once.
func GroupModules(pid int, mappings []*profile.Mapping) []*Module {
	var modules []*Module
	byKey := make(map[string]*Module)

	for _, mp := range mappings {
		id, err := Identify(proc.HostPath(pid, mp.File))
		key := id.String()
		if err != nil {
			key = "path:" + mp.File
		}

		if mod, ok := byKey[key]; ok {
			mod.Mappings = append(mod.Mappings, mp)
			continue
		}

		mod := &Module{
			Path:     mp.File,
			Name:     filepath.Base(mp.File),
			ID:       id,
			Mappings: []*profile.Mapping{mp},
		}
		byKey[key] = mod
		modules = append(modules, mod)
	}

	return modules
}

// LoadBias computes the load bias of an ELF image from one of its executable
// mappings: bias = runtime address - link-time address.
func LoadBias(f *elf.File, m *profile.Mapping) (uint64, error) {
	pageMask := uint64(os.Getpagesize() - 1)

	// A page may be shared by two segments; prefer the executable one.
	var fallback *elf.Prog
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		pageOff := prog.Off &^ pageMask
		if m.Offset < pageOff || m.Offset >= prog.Off+prog.Filesz {
			continue
		}
		if prog.Flags&elf.PF_X != 0 {
			return m.Start - linkAddress(prog, m.Offset, pageMask), nil
		}
		if fallback == nil {
			fallback = prog
		}
	}

	if fallback != nil {
		return m.Start - linkAddress(fallback, m.Offset, pageMask), nil
	}
	if f.Type == elf.ET_EXEC {
		return 0, nil
	}
	return 0, fmt.Errorf("%w at offset 0x%x", ErrNoLoadSegment, m.Offset)
}

// linkAddress is the link-time address that file offset off is mapped at.
func linkAddress(prog *elf.Prog, off, pageMask uint64) uint64 {
	return (prog.Vaddr &^ pageMask) + (off - prog.Off&^pageMask)
}

// Fingerprint hashes the layout of mappings so a later snapshot can be
// compared cheaply.
func Fingerprint(mappings []*profile.Mapping) uint64 {
	h := xxh3.New()
	var buf [24]byte
	for _, m := range mappings {
		binary.LittleEndian.PutUint64(buf[0:], m.Start)
		binary.LittleEndian.PutUint64(buf[8:], m.Limit)
		binary.LittleEndian.PutUint64(buf[16:], m.Offset)
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(m.File)
	}
	return h.Sum64()
}
