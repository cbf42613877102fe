// Package kernel resolves kernel functions from /proc/kallsyms.
//
// Queries are "<symbol>" or "<module>!<symbol>", both globs. Symbols of the
// core kernel belong to the module "vmlinux"; a bare symbol pattern searches
// every module. Only text symbols are reported.
package kernel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/apiresolver/internal/sys/proc"
	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

// Type is the resolver type tag of this backend.
const Type = "kernel"

// CoreModule names the module of symbols built into the kernel image.
const CoreModule = "vmlinux"

// ErrAddressesHidden is returned when kallsyms only shows zero addresses.
var ErrAddressesHidden = errors.New("kallsyms addresses are hidden (need root or CAP_SYSLOG)")

// SymbolReader returns the kernel symbol table and the number of entries
// with hidden addresses.
type SymbolReader func() ([]proc.KernelSymbol, int, error)

// Backend resolves kernel text symbols.
// It is not safe for concurrent use.
type Backend struct {
	logger      zerolog.Logger
	readSymbols SymbolReader

	populated bool
	symbols   []proc.KernelSymbol // text symbols, in kallsyms order
	sizes     []uint64
}

var _ resolver.Backend = (*Backend)(nil)

// New creates a kernel backend. The kernel is shared by all processes, so
// opts.PID is ignored.
func New(opts resolver.Options) (resolver.Backend, error) {
	readable, err := proc.KallsymsReadable()
	if err != nil {
		return nil, fmt.Errorf("check kallsyms: %w", err)
	}
	if !readable {
		return nil, ErrAddressesHidden
	}
	return NewWithReader(opts, proc.ReadKallsyms), nil
}

// NewWithReader is New with a custom symbol source and no availability check.
func NewWithReader(opts resolver.Options, read SymbolReader) *Backend {
	return &Backend{
		logger:      opts.Logger.With().Str("component", "kernel_resolver").Logger(),
		readSymbols: read,
	}
}

// Enumerate implements resolver.Backend.
func (b *Backend) Enumerate(q resolver.Query, visit resolver.Visitor) error {
	modPattern, symPattern, scoped := strings.Cut(q.Body, "!")
	if !scoped {
		modPattern, symPattern = "*", q.Body
	}
	if modPattern == "" || symPattern == "" {
		return resolver.Malformed("expected <symbol> or <module>!<symbol>, got %q", q.Body)
	}
	if strings.Contains(symPattern, "!") {
		return resolver.Malformed("more than one '!' in %q", q.Body)
	}
	modGlob := q.Glob(modPattern)
	symGlob := q.Glob(symPattern)

	if err := b.populate(); err != nil {
		return err
	}

	for i, s := range b.symbols {
		module := moduleName(s)
		if !modGlob.Match(module) || !symGlob.Match(s.Name) {
			continue
		}
		if !visit(resolver.Match{
			Name:    s.Name,
			Address: s.Address,
			Size:    resolver.SizeOf(b.sizes[i]),
			Module:  module,
		}) {
			return nil
		}
	}
	return nil
}

func moduleName(s proc.KernelSymbol) string {
	if s.Module == "" {
		return CoreModule
	}
	return s.Module
}

func (b *Backend) populate() error {
	if b.populated {
		return nil
	}

	all, zeroAddresses, err := b.readSymbols()
	if err != nil {
		return fmt.Errorf("failed to read kallsyms: %w", err)
	}
	if len(all) == 0 && zeroAddresses > 0 {
		return ErrAddressesHidden
	}

	b.symbols, b.sizes = textSymbols(all)
	b.populated = true

	b.logger.Debug().
		Int("symbol_count", len(all)).
		Int("text_symbols", len(b.symbols)).
		Int("zero_addresses", zeroAddresses).
		Msg("Kernel symbols loaded")

	return nil
}

// textSymbols keeps the text symbols of all and sizes each one up to the next
// higher address of any symbol. The highest symbol has no size.
func textSymbols(all []proc.KernelSymbol) ([]proc.KernelSymbol, []uint64) {
	addrs := make([]uint64, len(all))
	for i, s := range all {
		addrs[i] = s.Address
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var (
		text  []proc.KernelSymbol
		sizes []uint64
	)
	for _, s := range all {
		if !s.IsText() {
			continue
		}
		var size uint64
		next := sort.Search(len(addrs), func(i int) bool { return addrs[i] > s.Address })
		if next < len(addrs) {
			size = addrs[next] - s.Address
		}
		text = append(text, s)
		sizes = append(sizes, size)
	}
	return text, sizes
}

// Close drops the cached symbol table.
func (b *Backend) Close() error {
	b.populated = false
	b.symbols = nil
	b.sizes = nil
	return nil
}
