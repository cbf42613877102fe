// Package format renders resolver matches for the command line.
package format

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/ianlancetaylor/demangle"

	"github.com/coral-mesh/apiresolver/pkg/resolver"
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// Row is a match together with the query that produced it.
type Row struct {
	Query string
	resolver.Match
}

// Record is the serialised form of a Row. Addresses are hex strings so that
// JSON consumers with float64 numbers keep every bit.
type Record struct {
	Query   string  `json:"query"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Size    *uint64 `json:"size,omitempty"`
	Module  string  `json:"module,omitempty"`
}

// Formatter writes rows in one output format.
type Formatter interface {
	Format(w io.Writer, rows []Row) error
}

// Options tune every formatter.
type Options struct {
	// Demangle rewrites C++ and Rust symbol names into their source form.
	Demangle bool
}

// NewFormatter creates an output formatter for the given format.
func NewFormatter(format OutputFormat, opts Options) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{opts: opts}, nil
	case FormatJSON:
		return &JSONFormatter{opts: opts}, nil
	case FormatCSV:
		return &CSVFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Name returns name as it should be displayed.
func (o Options) Name(name string) string {
	if !o.Demangle {
		return name
	}
	return demangle.Filter(name, demangle.NoClones)
}

// Record converts r for serialisation.
func (o Options) Record(r Row) Record {
	return Record{
		Query:   r.Query,
		Name:    o.Name(r.Name),
		Address: hex(r.Address),
		Size:    r.Size,
		Module:  r.Module,
	}
}

func hex(addr uint64) string {
	return "0x" + strconv.FormatUint(addr, 16)
}

func size(m resolver.Match) string {
	if !m.HasSize() {
		return "-"
	}
	return strconv.FormatUint(*m.Size, 10)
}

func multipleQueries(rows []Row) bool {
	for _, r := range rows {
		if r.Query != rows[0].Query {
			return true
		}
	}
	return false
}

// TextFormatter formats output as an aligned table.
type TextFormatter struct {
	opts Options
}

// Format implements Formatter.
// nolint: errcheck
func (f *TextFormatter) Format(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No matches found.")
		return err
	}

	withQuery := multipleQueries(rows)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if withQuery {
		fmt.Fprint(tw, "QUERY\t")
	}
	fmt.Fprintln(tw, "ADDRESS\tSIZE\tMODULE\tNAME")

	for _, r := range rows {
		if withQuery {
			fmt.Fprintf(tw, "%s\t", r.Query)
		}
		module := r.Module
		if module == "" {
			module = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", hex(r.Address), size(r.Match), module, f.opts.Name(r.Name))
	}

	return tw.Flush()
}

// JSONFormatter formats output as a JSON array.
type JSONFormatter struct {
	opts Options
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, rows []Row) error {
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, f.opts.Record(r))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// CSVFormatter formats output as CSV with a header row.
type CSVFormatter struct {
	opts Options
}

// Format implements Formatter.
func (f *CSVFormatter) Format(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"query", "name", "address", "size", "module"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range rows {
		sz := ""
		if r.HasSize() {
			sz = strconv.FormatUint(*r.Size, 10)
		}
		if err := cw.Write([]string{r.Query, f.opts.Name(r.Name), hex(r.Address), sz, r.Module}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}
