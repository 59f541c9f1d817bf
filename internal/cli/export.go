package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tgienger/tim/internal/db"
	"github.com/tgienger/tim/internal/models"
	"gopkg.in/yaml.v3"

	flag "github.com/spf13/pflag"
)

type exportOptions struct {
	partial  bool
	rng      string
	billed   bool
	unbilled bool
	format   string
}

// exportRecord is the machine-readable form of a work record
type exportRecord struct {
	ID      int64      `json:"id" yaml:"id"`
	Tags    []string   `json:"tags" yaml:"tags"`
	Start   time.Time  `json:"start" yaml:"start"`
	End     *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	Seconds int64      `json:"seconds" yaml:"seconds"`
	Bill    *string    `json:"bill,omitempty" yaml:"bill,omitempty"`
	Amended bool       `json:"amended" yaml:"amended"`
}

type exportLog struct {
	At      time.Time      `json:"at" yaml:"at"`
	Range   db.Range       `json:"range" yaml:"range"`
	Seconds int64          `json:"seconds" yaml:"seconds"`
	Records []exportRecord `json:"records" yaml:"records"`
}

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	var opts exportOptions

	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	flags.BoolVarP(&opts.partial, "partial", "p", false, "don't require whole tag matches for filtering")
	flags.StringVarP(&opts.rng, "range", "r", string(db.RangeAll), "the range to export: today, week, month, year or all")
	flags.BoolVarP(&opts.billed, "billed", "B", false, "export billed work only")
	flags.BoolVarP(&opts.unbilled, "unbilled", "b", false, "export unbilled work only")
	flags.StringVar(&opts.format, "format", "json", "output format: json or yaml")

	return &Command{
		Flags: flags,
		Usage: "export [tags...] [flags]",
		Short: "Dump work records as JSON or YAML",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return a.execExport(ctx, o, args, opts)
		},
	}
}

func (a *app) execExport(ctx context.Context, o *IO, args []string, opts exportOptions) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("%w %q (want json or yaml)", ErrUnknownFormat, opts.format)
	}

	q, err := logQuery(opts.rng, args, opts.partial, opts.billed, opts.unbilled)
	if err != nil {
		return err
	}

	store, err := a.store()
	if err != nil {
		return err
	}

	log, err := store.List(ctx, q)
	if err != nil {
		return err
	}

	doc := toExport(log, q.Range)

	if opts.format == "yaml" {
		enc := yaml.NewEncoder(o.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func toExport(log models.Log, r db.Range) exportLog {
	doc := exportLog{
		At:      log.At,
		Range:   r,
		Seconds: int64(log.Total() / time.Second),
		Records: make([]exportRecord, 0, len(log.Records)),
	}

	for _, rec := range log.Records {
		tags := rec.TagList()
		if tags == nil {
			tags = []string{}
		}
		doc.Records = append(doc.Records, exportRecord{
			ID:      rec.ID,
			Tags:    tags,
			Start:   rec.Start,
			End:     rec.End,
			Seconds: int64(rec.Duration(log.At) / time.Second),
			Bill:    rec.Bill,
			Amended: rec.Amended,
		})
	}
	return doc
}
