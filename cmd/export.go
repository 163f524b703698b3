package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sheetexport/columns"
	"sheetexport/cursor"
	"sheetexport/logging"
	"sheetexport/source"
	"sheetexport/spreadsheet"
)

type exportOptions struct {
	table      string
	query      string
	where      string
	columns    string
	output     string
	sheet      string
	batchSize  int
	printQuery bool
	quiet      bool
}

var exportOpts exportOptions

var exportCmd = &cobra.Command{
	Use:   "export [table]",
	Short: "Export a table or query to an xlsx spreadsheet",
	Long: `Export the rows of a table, or of a raw SQL query, to an xlsx file.

The first row holds the column titles in bold with a grey fill and borders.
Columns come from --columns (YAML list of key/title/type, or one key per line)
or, without it, from the result set itself.`,
	Example: `  sheetexport export users --output users.xlsx
  sheetexport export --table sales.orders --where "status = 'open'" --columns orders.yaml
  sheetexport export --query "SELECT id, total FROM orders" --batch-size 500`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := exportOpts
		if len(args) == 1 {
			opts.table = args[0]
		}
		if err := opts.validate(); err != nil {
			return err
		}
		size, err := resolveBatchSize(opts.batchSize)
		if err != nil {
			return err
		}
		opts.batchSize = size
		return withDB("", func(ctx context.Context, conn source.Conn) error {
			return withTableHint(runExport(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), conn, opts))
		})
	},
}

func (o exportOptions) validate() error {
	hasTable := strings.TrimSpace(o.table) != ""
	hasQuery := strings.TrimSpace(o.query) != ""
	switch {
	case hasTable && hasQuery:
		return errors.New("provide either a table or --query, not both")
	case !hasTable && !hasQuery:
		return errors.New("provide a table name or --query")
	case hasQuery && o.where != "":
		return errors.New("--where can only be used with a table")
	}
	return nil
}

// outputPath defaults to <table>.xlsx, or export.xlsx for raw queries.
func (o exportOptions) outputPath() string {
	if o.output != "" {
		return o.output
	}
	if o.table != "" {
		return strings.ToLower(o.table) + ".xlsx"
	}
	return "export.xlsx"
}

// resolveBatchSize prefers the flag, then EXPORT_BATCH_SIZE, then the default.
func resolveBatchSize(flag int) (int, error) {
	if flag > 0 {
		return flag, nil
	}
	if flag < 0 {
		return 0, fmt.Errorf("invalid batch size %d: must be positive", flag)
	}
	env := strings.TrimSpace(os.Getenv("EXPORT_BATCH_SIZE"))
	if env == "" {
		return cursor.DefaultBatchSize, nil
	}
	n, err := strconv.Atoi(env)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid EXPORT_BATCH_SIZE %q: must be a positive integer", env)
	}
	return n, nil
}

type exportSource interface {
	spreadsheet.RowSource
	Query() (string, error)
	ColumnNames() ([]string, error)
}

// buildSource returns the row source and the column mapper for opts. Without
// a columns file the mapper is built from the result set's column names.
func buildSource(conn source.Conn, opts exportOptions) (exportSource, *columns.Mapper, error) {
	var m *columns.Mapper
	if opts.columns != "" {
		var err error
		if m, err = columns.Load(opts.columns); err != nil {
			return nil, nil, err
		}
	}

	var src exportSource
	if opts.query != "" {
		rs, err := source.NewRawSource(conn, opts.query)
		if err != nil {
			return nil, nil, err
		}
		src = rs
	} else {
		var srcOpts []source.Option
		if opts.where != "" {
			srcOpts = append(srcOpts, source.WithWhere(opts.where))
		}
		ts, err := source.NewTableSource(conn, opts.table, m, srcOpts...)
		if err != nil {
			return nil, nil, err
		}
		src = ts
	}

	if m == nil {
		names, err := src.ColumnNames()
		if err != nil {
			return nil, nil, err
		}
		if m, err = columns.FromNames(names); err != nil {
			return nil, nil, err
		}
	}
	return src, m, nil
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

func runExport(ctx context.Context, out, errOut io.Writer, conn source.Conn, opts exportOptions) error {
	src, m, err := buildSource(conn, opts)
	if err != nil {
		return err
	}
	if opts.printQuery {
		q, err := src.Query()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, q)
		return nil
	}

	output := opts.outputPath()
	log := logging.WithFields("output", output, "batch_size", opts.batchSize)
	if opts.table != "" {
		log = log.With("table", opts.table)
	}

	g := spreadsheet.NewGenerator(
		spreadsheet.WithBatchSize(opts.batchSize),
		spreadsheet.WithSheetName(opts.sheet),
	)
	if !opts.quiet {
		bar := newProgressBar(errOut)
		g.OnProgress(func(e *spreadsheet.ProgressEvent) error {
			return bar.Set(int(e.Progress))
		})
	}

	start := time.Now()
	log.Info("export started", "columns", m.Len())
	wb, err := g.Generate(src, m)
	if err != nil {
		return err
	}
	defer wb.Close()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export interrupted: %w", err)
	}
	if err := g.Finalize(wb, output); err != nil {
		return err
	}
	elapsed := time.Since(start)
	log.Info("export finished", "elapsed", elapsed)
	fmt.Fprintf(out, "Data written to %s in %s\n", output, elapsed.Round(time.Millisecond))
	return nil
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.table, "table", "t", "", "Table or view to export (may be schema-qualified)")
	f.StringVarP(&exportOpts.query, "query", "q", "", "Raw SQL query to export instead of a table (a trailing ORDER BY is ignored when counting rows)")
	f.StringVarP(&exportOpts.where, "where", "w", "", "WHERE clause applied to the table (without the WHERE keyword)")
	f.StringVarP(&exportOpts.columns, "columns", "c", "", "Columns file: YAML key/title/type list, or one key per line")
	f.StringVarP(&exportOpts.output, "output", "o", "", "Output xlsx path (default <table>.xlsx or export.xlsx)")
	f.StringVar(&exportOpts.sheet, "sheet", "", "Worksheet name (default Sheet1)")
	f.IntVarP(&exportOpts.batchSize, "batch-size", "b", 0, "Rows fetched per batch (env: EXPORT_BATCH_SIZE, default 100)")
	f.BoolVar(&exportOpts.printQuery, "print-query", false, "Print the SELECT statement and exit")
	f.BoolVar(&exportOpts.quiet, "quiet", false, "Do not render the progress bar")
	rootCmd.AddCommand(exportCmd)
}
