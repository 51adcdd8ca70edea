package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	dbParquet "github.com/kailas-cloud/noveldex/internal/db/parquet"
	"github.com/kailas-cloud/noveldex/internal/domain/page"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
	logpkg "github.com/kailas-cloud/noveldex/internal/logger"
	"github.com/kailas-cloud/noveldex/internal/repository/detail"
	"github.com/kailas-cloud/noveldex/internal/repository/index"
	"github.com/kailas-cloud/noveldex/internal/usecase/browse"
)

const defaultStorePattern = "data/*.parquet"

var errFlagParse = errors.New("invalid arguments")

// Options are the parsed command line flags.
type Options struct {
	Store       string
	Genre       string
	Keyword     string
	MinScore    int64
	Page        int
	PageSize    int
	Width       int
	Concurrency int
	NoSynopsis  bool
	ListGenres  bool
	LogLevel    string
}

// NewFlagSet returns the flag set of noveldex-cli bound to opts.
func NewFlagSet(opts *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("noveldex-cli", flag.ContinueOnError)
	fs.StringVar(&opts.Store, "store", defaultStorePattern, "Glob matching the parquet partitions")
	fs.StringVar(&opts.Genre, "genre", query.GenreAll, "Exact genre to keep (\"all\" disables)")
	fs.StringVarP(&opts.Keyword, "keyword", "k", "", "Case-sensitive substring of title or keywords")
	fs.Int64Var(&opts.MinScore, "min-score", 0, "Minimum popularity score (0 disables)")
	fs.IntVarP(&opts.Page, "page", "p", 1, "Page number, clamped into range")
	fs.IntVar(&opts.PageSize, "page-size", page.DefaultSize, "Rows per page")
	fs.IntVarP(&opts.Width, "width", "w", DefaultWidth, "Table width in terminal columns")
	fs.IntVar(&opts.Concurrency, "scan-concurrency", 4, "Partitions read in parallel while indexing")
	fs.BoolVar(&opts.NoSynopsis, "no-synopsis", false, "Hide the synopsis line under each row")
	fs.BoolVar(&opts.ListGenres, "genres", false, "List the available genres and exit")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Diagnostic log level (debug|info|warn|error)")
	return fs
}

// Parse parses args into Options.
func Parse(args []string, errOut io.Writer) (Options, error) {
	var opts Options
	fs := NewFlagSet(&opts)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errFlagParse, err)
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected argument %q", errFlagParse, fs.Arg(0))
	}
	if opts.PageSize <= 0 {
		return opts, fmt.Errorf("%w: --page-size must be positive", errFlagParse)
	}
	return opts, nil
}

// Run runs one browse pass over the store selected by opts and renders it.
// Any error is terminal; a detail failure is not an error and only prints a warning.
func Run(ctx context.Context, opts Options, out, errOut io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx = logpkg.ContextWithLogger(ctx, logger)

	store, err := dbParquet.NewStore(dbParquet.Config{
		Pattern:         opts.Store,
		ScanConcurrency: opts.Concurrency,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	cache := index.New(store, index.DefaultTTL, nil, logger)
	svc := browse.New(cache, detail.New(store)).WithPageSize(opts.PageSize)
	renderer := NewRenderer(out, errOut, opts.Width).WithSynopsis(!opts.NoSynopsis)

	if opts.ListGenres {
		genres, err := svc.Genres(ctx)
		if err != nil {
			return fmt.Errorf("list genres: %w", err)
		}
		renderer.RenderGenres(genres)
		return nil
	}

	f, err := query.NewFilter(opts.Genre, opts.Keyword, opts.MinScore)
	if err != nil {
		return fmt.Errorf("build filter: %w", err)
	}

	start := time.Now()
	v, err := svc.Browse(ctx, query.New(f, opts.Page))
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	logger.Debug("Browse finished",
		zap.Int("total", v.Total),
		zap.Int("page", v.Page),
		zap.Duration("took", time.Since(start)),
	)

	renderer.Render(v)
	return nil
}
