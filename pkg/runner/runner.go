package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/yaklabco/unitex/internal/logging"
	"github.com/yaklabco/unitex/pkg/convert"
)

// Runner converts many files with one convert.Pipeline.
type Runner struct {
	Pipeline *convert.Pipeline
}

// New returns a Runner using pipeline.
func New(pipeline *convert.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files under opts.Paths and converts them in place on a
// bounded worker pool. Outcomes are reported in discovery order. A failing
// file does not stop the others.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts.Pipeline)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}
	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	opts convert.PipelineOptions,
) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		logger := logging.ForFile(ctx, path)
		outcome := FileOutcome{Path: path}
		fr, err := r.Pipeline.ProcessFile(ctx, path, opts)
		if err != nil {
			outcome.Error = err
			logger.Debug("conversion failed", logging.FieldError, err)
		} else {
			outcome.Result = fr
			logger.Debug("file processed",
				logging.FieldModified, fr.Modified,
				logging.FieldSkipReason, fr.SkipReason,
				logging.FieldLines, fr.Stats.Lines,
			)
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// Stream converts inputs one after another, in order, to w. StdinPath, or an
// empty list, reads stdin. The first error stops the stream.
func Stream(
	ctx context.Context,
	conv *convert.Converter,
	inputs []string,
	stdin io.Reader,
	w io.Writer,
) (convert.Stats, error) {
	if len(inputs) == 0 {
		inputs = []string{StdinPath}
	}

	var total convert.Stats
	for _, input := range inputs {
		stats, err := streamOne(ctx, conv, input, stdin, w)
		total.Add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func streamOne(
	ctx context.Context,
	conv *convert.Converter,
	input string,
	stdin io.Reader,
	w io.Writer,
) (convert.Stats, error) {
	logging.ForFile(ctx, input).Debug("converting to output")

	if input == StdinPath {
		stats, err := conv.Convert(ctx, stdin, w)
		if err != nil {
			return stats, fmt.Errorf("<stdin>: %w", err)
		}
		return stats, nil
	}

	f, err := os.Open(input)
	if err != nil {
		return convert.Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	stats, err := conv.Convert(ctx, f, w)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", input, err)
	}
	return stats, nil
}
