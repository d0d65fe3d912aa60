// Command irprobe lists the instrumentation points resolved for LLVM IR
// assembly files.
//
// Usage:
//
//	irprobe --pattern '^buf' program.ll
//
// For each function it prints the matching stack allocations and stores in
// LLVM assembly syntax, plus the resolved field-index table. The --debug
// flag additionally dumps every per-instruction scan decision for functions
// whose name matches the given expression.
package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/irprobe/irprobe/internal/match"
	"github.com/irprobe/irprobe/internal/trace"
	"github.com/irprobe/irprobe/internal/walk"
)

type options struct {
	pattern  string
	funcExpr string
	allocas  bool
	stores   bool
	fields   bool
	debug    string
	logLevel string
}

func main() {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "irprobe [flags] file.ll...",
		Short:        "list instrumentation points resolved for LLVM IR assembly files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, os.Stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.pattern, "pattern", "p", "", "selection pattern (Go regexp, substring search)")
	flags.StringVar(&opts.funcExpr, "func", "", "only inspect functions whose name matches this regexp")
	flags.BoolVar(&opts.allocas, "allocas", true, "scan stack allocations by name")
	flags.BoolVar(&opts.stores, "stores", true, "scan stores by destination name")
	flags.BoolVar(&opts.fields, "fields", true, "resolve field indices from element-address names")
	flags.StringVar(&opts.debug, "debug", "", "dump scan decisions for functions matching this regexp")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(opts *options, files []string, out io.Writer) error {
	logger := newLogger(opts.logLevel)

	matcher, err := match.Compile(opts.pattern)
	if err != nil {
		return err
	}

	var funcFilter, debugFilter *regexp.Regexp
	if opts.funcExpr != "" {
		if funcFilter, err = regexp.Compile(opts.funcExpr); err != nil {
			return errors.Wrap(err, "compile --func filter")
		}
	}
	if opts.debug != "" {
		if debugFilter, err = regexp.Compile(opts.debug); err != nil {
			return errors.Wrap(err, "compile --debug filter")
		}
	}

	for _, path := range files {
		logger.Debug().Str("file", path).Msg("loading module")
		m, err := asm.ParseFile(path)
		if err != nil {
			return errors.Wrapf(err, "load %s", path)
		}
		logger.Info().Str("file", path).Int("funcs", len(m.Funcs)).Msg("module loaded")

		for _, f := range m.Funcs {
			// Declarations have no body to scan.
			if len(f.Blocks) == 0 {
				continue
			}
			if funcFilter != nil && !funcFilter.MatchString(f.Name()) {
				continue
			}
			inspect(f, matcher, debugFilter, opts, logger, out)
		}
	}
	return nil
}

// inspect runs the enabled scanners over one function and prints the report.
func inspect(f *ir.Func, matcher *match.Matcher, debugFilter *regexp.Regexp, opts *options, logger zerolog.Logger, out io.Writer) {
	var collector *trace.Collector
	if debugFilter != nil && debugFilter.MatchString(f.Name()) {
		collector = trace.NewCollector()
	}
	ctx := &walk.Context{Matcher: matcher, Trace: collector}

	var allocas, stores []ir.Instruction
	indices := make(map[string]int64)

	var handlers []walk.Handler
	if opts.allocas {
		handlers = append(handlers, &walk.AllocaScanner{Out: &allocas})
	}
	if opts.stores {
		handlers = append(handlers, &walk.StoreScanner{Out: &stores})
	}
	if opts.fields {
		handlers = append(handlers, &walk.FieldIndexScanner{Out: indices})
	}
	walk.Func(f, ctx, handlers...)

	if collector != nil {
		fmt.Fprint(os.Stderr, trace.Format(f.Name(), collector.Decisions()))
	}

	if len(allocas) == 0 && len(stores) == 0 && len(indices) == 0 {
		logger.Debug().Str("func", f.Name()).Msg("no instrumentation points")
		return
	}

	fmt.Fprintf(out, "@%s\n", f.Name())
	if len(allocas) > 0 {
		fmt.Fprintln(out, "  allocas:")
		for _, inst := range allocas {
			fmt.Fprintf(out, "    %s\n", inst.LLString())
		}
	}
	if len(stores) > 0 {
		fmt.Fprintln(out, "  stores:")
		for _, inst := range stores {
			fmt.Fprintf(out, "    %s\n", inst.LLString())
		}
	}
	if len(indices) > 0 {
		fmt.Fprintln(out, "  fields:")
		names := make([]string, 0, len(indices))
		for name := range indices {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "    %s = %d\n", name, indices[name])
		}
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
