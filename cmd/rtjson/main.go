// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Program rtjson replays a JSON document from stdin through the streaming
// parser in small chunks, and prints what its subscriptions observe.
//
// Text subscriptions (--text) are written to stdout as the deltas arrive,
// followed by a newline when the subscription completes. Value subscriptions
// (--value) print each materialized value, labelled by its path. With --get,
// the whole document is kept and the value at the given dotted path (which
// may include array indices) is printed once parsing ends.
//
// Usage:
//
//	rtjson --text choices.message.content --rate 50 < response.json
//	rtjson --value user.tags,user.name --format yaml < doc.json
//	rtjson --get items.0.id < doc.json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	sp "github.com/4nd3r5on/go-strings-parser"
	"github.com/creachadair/rtjson"
	"github.com/creachadair/rtjson/ast"
	"github.com/creachadair/rtjson/ast/cursor"
	"github.com/creachadair/rtjson/internal/chunker"
	"github.com/creachadair/rtjson/observe"
	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

// config carries the settings for one run of the tool.
type config struct {
	Text    string  // list of paths to subscribe as text
	Value   string  // list of paths to subscribe as values
	Get     string  // dotted path to look up in the finished document
	Format  string  // json or yaml
	Rate    float64 // chunks per second; 0 means unlimited
	Seed    int64
	Chaos   []int
	Charset string
	Strict  bool
}

var (
	cfg     = config{Format: "json", Seed: chunker.DefaultSeed}
	verbose bool
	logCfg  = slog.HandlerOptions{Level: slog.LevelWarn}
)

func cmdLineParse() {
	pflag.StringVarP(&cfg.Text, "text", "t", "", "paths to stream as raw text (e.g. 'a.b,c')")
	pflag.StringVarP(&cfg.Value, "value", "j", "", "paths to print as materialized values")
	pflag.StringVarP(&cfg.Get, "get", "g", "", "dotted path to print from the whole document after parsing")
	pflag.StringVarP(&cfg.Format, "format", "f", cfg.Format, "value output format: json or yaml")
	pflag.Float64VarP(&cfg.Rate, "rate", "r", 0, "chunks delivered per second (0 = unlimited)")
	pflag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for chunk sizes")
	pflag.IntSliceVar(&cfg.Chaos, "chaos", chunker.DefaultChaos, "chunk sizes to choose among")
	pflag.StringVar(&cfg.Charset, "charset", "", "decode input from this character set (e.g. windows-1252)")
	pflag.BoolVar(&cfg.Strict, "strict", false, "require commas and reject trailing commas")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")
	pflag.Parse()
}

func main() {
	cmdLineParse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		logCfg.Level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &logCfg)))

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("rtjson: %v", err)
	}
}

// parsePathList parses a list of parser paths, skipping empty entries.
func parsePathList(s string) ([]rtjson.Path, error) {
	if s == "" {
		return nil, nil
	}
	elts, err := sp.Parse(s,
		sp.WithProcessFunc(
			func(element string) (processed string, skip bool, err error) {
				element = strings.TrimSpace(element)
				return element, element == "", nil
			},
		),
	)
	if err != nil {
		return nil, err
	}
	var out []rtjson.Path
	for _, elt := range elts {
		path, err := rtjson.ParsePath(elt)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", elt, err)
		}
		out = append(out, path)
	}
	return out, nil
}

// openInput returns a reader for r that decodes the named charset.
// An empty name means the input is already UTF-8.
func openInput(r io.Reader, charset string) (io.Reader, error) {
	if charset == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", charset, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// printer writes output and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(msg string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, msg, args...)
	}
}

func (p *printer) value(format string, path rtjson.Path, v ast.Value) {
	label := path.String()
	if label == "" {
		label = "$"
	}
	if format != "yaml" {
		p.printf("%s\t%s\n", label, v.JSON())
		return
	}
	data, err := yaml.Marshal(v.Plain())
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return
	}
	p.printf("--- # %s\n%s", label, data)
}

func run(ctx context.Context, cfg config, in io.Reader, out io.Writer) error {
	if cfg.Format != "json" && cfg.Format != "yaml" {
		return fmt.Errorf("unknown format %q", cfg.Format)
	}
	textPaths, err := parsePathList(cfg.Text)
	if err != nil {
		return fmt.Errorf("text paths: %w", err)
	}
	valuePaths, err := parsePathList(cfg.Value)
	if err != nil {
		return fmt.Errorf("value paths: %w", err)
	}
	if len(textPaths) == 0 && len(valuePaths) == 0 && cfg.Get == "" {
		return errors.New("nothing to do: specify --text, --value, or --get")
	}

	src, err := openInput(in, cfg.Charset)
	if err != nil {
		return err
	}
	input, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	p := rtjson.New()
	p.SetLogger(slog.Default())
	p.AllowTrailingCommas(!cfg.Strict)
	p.RequireCommas(cfg.Strict)

	w := &printer{w: out}
	for _, path := range textPaths {
		p.SubscribeText(path).Subscribe(observe.Funcs[string]{
			OnNext:     func(s string) { w.printf("%s", s) },
			OnComplete: func() { w.printf("\n") },
		})
	}
	for _, path := range valuePaths {
		p.SubscribeValue(path).Subscribe(observe.Funcs[ast.Value]{
			OnNext: func(v ast.Value) { w.value(cfg.Format, path, v) },
		})
	}
	var root ast.Value
	if cfg.Get != "" {
		p.SubscribeValue(nil).Subscribe(observe.Funcs[ast.Value]{
			OnNext: func(v ast.Value) { root = v },
		})
	}

	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.Rate > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	slog.Debug("replaying input", "bytes", len(input), "rate", cfg.Rate, "seed", cfg.Seed, "chaos", cfg.Chaos)

	chunks := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(chunks)
		gen := chunker.New(string(input), cfg.Chaos, cfg.Seed)
		return chunker.Replay(gctx, lim, gen.All(), func(chunk string) error {
			select {
			case chunks <- chunk:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	g.Go(func() error {
		for chunk := range chunks {
			if p.Done() {
				continue // drain the remainder after the document
			}
			if err := p.Feed(chunk); err != nil {
				return err
			}
		}
		return p.Close()
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Get != "" {
		if root == nil {
			return errors.New("no document to query")
		}
		var keys []any
		for _, key := range strings.Split(cfg.Get, ".") {
			keys = append(keys, key)
		}
		c := cursor.New(root).Down(keys...)
		if err := c.Err(); err != nil {
			return fmt.Errorf("get %q: %w", cfg.Get, err)
		}
		w.value(cfg.Format, rtjson.Path(strings.Split(cfg.Get, ".")), c.Value())
	}
	return w.err
}
