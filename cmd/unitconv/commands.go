package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"unitconv"
	"unitconv/catalogdb"
	unitconvmsgpack "unitconv/msgpack"
	unitconvpb "unitconv/protobuf"
)

const queryTimeout = 5 * time.Second

type command struct {
	usage   string
	help    string
	minArgs int
	run     func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{
	"list", "units", "convert", "session", "batch", "serve", "query", "rates",
	"export-sqlite", "export-msgpack", "export-protobuf", "calc",
}

var commands = map[string]command{
	"list":            {"", "list categories", 0, cmdList},
	"units":           {"<category>", "list the units of a category", 1, cmdUnits},
	"convert":         {"<category> <from> <to> <value>", "convert one value", 4, cmdConvert},
	"session":         {"<category>", "interactive converter reading stdin", 1, cmdSession},
	"batch":           {"", "convert msgpack requests from stdin", 0, cmdBatch},
	"serve":           {"<addr>", "answer msgpack requests over UDP", 1, cmdServe},
	"query":           {"<addr> <category> <from> <to> <value>", "send one request to a server", 5, cmdQuery},
	"rates":           {"", "show the exchange rate table in use", 0, cmdRates},
	"export-sqlite":   {"<path>", "write the catalog to a SQLite database", 1, cmdExportSQLite},
	"export-msgpack":  {"<path>", "write the catalog as a msgpack snapshot", 1, cmdExportMsgpack},
	"export-protobuf": {"<path>", "write the catalog as a protobuf snapshot", 1, cmdExportProtobuf},
	"calc":            {"<calculator> [args]", "run a calculator, see calc help", 1, cmdCalc},
}

func cmdList(_ context.Context, a *app, _ []string) error {
	for _, key := range a.catalog.Categories() {
		c, err := a.catalog.Category(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%-13s %s %s\n", key, c.Icon, c.Name)
	}
	return nil
}

func cmdUnits(ctx context.Context, a *app, args []string) error {
	cat := a.catalogFor(ctx, args[0])
	c, err := cat.Category(args[0])
	if err != nil {
		return err
	}
	for _, u := range c.Units {
		if c.Kind() == unitconv.KindLinear {
			fmt.Fprintf(a.stdout, "%-14s %s (%s)\n", u.Key, u.Name, unitconv.FormatPrecision(u.ToBase, 6))
		} else {
			fmt.Fprintf(a.stdout, "%-14s %s\n", u.Key, u.Name)
		}
	}
	if c.Note != "" {
		fmt.Fprintln(a.stdout, c.Note)
	}
	return nil
}

func (a *app) newSession(cat *unitconv.Catalog, category string, opts ...unitconv.SessionOption) (*unitconv.Session, error) {
	opts = append([]unitconv.SessionOption{
		unitconv.WithMetrics(a.metrics),
		unitconv.WithLogger(a.logger),
	}, opts...)
	return unitconv.NewSession(cat, category, opts...)
}

func cmdConvert(ctx context.Context, a *app, args []string) error {
	s, err := a.newSession(a.catalogFor(ctx, args[0]), args[0])
	if err != nil {
		return err
	}
	if err := s.SetFromUnit(args[1]); err != nil {
		return err
	}
	if err := s.SetToUnit(args[2]); err != nil {
		return err
	}
	s.SetInput(args[3])

	st := s.State()
	if st.ResultText == unitconv.Placeholder {
		fmt.Fprintln(a.stdout, st.Output)
		return nil
	}
	fmt.Fprintln(a.stdout, st.ResultText)
	return nil
}

// cmdSession runs one converter fed line by line. Plain lines set the
// input; lines starting with ':' change units or category.
func cmdSession(ctx context.Context, a *app, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.loader.Start(ctx)
	done := a.loader.Done()

	out := a.stdout
	s, err := a.newSession(a.catalog, args[0], a.loader.SessionOption(), unitconv.WithHook(func(st unitconv.State) {
		fmt.Fprintln(out, st.ResultText)
	}))
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			done = nil
			if err := s.SetCatalog(a.loader.Catalog(a.catalog)); err != nil {
				a.logger.Warn("catalog refresh failed", "error", err)
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := sessionCommand(s, line)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func sessionCommand(s *unitconv.Session, line string) (quit bool, err error) {
	if !strings.HasPrefix(line, ":") {
		s.SetInput(line)
		return false, nil
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "from":
		return false, s.SetFromUnit(arg)
	case "to":
		return false, s.SetToUnit(arg)
	case "category":
		return false, s.SetCategory(arg)
	case "swap":
		s.Swap()
		return false, nil
	case "quit", "q":
		return true, nil
	}
	return false, fmt.Errorf("unknown session command %q", name)
}

func cmdBatch(ctx context.Context, a *app, _ []string) error {
	var rb unitconvmsgpack.RequestBuffer
	cat := a.catalog
	rated := false
	w := bufio.NewWriter(a.stdout)
	defer w.Flush()

	buf := make([]byte, 4096)
	for {
		n, readErr := a.stdin.Read(buf)
		reqs, err := rb.Feed(buf[:n])
		for _, req := range reqs {
			if req.Category == "currency" && !rated {
				cat, rated = a.ratedCatalog(ctx), true
			}
			resp := unitconvmsgpack.Handle(cat, req)
			if resp.Error != "" {
				a.metrics.RecordConversion(req.Category, unitconv.ResultUndefined)
				fmt.Fprintf(w, "%s\t%s\terror: %s\n", resp.ID, resp.Output, resp.Error)
				continue
			}
			a.metrics.RecordConversion(req.Category, unitconv.ResultOK)
			fmt.Fprintf(w, "%s\t%s\n", resp.ID, resp.Output)
		}
		if err != nil {
			return fmt.Errorf("decode request: %w", err)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	if rb.Buffered() > 0 {
		return fmt.Errorf("truncated request stream: %d trailing bytes", rb.Buffered())
	}
	return nil
}

func cmdServe(ctx context.Context, a *app, args []string) error {
	conn, err := net.ListenPacket("udp", args[0])
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	var current atomic.Pointer[unitconv.Catalog]
	current.Store(a.catalog)
	a.loader.Start(ctx)
	go func() {
		select {
		case <-a.loader.Done():
			current.Store(a.loader.Catalog(a.catalog))
		case <-ctx.Done():
		}
	}()

	srv := &unitconvmsgpack.Server{Catalog: current.Load, Logger: a.logger, Metrics: a.metrics}
	return srv.Serve(ctx, conn)
}

func cmdQuery(ctx context.Context, a *app, args []string) error {
	conn, err := net.Dial("udp", args[0])
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	c := &unitconvmsgpack.Client{Conn: conn, Timeout: queryTimeout}
	resps, err := c.Do(ctx, &unitconvmsgpack.Request{Category: args[1], From: args[2], To: args[3], Value: args[4]})
	if err != nil {
		return err
	}
	if resps[0].Error != "" {
		return errors.New(resps[0].Error)
	}
	fmt.Fprintln(a.stdout, resps[0].Output)
	return nil
}

func cmdRates(ctx context.Context, a *app, _ []string) error {
	t := a.loader.Load(ctx)
	fmt.Fprintf(a.stdout, "source: %s, base: %s", a.loader.Status(), t.Base)
	if !t.Updated.IsZero() {
		fmt.Fprintf(a.stdout, ", updated: %s", t.Updated.UTC().Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintln(a.stdout)
	for _, code := range slices.Sorted(maps.Keys(t.Rates)) {
		fmt.Fprintf(a.stdout, "%s %s\n", code, unitconv.FormatPrecision(t.Rates[code], 6))
	}
	return nil
}

func cmdExportSQLite(ctx context.Context, a *app, args []string) error {
	store, err := catalogdb.Open(args[0])
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, a.catalog); err != nil {
		return err
	}
	a.logger.Info("catalog exported", "format", "sqlite", "path", args[0], "categories", len(a.catalog.Categories()))
	return nil
}

func cmdExportMsgpack(_ context.Context, a *app, args []string) error {
	data, err := unitconvmsgpack.MarshalCatalog(a.catalog)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	a.logger.Info("catalog exported", "format", "msgpack", "path", args[0], "bytes", len(data))
	return nil
}

func cmdExportProtobuf(_ context.Context, a *app, args []string) error {
	data := unitconvpb.MarshalCatalog(a.catalog)
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	a.logger.Info("catalog exported", "format", "protobuf", "path", args[0], "bytes", len(data))
	return nil
}
