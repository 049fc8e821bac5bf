package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/schematic/internal/diff"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/schematic"
	"github.com/zjrosen/schematic/internal/server"
	"github.com/zjrosen/schematic/internal/watcher"
)

var (
	watchMetricsAddr string
	watchDebounce    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reload a document whenever it changes",
	Long: `Watch a document and print what changed each time it is saved.

With --metrics-addr (or watch.metrics_addr) an HTTP server exposes:
  /metrics             Prometheus metrics
  /documents           the current summary as JSON
  /documents/{name}    one document by file name
  /healthz

Examples:
  schematic watch amp.yaml
  schematic watch amp.schdb --metrics-addr localhost:9090`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve /metrics and /documents on this address (overrides config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before reloading (overrides config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := watchMetricsAddr
	if !cmd.Flags().Changed("metrics-addr") {
		addr = cfg.Watch.MetricsAddr
	}
	debounce := watchDebounce
	if !cmd.Flags().Changed("debounce") {
		debounce = cfg.Watch.Debounce
	}

	session := &watchSession{path: args[0], out: cmd.OutOrStdout(), snaps: server.NewSnapshots()}
	if err := session.reload(ctx); err != nil {
		return err
	}
	defer session.close()

	if addr != "" {
		shutdownServer, err := serve(addr, session.snaps, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer shutdownServer()
	}

	w, err := watcher.New(session.path, debounce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()
	changes, err := w.Start()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", session.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := session.reload(ctx); err != nil {
				// Keep serving the last good document; the next save may fix it.
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Reload failed: %v\n", err)
			}
		}
	}
}

// watchSession owns the current document. Only the watch loop touches it.
type watchSession struct {
	path  string
	out   io.Writer
	snaps *server.Snapshots

	doc  *schematic.Document
	last schematic.Summary
}

func (s *watchSession) reload(ctx context.Context) error {
	doc, err := openDocument(ctx, s.path)
	if err != nil {
		return err
	}
	summary := doc.Summary()

	if s.doc == nil {
		renderSummary(s.out, summary)
	} else {
		s.doc.Close()
		changes := diff.Lines(s.last.Lines(), summary.Lines())
		if diff.Changed(changes) {
			_, _ = fmt.Fprintf(s.out, "\n%s changed:\n", s.path)
			renderDiff(s.out, onlyChanges(changes))
		}
	}

	s.doc, s.last = doc, summary
	s.snaps.Put(s.path, summary)
	log.Info(log.CatCLI, "Reloaded document", "path", s.path, "items", summary.Items)
	return nil
}

func (s *watchSession) close() {
	if s.doc != nil {
		s.doc.Close()
		s.doc = nil
	}
	s.snaps.Remove(s.path)
}

func onlyChanges(lines []diff.Line) []diff.Line {
	out := make([]diff.Line, 0, len(lines))
	for _, l := range lines {
		if l.Op != diff.Equal {
			out = append(out, l)
		}
	}
	return out
}

// serve starts the HTTP server and returns a function that stops it.
func serve(addr string, snaps *server.Snapshots, out io.Writer) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           server.NewRouter(collector, snaps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorErr(log.CatCLI, "HTTP server failed", err, "addr", addr)
		}
	}()
	_, _ = fmt.Fprintf(out, "Serving metrics on http://%s/metrics\n", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatCLI, "HTTP server shutdown failed", err)
		}
	}, nil
}
