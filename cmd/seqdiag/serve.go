package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rendis/seqdiag/internal/panel"
	"github.com/rendis/seqdiag/pkg/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var httpMode bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the seqdiag tools over MCP",
		Long: `Serve the seqdiag tools over MCP on stdio.

With --http, serve the live preview panel, the JSON API under /api and the
MCP streamable HTTP transport under /mcp instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer()
			if err != nil {
				return err
			}
			srv, err := mcp.NewSeqdiagServer(mcp.SeqdiagServerDeps{Renderer: r, Logger: a.logger, Version: version})
			if err != nil {
				return err
			}

			if !httpMode {
				return srv.Serve(cmd.Context())
			}

			p := panel.NewPanelServer(panel.PanelDeps{
				Renderer: r,
				MCP:      srv.HTTPHandler(),
				Logger:   a.logger,
				Version:  version,
			})
			return a.serveHTTP(cmd.Context(), p.Handler())
		},
	}

	cmd.Flags().BoolVar(&httpMode, "http", false, "serve the preview panel and MCP over HTTP")
	cmd.Flags().StringVar(&a.cfg.HTTPAddr, "addr", a.cfg.HTTPAddr, "HTTP listen address")
	return cmd
}

// serveHTTP runs h until ctx is cancelled, then shuts down gracefully.
func (a *app) serveHTTP(ctx context.Context, h http.Handler) error {
	httpSrv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "http server listening", "addr", a.cfg.HTTPAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.InfoContext(ctx, "http server shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
