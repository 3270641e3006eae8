package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotriple/internal/config"
	"github.com/alexiusacademia/gotriple/internal/engine"
	"github.com/alexiusacademia/gotriple/internal/version"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve integral evaluation over HTTP",
	Long: `Start an HTTP server that evaluates integrals sent as JSON.

Endpoints:
  POST /evaluate  evaluate a problem, same fields as a --file problem
  GET  /health    liveness check

Every request is bounded by engine.timeout from the config file.

Example:
  gotriple serve --addr :8080
  curl -d '{"function":"1","system":"spherical",
            "bounds":{"rho":["0","1"],"phi":["0","pi"],"theta":["0","2*pi"]}}' \
       localhost:8080/evaluate`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	handler, err := newServeMux(cfg)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout.Duration,
		WriteTimeout:      cfg.Server.WriteTimeout.Duration,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("gotriple server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// newServeMux builds the HTTP handlers from the configuration.
func newServeMux(c *config.Config) (http.Handler, error) {
	opts, err := engine.OptionsFromConfig(c)
	if err != nil {
		return nil, err
	}
	precision := c.Output.Precision
	maxBody := c.Server.MaxRequestBytes

	mux := http.NewServeMux()

	// POST /evaluate: evaluate one problem
	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("panic in /evaluate: %v\n%s", rec, debug.Stack())
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req engine.Request
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		start := time.Now()
		res := engine.Evaluate(r.Context(), &req, opts)
		entry := log.WithFields(log.Fields{
			"system":   req.System,
			"method":   res.Method(),
			"duration": time.Since(start).String(),
		})
		status := http.StatusOK
		if res.Failure != nil {
			entry = entry.WithField("kind", res.Failure.Kind.String())
			status = statusFor(res.Failure.Kind)
		}
		entry.Info("evaluate")
		writeJSON(w, status, res.Report(precision))
	})

	// GET /health: liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": version.Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return mux, nil
}

// statusFor maps a failure kind onto an HTTP status. Problems with the
// request are 422; failures while integrating are reported with 200 so the
// report body carries the detail.
func statusFor(kind engine.Kind) int {
	switch kind {
	case engine.KindParse, engine.KindUnsupportedSystem, engine.KindInvalidSpec, engine.KindBoundDependency:
		return http.StatusUnprocessableEntity
	case engine.KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
