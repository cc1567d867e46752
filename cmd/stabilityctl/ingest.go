package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/corestability/engine/consumerstore"
	"github.com/corestability/engine/internal/config"
	"github.com/corestability/engine/internal/telemetry"
	"github.com/corestability/engine/orchestrator"
	"github.com/corestability/engine/scalar"
	"github.com/corestability/engine/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIngestCmd() *cobra.Command {
	var (
		schemaPath string
		inputPath  string
		configPath string
		batchSize  int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a newline-delimited JSON row stream through the orchestrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), schemaPath, inputPath, configPath, batchSize)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the schema YAML file (required)")
	cmd.Flags().StringVar(&inputPath, "input", "", "path to a newline-delimited JSON row file (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to an engine config YAML file (optional)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 256, "rows per ingest batch")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runIngest(ctx context.Context, schemaPath, inputPath, configPath string, batchSize int) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log, err := telemetry.NewLogger(telemetry.LogConfig{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
	})
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	schema, err := wire.LoadSchemaFile(schemaPath)
	if err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				log.Warn("metrics server stopped", zap.Error(serveErr))
			}
		}()
		defer srv.Close() //nolint:errcheck
	}

	rt := orchestrator.NewRuntime(
		scalar.PixelSize(cfg.Layout.RowHeightPx),
		cfg.Orchestrator.CommandBufferSize,
		log,
		metrics,
	)

	rt.Commands <- orchestrator.InitCommand{
		Schema:         schema,
		CharWidthHint:  scalar.PixelSize(cfg.Layout.CharWidthHintPx),
		ViewportHeight: scalar.PixelSize(cfg.Layout.ViewportHeightPx),
	}

	store := consumerstore.New()
	store.Subscribe(func(state consumerstore.State) {
		log.Info("state updated", zap.String("status", state.Status.String()), zap.Uint64("total_rows", uint64(state.TotalRows)))
	})

	source := encodedSource(schema, readBatches(inputPath, batchSize))

	onEvent := func(ev orchestrator.Event) {
		store.Dispatch(ev)

		switch e := ev.(type) {
		case orchestrator.IngestAckEvent:
			fmt.Printf("INGEST_ACK seq=%d\n", e.Seq)
		case orchestrator.IngestErrorEvent:
			fmt.Printf("INGEST_ERROR seq=%d message=%q fatal=%v\n", e.Seq, e.Message, e.Fatal)
		case orchestrator.TotalRowsUpdatedEvent:
			fmt.Printf("TOTAL_ROWS_UPDATED total=%d\n", e.TotalRows)
		}
	}

	if err := rt.Run(ctx, source, onEvent); err != nil {
		store.SetStatus(consumerstore.Error, err.Error())
		return err
	}

	store.SetStatus(consumerstore.Complete, "")

	return nil
}
