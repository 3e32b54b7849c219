package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tckz/visitor-counter/internal/config"
	"github.com/tckz/visitor-counter/internal/counter"
	"github.com/tckz/visitor-counter/internal/httpapi"
	"github.com/tckz/visitor-counter/internal/log"
	"github.com/tckz/visitor-counter/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
	cfg     config.Config
)

var (
	optListen   = flag.String("listen", "", "addr:port to listen (default $COUNTER_LISTEN or :8080)")
	optLogLevel = flag.String("log-level", "", "debug|info|warn|error (default $COUNTER_LOG_LEVEL or info)")
	optBackend  = flag.String("backend", "", "local|redis|dynamodb|datastore (default $COUNTER_BACKEND or dynamodb)")
)

func init() {
	flag.Parse()

	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}
	cfg.Override(*optLogLevel, *optBackend, *optListen)

	logger = log.Must(log.NewLogger(log.WithLogLevel(cfg.LogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Fatalf("*** run: %v", err)
	}
}

func run(ctx context.Context) error {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("store.Open: %w", err)
	}
	defer st.Close()

	zl := logger.Desugar()
	svc := counter.NewService(st,
		counter.WithLogger(zl),
		counter.WithEnsureRecord(cfg.EnsureRecord),
	)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.NewHandler(svc, httpapi.WithLogger(zl)),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Infof("listen=%s, backend=%s", cfg.Listen, cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Infof("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	return eg.Wait()
}
