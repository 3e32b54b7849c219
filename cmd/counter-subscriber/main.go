package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cloud.google.com/go/pubsub"
	"github.com/tckz/visitor-counter/internal/config"
	"github.com/tckz/visitor-counter/internal/counter"
	"github.com/tckz/visitor-counter/internal/ingest"
	"github.com/tckz/visitor-counter/internal/log"
	"github.com/tckz/visitor-counter/internal/marker"
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
	optWorkers      = flag.Int("workers", 4, "Number of workers")
	optLogLevel     = flag.String("log-level", "", "debug|info|warn|error (default $COUNTER_LOG_LEVEL or info)")
	optSubscription = flag.String("subscription", "", "subscription name")
	optMarkerRedis  = flag.String("marker-redis", "", "addr:port of redis shared by subscribers for dedup, in-process if empty")
	optMarkerTTL    = flag.Duration("marker-ttl", marker.DefaultTTL, "how long a message ID stays claimed")
	optLogStep      = flag.Int64("log-step", 1000, "How many messages between each log output")
)

func init() {
	flag.Parse()

	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}
	cfg.Override(*optLogLevel, "", "")

	logger = log.Must(log.NewLogger(log.WithLogLevel(cfg.LogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if *optSubscription == "" {
		logger.Fatalf("*** --subscription must be specified.")
	}
	progress, err := ingest.NewProgress(*optLogStep)
	if err != nil {
		logger.Fatalf("*** --log-step: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cl, err := pubsub.NewClient(ctx, cfg.Store.ProjectID)
	if err != nil {
		logger.Fatalf("*** pubsub.NewClient: %v", err)
	}
	defer cl.Close()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatalf("*** store.Open: %v", err)
	}
	defer st.Close()

	var processMarker marker.ProcessMarker
	if *optMarkerRedis == "" {
		processMarker = marker.NewLocalMarker(*optMarkerTTL)
	} else {
		rc := store.NewRedisClient(*optMarkerRedis)
		defer rc.Close()
		processMarker = marker.NewRedisMarker(rc, *optMarkerTTL)
	}

	svc := counter.NewService(st,
		counter.WithLogger(logger.Desugar()),
		counter.WithEnsureRecord(cfg.EnsureRecord),
	)
	consumer := ingest.NewConsumer(svc, processMarker, logger)

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < *optWorkers; i++ {
		eg.Go(func() error {
			subs := cl.Subscription(*optSubscription)
			return subs.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
				res, count := consumer.Handle(ctx, msg.ID, msg.Attributes)
				logger.Debugf("msgID=%s, result=%s, visitorCount=%s", msg.ID, res, count)
				switch res {
				case ingest.Failed:
					msg.Nack()
					return
				case ingest.Counted:
					if n, ok := progress.Add(); ok {
						logger.Infof("counted=%d", n)
					}
				}
				msg.Ack()
			})
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Infof("Received signal: %v", s)
	case <-ctx.Done():
	}
	cancel()

	logger.Infof("Waiting goroutines exit")
	if err := eg.Wait(); err != nil {
		logger.Errorf("Wait: %v", err)
	}
	logger.Infof("counted=%d", progress.Count())
}
