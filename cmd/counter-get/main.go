package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/tckz/visitor-counter/internal/config"
	"github.com/tckz/visitor-counter/internal/counter"
	"github.com/tckz/visitor-counter/internal/log"
	"github.com/tckz/visitor-counter/internal/store"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
	cfg     config.Config
)

var (
	optLogLevel = flag.String("log-level", "", "debug|info|warn|error (default $COUNTER_LOG_LEVEL or info)")
	optBackend  = flag.String("backend", "", "local|redis|dynamodb|datastore (default $COUNTER_BACKEND)")
	optRaw      = flag.Bool("raw", false, "print the number without digit grouping")
)

func init() {
	flag.Parse()

	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}
	cfg.Override(*optLogLevel, *optBackend, "")

	logger = log.Must(log.NewLogger(log.WithLogLevel(cfg.LogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Fatalf("*** store.Open: %v", err)
	}
	defer st.Close()

	svc := counter.NewService(st)

	ids := flag.Args()
	if len(ids) == 0 {
		ids = []string{counter.DefaultVisitorID}
	}

	for _, id := range ids {
		n, err := svc.Current(ctx, id)
		if err != nil {
			logger.Errorf("Current: %v", err)
			return
		}

		out := n.String()
		if v, err := n.Int64(); err == nil && !*optRaw {
			out = humanize.Comma(v)
		}
		fmt.Fprintf(os.Stdout, "%s\t%s\n", id, out)
	}
}
