package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/tckz/visitor-counter/internal/config"
	"github.com/tckz/visitor-counter/internal/counter"
	"github.com/tckz/visitor-counter/internal/httpapi"
	"github.com/tckz/visitor-counter/internal/log"
	"github.com/tckz/visitor-counter/internal/store"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	version string
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zl := log.Must(log.NewLogger(
		log.WithLogLevel(cfg.LogLevel),
		log.WithFields(zap.String("app", myName), zap.String("function", os.Getenv("AWS_LAMBDA_FUNCTION_NAME"))),
	))
	logger := zl.Sugar()
	logger.Infof("ver=%s, backend=%s", version, cfg.Store.Backend)

	// Clients are created once per execution environment and reused across invocations.
	st, err := store.Open(context.Background(), cfg.Store)
	if err != nil {
		logger.Fatalf("*** store.Open: %v", err)
	}

	svc := counter.NewService(st,
		counter.WithLogger(zl),
		counter.WithEnsureRecord(cfg.EnsureRecord),
	)
	lambda.Start(httpapi.NewLambdaHandler(svc, httpapi.WithLogger(zl)))
}
