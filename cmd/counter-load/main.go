package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	vh "github.com/tckz/vegetahelper"
	"github.com/tckz/visitor-counter/internal/log"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optRate = &vh.RateFlag{
		Rate: &vegeta.Rate{
			Freq: 30,
			Per:  1 * time.Second,
		}}
	optDuration = flag.Duration("duration", 10*time.Second, "Duration of the test [0 = forever]")
	optOutput   = flag.String("output", "", "/path/to/results.bin or 'stdout'")
	optWorkers  = flag.Uint64("workers", vegeta.DefaultWorkers, "Number of workers")
	optLogLevel = flag.String("log-level", "info", "info|warn|error")
	optURL      = flag.String("url", "", "URL of the counter endpoint")
	optVisitors = flag.Int("visitors", 10, "Number of distinct visitor ids to spread hits over")
	optAudience = flag.String("audience", "", "aud of id token attached to each request, for IAM protected endpoints")
)

func init() {
	godotenv.Load()

	flag.Var(optRate, "rate", "Number of requests per time unit")
	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

type nopWriteCloser struct {
	io.Writer
}

func (c nopWriteCloser) Close() error {
	return nil
}

func openResultFile(out string) (io.WriteCloser, error) {
	switch out {
	case "stdout":
		return &nopWriteCloser{os.Stdout}, nil
	default:
		return os.Create(out)
	}
}

type countResponse struct {
	VisitorCount int64 `json:"visitorCount"`
}

func hit(ctx context.Context, client *http.Client, base *url.URL, visitor string) (int64, error) {
	u := *base
	q := u.Query()
	q.Set("visitor", visitor)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("status=%d, body=%s", resp.StatusCode, b)
	}

	var cr countResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("Decode: %w", err)
	}
	return cr.VisitorCount, nil
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if *optOutput == "" {
		logger.Fatalf("*** --output must be specified.")
	}
	if *optURL == "" {
		logger.Fatalf("*** --url must be specified.")
	}
	base, err := url.Parse(*optURL)
	if err != nil {
		logger.Fatalf("*** url.Parse: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := http.DefaultClient
	if *optAudience != "" {
		client, err = idtoken.NewClient(ctx, *optAudience)
		if err != nil {
			logger.Fatalf("*** idtoken.NewClient: %v", err)
		}
	}

	visitors := lo.Times(*optVisitors, func(int) string {
		return "load-" + uuid.New().String()
	})

	var hits int64
	atk := vh.NewAttacker(func(ctx context.Context) (result *vh.HitResult, retErr error) {
		if _, err := hit(ctx, client, base, lo.Sample(visitors)); err != nil {
			return nil, err
		}
		atomic.AddInt64(&hits, 1)
		return result, nil
	}, vh.WithWorkers(*optWorkers))
	res := atk.Attack(ctx, *optRate.Rate, *optDuration, "counter")

	out, err := openResultFile(*optOutput)
	if err != nil {
		logger.Fatal(err)
	}
	defer out.Close()
	enc := vegeta.NewEncoder(out)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT)

loop:
	for {
		select {
		case s := <-sig:
			logger.Infof("Received signal: %s", s)
			cancel()
			// keep loop until 'res' is closed.
		case r, ok := <-res:
			if !ok {
				break loop
			}
			if err := enc.Encode(r); err != nil {
				logger.Errorf("*** Encode: %v", err)
				break loop
			}
		}
	}

	cancel()

	// Every successful hit is one increment spread over the visitor pool.
	logger.Infof("hits=%s, visitors=%d", humanize.Comma(atomic.LoadInt64(&hits)), len(visitors))
}
