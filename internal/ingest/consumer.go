// Package ingest counts visit events delivered at least once by a message queue.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tckz/visitor-counter/internal/counter"
	"github.com/tckz/visitor-counter/internal/marker"
	"go.uber.org/zap"
)

// VisitorAttribute is the message attribute carrying the visitor id.
const VisitorAttribute = "visitor"

type Incrementer interface {
	IncrementVisitor(ctx context.Context, id string) (json.Number, error)
}

type Result int

const (
	// Counted means the event was applied; ack it.
	Counted Result = iota
	// Duplicate means another delivery already claimed it; ack it.
	Duplicate
	// Failed means nothing was applied; nack for redelivery.
	Failed
)

func (r Result) String() string {
	switch r {
	case Counted:
		return "counted"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

type Consumer struct {
	svc    Incrementer
	marker marker.ProcessMarker
	logger *zap.SugaredLogger
}

func NewConsumer(svc Incrementer, m marker.ProcessMarker, logger *zap.SugaredLogger) *Consumer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Consumer{svc: svc, marker: m, logger: logger}
}

// Handle applies one delivery of message msgID.
func (c *Consumer) Handle(ctx context.Context, msgID string, attrs map[string]string) (Result, json.Number) {
	if got, err := c.marker.Acquire(ctx, msgID); err != nil {
		c.logger.Errorf("Acquire: msgID=%s, %v", msgID, err)
		return Failed, ""
	} else if !got {
		c.logger.Infof("msgID=%s already marked to be processed by other", msgID)
		return Duplicate, ""
	}

	id, ok := attrs[VisitorAttribute]
	if !ok {
		id = counter.DefaultVisitorID
	}

	n, err := c.svc.IncrementVisitor(ctx, id)
	if err != nil {
		c.logger.Errorf("IncrementVisitor: msgID=%s, %v", msgID, err)
		if err := c.marker.Release(ctx, msgID); err != nil {
			c.logger.Errorf("Release: msgID=%s, %v", msgID, err)
		}
		return Failed, ""
	}
	return Counted, n
}
