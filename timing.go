package main

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

type ctxKey string

const requestIDKey ctxKey = "req_id"

var requestSeq atomic.Uint64

// withRequestID tags ctx with a process-unique request id.
func withRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey, fmt.Sprintf("r%06d", requestSeq.Add(1)))
}

// timeOp logs the duration of an operation when the returned func is deferred.
func timeOp(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(requestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
