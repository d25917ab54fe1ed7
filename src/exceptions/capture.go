package exceptions

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	logger "github.com/sirupsen/logrus"

	"strategydesk/src/model"
)

const Service = "strategy_dashboard"

// Recorder persists captured exceptions. *repository.ExceptionRepository implements it.
type Recorder interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// Capture logs err and, when recorder is non-nil, persists it with a stack
// trace and the given context.
func Capture(
	ctx context.Context,
	recorder Recorder,
	module string,
	method string,
	level string,
	err error,
	contextData map[string]interface{},
) {

	if err == nil {
		return
	}

	var ctxJSON []byte
	if contextData != nil {
		if b, e := json.Marshal(contextData); e == nil {
			ctxJSON = b
		}
	}

	exc := &model.Exception{
		Service:   Service,
		Module:    module,
		Method:    method,
		Message:   err.Error(),
		Stack:     string(debug.Stack()),
		Level:     level,
		Context:   ctxJSON,
		CreatedAt: time.Now(),
	}

	logger.WithFields(map[string]interface{}{
		"service": Service,
		"module":  module,
		"method":  method,
		"level":   level,
	}).WithError(err).Error("Exception captured")

	if recorder != nil {
		// The request context may already be cancelled; the record should still land.
		if e := recorder.Create(context.WithoutCancel(ctx), exc); e != nil {
			logger.WithError(e).Error("Failed to persist exception")
		}
	}
}
