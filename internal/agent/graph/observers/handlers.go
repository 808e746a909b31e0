package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/wismo-agent/server/pkg/logger"
)

// NewAllCallbacks aggregates the typed observer handlers (prompt, chat model)
// into one callbacks.Handler.
func NewAllCallbacks() einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()
}

// NewGraphCallbacks logs every component transition in the pipeline. The
// typed helper does not cover lambda nodes, so this uses the generic builder.
func NewGraphCallbacks() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if info != nil {
				logx.Debug().
					Str("component", string(info.Component)).
					Str("node", info.Name).
					Msg("Node start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info != nil {
				logx.Debug().
					Str("component", string(info.Component)).
					Str("node", info.Name).
					Msg("Node end")
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			if info != nil {
				logx.Error().
					Err(err).
					Str("component", string(info.Component)).
					Str("node", info.Name).
					Msg("Node error")
			}
			return ctx
		}).
		Build()
}
