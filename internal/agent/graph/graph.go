package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/wismo-agent/server/internal/agent/graph/conversations"
	"github.com/wismo-agent/server/internal/agent/graph/nodes"
	"github.com/wismo-agent/server/internal/agent/graph/observers"
	"github.com/wismo-agent/server/internal/agent/handoff"
	"github.com/wismo-agent/server/internal/agent/intent"
	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// maxRunSteps caps graph execution. The pipeline is strictly sequential, so
// the cap is slack against future branch additions, not a tuning knob.
const maxRunSteps = 10

// Runner executes the compiled pipeline for one chat turn.
type Runner interface {
	Invoke(ctx context.Context, in model.ChatInput) (*model.ChatResult, error)
}

// Config holds everything needed to compose the full chat pipeline
// end-to-end. This is a convenience layer over GraphConfig that also wires
// the transcript recorder and defaults the handoff composer.
type Config struct {
	Extractor intent.Extractor
	Orders    model.OrderRepository
	Shipments model.ShipmentRepository
	Sessions  model.SessionRepository
	Cases     model.CaseRepository
	Logs      model.ActionLogRepository
	Notes     *handoff.Composer

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	Deps *nodes.Deps
}

// GraphBuilder handles the construction of the chat pipeline graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.ConversationState, *model.ConversationState]
}

type graphRunner struct {
	runnable compose.Runnable[*model.ConversationState, *model.ConversationState]
	recorder *conversations.Recorder
}

func (r *graphRunner) Invoke(ctx context.Context, in model.ChatInput) (*model.ChatResult, error) {
	state, err := r.runnable.Invoke(ctx, model.NewConversationState(in),
		compose.WithCallbacks(observers.NewGraphCallbacks(), observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	r.recorder.RecordAssistant(ctx, in.SessionID, state.Reply())
	return state.Result(), nil
}

// BuildChatGraph wires the stage dependencies, builds the graph, and returns
// a Runner.
func BuildChatGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("intent extractor is nil")
	}
	if cfg.Orders == nil || cfg.Shipments == nil {
		return nil, fmt.Errorf("order/shipment repositories are nil")
	}
	if cfg.Sessions == nil || cfg.Cases == nil || cfg.Logs == nil {
		return nil, fmt.Errorf("session/case/log repositories are nil")
	}

	notes := cfg.Notes
	if notes == nil {
		notes = handoff.NewComposer(nil)
	}
	recorder := conversations.NewRecorder(cfg.Sessions)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		Deps: &nodes.Deps{
			Extractor: cfg.Extractor,
			Orders:    cfg.Orders,
			Shipments: cfg.Shipments,
			Sessions:  cfg.Sessions,
			Cases:     cfg.Cases,
			Logs:      cfg.Logs,
			Notes:     notes,
			Recorder:  recorder,
			Now:       cfg.Now,
		},
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Chat graph built successfully")
	return &graphRunner{runnable: runnable, recorder: recorder}, nil
}

// BuildGraph constructs and returns the compiled pipeline graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.ConversationState, *model.ConversationState], error) {
	if config == nil || config.Deps == nil {
		return nil, fmt.Errorf("graph config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[*model.ConversationState, *model.ConversationState](),
	}

	builder.addNodes()
	builder.addEdges()

	return builder.compile(ctx)
}

// addNodes adds all processing stages to the graph.
func (b *GraphBuilder) addNodes() {
	deps := b.config.Deps

	b.graph.AddLambdaNode(nodes.NodeIntake, compose.InvokableLambda(deps.Intake))
	b.graph.AddLambdaNode(nodes.NodeUnderstand, compose.InvokableLambda(deps.Understand))
	b.graph.AddLambdaNode(nodes.NodeRetrieve, compose.InvokableLambda(deps.Retrieve))
	b.graph.AddLambdaNode(nodes.NodeDecide, compose.InvokableLambda(deps.Decide))
}

// addEdges creates the sequential flow between stages.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeIntake},
		{nodes.NodeIntake, nodes.NodeUnderstand},
		{nodes.NodeUnderstand, nodes.NodeRetrieve},
		{nodes.NodeRetrieve, nodes.NodeDecide},
		{nodes.NodeDecide, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.ConversationState, *model.ConversationState], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
