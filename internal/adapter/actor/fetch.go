package actor

import (
	"context"
	"fmt"
	"time"

	"pellematic2mqtt/internal/core/discovery"
	"pellematic2mqtt/internal/core/domain"
	"pellematic2mqtt/internal/util/actorutil"
	"pellematic2mqtt/pkg/pellematic"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

// TOUCH_TASK_TIMEOUT caps a whole fetch or write round-trip including
// payload normalization. The HTTP client's own timeout fires first.
const TOUCH_TASK_TIMEOUT = 30 * time.Second

// FetchActor owns the Pelletronic Touch transport. It serializes
// controller access: while a fetch or write is in flight, further
// requests are stashed.
type FetchActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	client   pellematic.TouchClient
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewFetchActor(client pellematic.TouchClient, log *zap.Logger) *FetchActor {
	act := &FetchActor{
		client:   client,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_FETCH, log),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *FetchActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *FetchActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("fetch@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_FETCH,
			Healthy: true,
			State:   "idle",
		})
	case domain.FetchPayloadRequest:
		state.logger.Debug("fetch@default: FetchPayloadRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.fetchPayload),
			mapTaskResult[domain.FetchPayloadResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.FetchPayloadResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(TOUCH_TASK_TIMEOUT).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingTouch)
	case domain.WriteValueRequest:
		state.logger.Debug("fetch@default: WriteValueRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.WriteValueResponse, error) {
			return state.writeValue(msg)
		}),
			mapTaskResult[domain.WriteValueResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.WriteValueResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(TOUCH_TASK_TIMEOUT).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingTouch)
	default:
		state.logger.Debug("fetch@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *FetchActor) WaitingTouch(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("fetch@WaitingTouch backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("fetch@WaitingTouch stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *FetchActor) fetchPayload() (*domain.FetchPayloadResponse, error) {
	raw, err := a.client.FetchRaw(context.Background())
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	payload, err := discovery.NormalizePayload(raw, a.client.Charset())
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.FetchPayloadResponse{
		Payload: payload,
	}, nil
}

func (a *FetchActor) writeValue(req domain.WriteValueRequest) (*domain.WriteValueResponse, error) {
	err := a.client.WriteValue(context.Background(), req.ComponentKey, req.FieldKey, req.Value)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.WriteValueResponse{}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
