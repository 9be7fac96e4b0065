package actor

import (
	"fmt"
	"math"
	"strconv"
	"time"

	adactor "pellematic2mqtt/internal/adapter/actor"
	"pellematic2mqtt/internal/config"
	"pellematic2mqtt/internal/core/discovery"
	"pellematic2mqtt/internal/core/domain"
	"pellematic2mqtt/internal/core/events"
	"pellematic2mqtt/internal/mqtt"
	. "pellematic2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// PollerActor drives the fetch cycle: it asks the fetch actor for a full
// payload on every tick, runs discovery when needed and publishes state
// update events to the event stream. On fetch failure it keeps the last
// discovered entities and retries at the configured retry interval.
type PollerActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	fetchActor  *actor.PID
	mqttActor   *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream

	bridge           domain.Device
	groups           []domain.ComponentEntities
	defsById         map[string]domain.EntityDefinition
	discoveryPending bool
	failing          bool

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollerActor(config *config.Config, fetchActor *actor.PID, mqttActor *actor.PID,
	eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		config:           config,
		fetchActor:       fetchActor,
		mqttActor:        mqttActor,
		behavior:         actor.NewBehavior(),
		stash:            &Stash{},
		logger:           ActorLogger(domain.ACTOR_ID_POLLER, logger),
		eventStream:      eventStream,
		discoveryPending: true,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@starting started")

		state.bridge = domain.BridgeDevice(state.config.MQTT.BaseTopic)
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.behavior.Become(state.DefaultReceive)
		// first fetch right away, it also runs the initial discovery
		ctx.Send(ctx.Self(), pollTick{})
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("poller@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		pollerState := "idle"
		if state.failing {
			pollerState = "degraded"
		}
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   pollerState,
		})
	case pollTick:
		state.logger.Debug("poller@default tick")
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.fetchActor, domain.FetchPayloadRequest{}, fetchRequestTimeout(state.config)), func(err error) any {
			return domain.FetchPayloadResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.behavior.BecomeStacked(state.WaitingFetchReceive)
	case domain.TriggerDiscoveryRequest:
		state.logger.Debug("poller@default TriggerDiscoveryRequest")
		state.discoveryPending = true
		ctx.Send(ctx.Self(), pollTick{})
		if msg.ReplyToRef != nil || ctx.Sender() != nil {
			ForRequest(msg).Respond(ctx, domain.TriggerDiscoveryResponse{})
		}
	case adactor.ParsedCommand:
		state.logger.Debug("poller@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			state.handleCommand(ctx, *msg.Command)
		}
	case domain.WriteValueResponse:
		if msg.HasResponseError() {
			state.logger.Error("poller@default write failed", zap.Error(msg.GetResponseError()))
			return
		}
		state.logger.Debug("poller@default write ok")
		// refresh states so the new value is reflected promptly
		ctx.Send(ctx.Self(), pollTick{})
	default:
		state.logger.Debug("poller@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) WaitingFetchReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.FetchPayloadResponse:
		if msg.HasResponseError() || msg.Payload == nil {
			if !state.failing {
				state.logger.Error("poller@waitingFetch fetch error", zap.Error(msg.GetResponseError()))
			}
			state.failing = true
			state.eventStream.Publish(domain.BridgeStateUpdateEvent{Value: false})
			state.scheduleNextTick(ctx, state.config.MonitorConfig.RetryIntervalMillis)
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("poller@waitingFetch FetchPayloadResponse")
		if state.failing {
			state.failing = false
			state.eventStream.Publish(domain.BridgeStateUpdateEvent{Value: true})
		}

		if state.discoveryPending || state.groups == nil {
			state.runDiscovery(ctx, msg.Payload)
		}

		for _, ev := range events.PayloadToUpdateEvents(state.groups, msg.Payload) {
			state.eventStream.Publish(ev)
		}

		state.scheduleNextTick(ctx, state.config.MonitorConfig.PollIntervalMillis)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("poller@waitingFetch: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) runDiscovery(ctx actor.Context, payload *domain.RawPayload) {
	state.groups = discovery.Discover(payload)
	state.defsById = make(map[string]domain.EntityDefinition)
	for _, group := range state.groups {
		for _, def := range group.Entities {
			state.defsById[def.Id()] = def
		}
	}
	state.discoveryPending = false
	state.logger.Info("poller: discovery completed",
		zap.Int("components", len(state.groups)),
		zap.Int("entities", len(state.defsById)))
	if state.config.MQTT.HADiscoveryEnable {
		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Bridge:     state.bridge,
			Components: state.groups,
		})
	}
}

// handleCommand turns an MQTT command into a raw controller write. Number
// payloads arrive scaled and must be converted back to the raw device
// value, select payloads arrive as option labels.
func (state *PollerActor) handleCommand(ctx actor.Context, cmd mqtt.ParsedMQTTCommand) {
	def, ok := state.defsById[cmd.EntityId]
	if !ok || !def.Writable() {
		state.logger.Warn("poller: command for unknown or read-only entity", zap.String("entity", cmd.EntityId))
		return
	}
	var rawValue string
	switch def.Kind {
	case domain.ENTITY_KIND_NUMBER:
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil {
			state.logger.Warn("poller: invalid number command payload",
				zap.String("entity", cmd.EntityId), zap.String("payload", cmd.Payload))
			return
		}
		if def.Range != nil && (value < def.Range.Min*def.Scale || value > def.Range.Max*def.Scale) {
			state.logger.Warn("poller: number command out of range",
				zap.String("entity", cmd.EntityId), zap.Float64("value", value))
			return
		}
		rawValue = strconv.Itoa(int(math.Round(value / def.Scale)))
	case domain.ENTITY_KIND_SELECT:
		code, ok := def.OptionCode(cmd.Payload)
		if !ok {
			state.logger.Warn("poller: unknown select option",
				zap.String("entity", cmd.EntityId), zap.String("payload", cmd.Payload))
			return
		}
		rawValue = strconv.Itoa(code)
	}
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.fetchActor, domain.WriteValueRequest{
		ComponentKey: def.ComponentKey,
		FieldKey:     def.FieldKey,
		Value:        rawValue,
	}, fetchRequestTimeout(state.config)), func(err error) any {
		return domain.WriteValueResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
}

func (state *PollerActor) scheduleNextTick(ctx actor.Context, intervalMillis uint32) {
	if intervalMillis > 0 {
		state.scheduler.RequestOnce(time.Duration(intervalMillis)*time.Millisecond, ctx.Self(), pollTick{})
	}
}

func fetchRequestTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Touch.FetchTimeoutMillis)*time.Millisecond + 2*time.Second
}
