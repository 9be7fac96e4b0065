package actor

import (
	"errors"
	"sync"
	"testing"
	"time"

	adactor "pellematic2mqtt/internal/adapter/actor"
	"pellematic2mqtt/internal/core/domain"
	"pellematic2mqtt/internal/mqtt"
	"pellematic2mqtt/internal/util"
	"pellematic2mqtt/internal/util/actorutil"
	"pellematic2mqtt/pkg/pellematic"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const pollerTestPayload = `{
	"pe1": {
		"L_temp_act": {"val": 612, "unit": "°C", "factor": 0.1},
		"storage_fill": {"val": 500, "unit": "kg", "min": 0, "max": 1000, "text": "Storage fill"}
	},
	"hk1": {
		"temp_set": {"val": 215, "unit": "°C", "factor": 0.1, "min": 100, "max": 300, "text": "Flow temperature"},
		"mode_auto": {"val": 1, "format": "0:Off|1:On|2:Auto", "text": "Mode"}
	}
}`

type eventCollector struct {
	mu     sync.Mutex
	events []any
}

func (c *eventCollector) add(ev any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *eventCollector) snapshot() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any{}, c.events...)
}

func (c *eventCollector) bridgeStates() []bool {
	var states []bool
	for _, ev := range c.snapshot() {
		if bev, ok := ev.(domain.BridgeStateUpdateEvent); ok {
			states = append(states, bev.Value)
		}
	}
	return states
}

func (c *eventCollector) findFloat(id string) *domain.FloatSensorUpdateEvent {
	for _, ev := range c.snapshot() {
		if fev, ok := ev.(domain.FloatSensorUpdateEvent); ok && fev.Id == id {
			return &fev
		}
	}
	return nil
}

func startPollerFixture(t *testing.T, client *pellematic.TestTouchClient) (*actor.ActorSystem, *actor.RootContext, *actor.PID, *eventCollector) {
	t.Helper()

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	es := &eventstream.EventStream{}
	collector := &eventCollector{}
	es.Subscribe(collector.add)

	fetchProps := actor.PropsFromProducer(func() actor.Actor { return adactor.NewFetchActor(client, logger) })
	fetchPID := context.Spawn(fetchProps)

	mqttProps := actor.PropsFromProducer(func() actor.Actor { return adactor.NewTestMQTTActor(&cfg, es, logger) })
	mqttPID := context.Spawn(mqttProps)

	pollerProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPollerActor(&cfg, fetchPID, mqttPID, es, logger)
	})
	pollerPID := context.Spawn(pollerProps)

	return as, context, pollerPID, collector
}

func TestPollerActorFirstCycle(t *testing.T) {

	assert := assert.New(t)

	client := &pellematic.TestTouchClient{Payload: []byte(pollerTestPayload)}
	as, context, pid, collector := startPollerFixture(t, client)

	time.Sleep(2 * time.Second)

	temp := collector.findFloat("pe1_L_temp_act")
	if assert.NotNil(temp, "first cycle publishes state events") {
		assert.Equal(61.2, temp.Value)
		assert.Equal(uint(1), temp.Decimals)
	}

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health, ok := res.(domain.ActorHealthResponse)
	assert.True(ok)
	assert.True(health.Healthy)
	assert.Equal("idle", health.State)

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerActorNumberCommand(t *testing.T) {

	assert := assert.New(t)

	client := &pellematic.TestTouchClient{Payload: []byte(pollerTestPayload)}
	as, context, pid, _ := startPollerFixture(t, client)

	time.Sleep(2 * time.Second)

	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		EntityId: "hk1_temp_set",
		Command:  "number",
		Payload:  "23.0",
	}})

	time.Sleep(2 * time.Second)

	assert.Contains(client.Writes, "hk1_temp_set=230", "scaled payload converts back to the raw value")

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerActorSelectCommand(t *testing.T) {

	assert := assert.New(t)

	client := &pellematic.TestTouchClient{Payload: []byte(pollerTestPayload)}
	as, context, pid, _ := startPollerFixture(t, client)

	time.Sleep(2 * time.Second)

	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		EntityId: "hk1_mode_auto",
		Command:  "select",
		Payload:  "Auto",
	}})

	time.Sleep(2 * time.Second)

	assert.Contains(client.Writes, "hk1_mode_auto=2", "option label maps back to its code")

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerActorRejectsInvalidCommands(t *testing.T) {

	assert := assert.New(t)

	client := &pellematic.TestTouchClient{Payload: []byte(pollerTestPayload)}
	as, context, pid, _ := startPollerFixture(t, client)

	time.Sleep(2 * time.Second)

	// unknown entity
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		EntityId: "hk1_unknown",
		Command:  "number",
		Payload:  "1",
	}})
	// read-only entity
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		EntityId: "pe1_L_temp_act",
		Command:  "number",
		Payload:  "1",
	}})
	// out of range
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		EntityId: "hk1_temp_set",
		Command:  "number",
		Payload:  "99.0",
	}})

	time.Sleep(2 * time.Second)

	assert.Empty(client.Writes, "invalid commands never reach the controller")

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerActorFetchFailureAndRecovery(t *testing.T) {

	assert := assert.New(t)

	client := &pellematic.TestTouchClient{Payload: []byte(pollerTestPayload)}
	as, context, pid, collector := startPollerFixture(t, client)

	time.Sleep(2 * time.Second)

	assert.NotNil(collector.findFloat("pe1_L_temp_act"))

	// controller goes away
	client.PayloadError = errors.New("connection refused")
	context.Send(pid, pollTick{})

	time.Sleep(2 * time.Second)

	assert.Contains(collector.bridgeStates(), false, "fetch failure marks the bridge offline")

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health := res.(domain.ActorHealthResponse)
	assert.True(health.Healthy)
	assert.Equal("degraded", health.State)

	// discovered entities survive the outage, commands still resolve
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		EntityId: "hk1_temp_set",
		Command:  "number",
		Payload:  "23.0",
	}})

	time.Sleep(2 * time.Second)

	assert.Contains(client.Writes, "hk1_temp_set=230", "entity definitions are retained across fetch failures")

	// controller comes back
	client.PayloadError = nil
	context.Send(pid, pollTick{})

	time.Sleep(2 * time.Second)

	states := collector.bridgeStates()
	if assert.Contains(states, true, "recovery marks the bridge online") {
		assert.True(states[len(states)-1], "last bridge state is online")
	}

	res, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	health = res.(domain.ActorHealthResponse)
	assert.True(health.Healthy)
	assert.Equal("idle", health.State)

	context.Stop(pid)
	as.Shutdown()
}
