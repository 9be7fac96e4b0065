package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "pellematic2mqtt/internal/adapter/actor"
	"pellematic2mqtt/internal/core/domain"
	"pellematic2mqtt/internal/util"
	"pellematic2mqtt/pkg/pellematic"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	client := &pellematic.TestTouchClient{
		Payload: []byte(pollerTestPayload),
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.FetchActor {
			return adactor.NewFetchActor(client, logger)
		}, func(es *eventstream.EventStream) *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, es, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	res, err = context.RequestFuture(pid, domain.TriggerDiscoveryRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	_, ok = res.(domain.TriggerDiscoveryResponse)
	assert.True(t, ok, "rediscovery round trip")

	context.Stop(pid)

	as.Shutdown()
}
