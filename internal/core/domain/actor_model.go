package domain

const (
	ACTOR_ID_MASTER = "master"
	ACTOR_ID_FETCH  = "fetch"
	ACTOR_ID_POLLER = "poller"
	ACTOR_ID_MQTT   = "mqtt"
)

// FetchPayloadRequest asks the fetch actor for one full controller
// response, normalized and parsed.
type FetchPayloadRequest struct {
	ActorRequestMixIn
}

type FetchPayloadResponse struct {
	ActorResponseMixIn
	Payload *RawPayload
}

// WriteValueRequest issues one raw write to the controller. Value is the
// unscaled device value, already mapped from option label if needed.
type WriteValueRequest struct {
	ActorRequestMixIn
	ComponentKey string
	FieldKey     string
	Value        string
}

type WriteValueResponse struct {
	ActorResponseMixIn
}

// TriggerDiscoveryRequest forces an immediate fetch-and-rediscover cycle,
// bypassing the retry back-off timer.
type TriggerDiscoveryRequest struct {
	ActorRequestMixIn
}

type TriggerDiscoveryResponse struct {
	ActorResponseMixIn
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

// PublishDiscoveryRequest carries one complete discovery pass to the MQTT
// actor for Home Assistant registration.
type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Bridge     Device
	Components []ComponentEntities
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
