package mqtt

import (
	"testing"

	"pellematic2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestEntityToHADiscoveryMessageNumber(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	dev := domain.Device{Id: "bridge_1_hk1", Name: "Heating circuit 1"}

	def := domain.EntityDefinition{
		ComponentKey: "hk1",
		FieldKey:     "temp_set",
		Kind:         domain.ENTITY_KIND_NUMBER,
		Label:        "Flow temperature",
		Unit:         "°C",
		Scale:        0.1,
		DeviceClass:  domain.DEVICE_CLASS_TEMPERATURE,
		Range:        &domain.NumericRange{Min: 100, Max: 300},
	}

	msg := EntityToHADiscoveryMessage(client, dev, def)

	assert.Equal("loremTopic/number/hk1_temp_set/state", msg.StateTopic)
	assert.Equal("loremTopic/number/hk1_temp_set/set", msg.CommandTopic)
	assert.Equal("loremTopic/bridge/state", msg.AvTopic)
	assert.Equal("Flow temperature", msg.Name)
	assert.Equal(10.0, msg.Min, "bounds are published scaled")
	assert.Equal(30.0, msg.Max)
	assert.Equal(0.1, msg.Step)
	assert.Equal("box", msg.Mode)
	assert.Equal([]string{"bridge_1_hk1"}, msg.Device.Id)

	assert.Equal("homeassistant/number/bridge_1_hk1/hk1_temp_set/config", HADiscoveryEntityTopic(dev, def))
}

func TestEntityToHADiscoveryMessageSelect(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	dev := domain.Device{Id: "bridge_1_hk1"}

	def := domain.EntityDefinition{
		ComponentKey: "hk1",
		FieldKey:     "mode_auto",
		Kind:         domain.ENTITY_KIND_SELECT,
		Label:        "Mode (auto)",
		Scale:        1,
		Options: []domain.SelectOption{
			{Code: 0, Label: "Aus"},
			{Code: 1, Label: "Auto"},
			{Code: 2, Label: ""},
		},
	}

	msg := EntityToHADiscoveryMessage(client, dev, def)

	assert.Equal("loremTopic/select/hk1_mode_auto/state", msg.StateTopic)
	assert.Equal("loremTopic/select/hk1_mode_auto/set", msg.CommandTopic)
	assert.Equal([]string{"Aus", "Auto", "2"}, msg.Options, "unlabeled options fall back to the code")
	assert.Equal("homeassistant/select/bridge_1_hk1/hk1_mode_auto/config", HADiscoveryEntityTopic(dev, def))
}

func TestEntityToHADiscoveryMessageStatistic(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	dev := domain.Device{Id: "bridge_1_pe1"}

	def := domain.EntityDefinition{
		ComponentKey: "pe1",
		FieldKey:     "pellets_total",
		Kind:         domain.ENTITY_KIND_STATISTIC,
		Label:        "Pellet consumption",
		Unit:         "kg",
		Scale:        1,
		StateClass:   domain.STATE_CLASS_TOTAL_INCREASING,
	}

	msg := EntityToHADiscoveryMessage(client, dev, def)

	assert.Equal("loremTopic/sensor/pe1_pellets_total/state", msg.StateTopic, "statistics publish on the sensor platform")
	assert.Empty(msg.CommandTopic)
	assert.Equal(domain.STATE_CLASS_TOTAL_INCREASING, msg.StateClass)
	assert.Equal("homeassistant/sensor/bridge_1_pe1/pe1_pellets_total/config", HADiscoveryEntityTopic(dev, def))
}

func TestBridgeSensorToHADiscoveryMessage(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	bridge := domain.BridgeDevice("loremTopic")
	sensor := domain.BridgeStateSensor(bridge)

	msg := BridgeSensorToHADiscoveryMessage(client, sensor)

	assert.Equal("loremTopic/bridge/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	assert.Equal(MQTT_PAYLOAD_OFFLINE, msg.PayloadOff)
	assert.Equal(domain.DEVICE_CLASS_CONNECTIVITY, msg.DeviceClass)
	assert.Equal(domain.ENTITY_CLASS_DIAGNOSTIC, msg.EntityCategory)
}
