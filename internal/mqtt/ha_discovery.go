package mqtt

import (
	"fmt"
	"strconv"

	"pellematic2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	Icon              string            `json:"icon,omitempty"`
	Min               float64           `json:"min,omitempty"`
	Max               float64           `json:"max,omitempty"`
	Step              float64           `json:"step,omitempty"`
	Mode              string            `json:"mode,omitempty"`
	Options           []string          `json:"options,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

// HAPlatform maps an entity kind to its Home Assistant platform.
// Statistics are plain sensors on the HA side; the distinction only
// drives the state class.
func HAPlatform(kind domain.EntityKind) string {
	switch kind {
	case domain.ENTITY_KIND_NUMBER:
		return "number"
	case domain.ENTITY_KIND_SELECT:
		return "select"
	default:
		return "sensor"
	}
}

func HADiscoveryEntityTopic(dev domain.Device, def domain.EntityDefinition) string {
	return fmt.Sprintf("homeassistant/%s/%s/%s/config", HAPlatform(def.Kind), dev.Id, def.Id())
}

func HADiscoveryBridgeSensorTopic(sensor domain.BridgeSensor) string {
	return fmt.Sprintf("homeassistant/binary_sensor/%s/%s/config", sensor.Device.Id, sensor.Id)
}

func EntityToHADiscoveryMessage(client *MQTTClient, dev domain.Device, def domain.EntityDefinition) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:            device(dev),
		AvTopic:           client.BridgeStateTopic(),
		Name:              def.Label,
		UniqueId:          domain.UniqueId(dev.Id, def.Id()),
		UnitOfMeasurement: def.Unit,
		DeviceClass:       def.DeviceClass,
		StateClass:        def.StateClass,
		Icon:              def.Icon,
		Platform:          "mqtt",
	}
	switch def.Kind {
	case domain.ENTITY_KIND_NUMBER:
		disConfig.StateTopic = client.NumberStateTopic(def.Id())
		disConfig.CommandTopic = client.NumberCommandTopic(def.Id())
		disConfig.Mode = "box"
		disConfig.Step = def.Scale
		if def.Range != nil {
			disConfig.Min = def.Range.Min * def.Scale
			disConfig.Max = def.Range.Max * def.Scale
		}
	case domain.ENTITY_KIND_SELECT:
		disConfig.StateTopic = client.SelectStateTopic(def.Id())
		disConfig.CommandTopic = client.SelectCommandTopic(def.Id())
		disConfig.Options = optionLabels(def)
	default:
		disConfig.StateTopic = client.SensorStateTopic(def.Id())
	}
	return disConfig
}

func BridgeSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.BridgeSensor) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device:         device(sensor.Device),
		StateTopic:     client.BridgeStateTopic(),
		DeviceClass:    sensor.DeviceClass,
		EntityCategory: domain.ENTITY_CLASS_DIAGNOSTIC,
		Name:           sensor.Name,
		UniqueId:       sensor.UniqueId,
		Platform:       "mqtt",
		PayloadOn:      MQTT_PAYLOAD_ONLINE,
		PayloadOff:     MQTT_PAYLOAD_OFFLINE,
	}
}

// optionLabels renders the select options in definition order. Options
// without a label fall back to the raw code so HA can still display and
// send them.
func optionLabels(def domain.EntityDefinition) []string {
	labels := make([]string, len(def.Options))
	for i, opt := range def.Options {
		if opt.Label != "" {
			labels[i] = opt.Label
		} else {
			labels[i] = strconv.Itoa(opt.Code)
		}
	}
	return labels
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
