package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/carlmjohnson/versioninfo"
)

type EntityKind string

const (
	ENTITY_KIND_SENSOR    EntityKind = "sensor"
	ENTITY_KIND_NUMBER    EntityKind = "number"
	ENTITY_KIND_SELECT    EntityKind = "select"
	ENTITY_KIND_STATISTIC EntityKind = "statistic"

	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_TEMPERATURE     = "temperature"
	DEVICE_CLASS_ENERGY          = "energy"
	DEVICE_CLASS_POWER           = "power"
	DEVICE_CLASS_DURATION        = "duration"
	DEVICE_CLASS_VOLTAGE         = "voltage"
	DEVICE_CLASS_CURRENT         = "current"
	DEVICE_CLASS_FREQUENCY       = "frequency"
	DEVICE_CLASS_WEIGHT          = "weight"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"

	SENSOR_ID_BRIDGE_STATE = "bridge"
)

type SelectOption struct {
	Code  int
	Label string
}

type NumericRange struct {
	Min float64
	Max float64
}

// EntityDefinition is one inferred control point. Definitions are built
// fresh on every discovery pass and never mutated afterwards.
type EntityDefinition struct {
	ComponentKey string
	FieldKey     string
	Kind         EntityKind
	Label        string
	Unit         string
	Scale        float64
	DeviceClass  string
	StateClass   string
	Icon         string
	Range        *NumericRange
	Options      []SelectOption
}

// Id is the entity identifier used in MQTT topics and unique ids. It is
// stable across discovery passes for the same component/field pair.
func (d EntityDefinition) Id() string {
	return fmt.Sprintf("%s_%s", d.ComponentKey, d.FieldKey)
}

// Writable reports whether the entity accepts commands.
func (d EntityDefinition) Writable() bool {
	return d.Kind == ENTITY_KIND_NUMBER || d.Kind == ENTITY_KIND_SELECT
}

// OptionLabel maps a raw value to its option label, if any.
func (d EntityDefinition) OptionLabel(code int) (string, bool) {
	for _, opt := range d.Options {
		if opt.Code == code {
			return opt.Label, true
		}
	}
	return "", false
}

// OptionCode maps an option label back to its raw value.
func (d EntityDefinition) OptionCode(label string) (int, bool) {
	for _, opt := range d.Options {
		if opt.Label == label {
			return opt.Code, true
		}
	}
	return 0, false
}

// ComponentEntities groups the final entity definitions of one component,
// in classifier encounter order.
type ComponentEntities struct {
	Component Component
	Entities  []EntityDefinition
}

// Device model for Home Assistant registration.
type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("pellematic_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "OkoFEN",
		Model:        "Pellematic bridge",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Pellematic %s", md5HashShort(baseTopic)),
	}
}

func ComponentDevice(bridge Device, component Component) Device {
	return Device{
		Id:           fmt.Sprintf("%s_%s", bridge.Id, component.Key),
		Manufacturer: "OkoFEN",
		Model:        "Pelletronic Touch",
		Name:         component.DisplayName(),
		ViaDevice:    bridge.Id,
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

// BridgeSensor is the connectivity diagnostic entity of the bridge itself.
type BridgeSensor struct {
	Device      Device
	Id          string
	Name        string
	UniqueId    string
	DeviceClass string
}

func BridgeStateSensor(bridgeDevice Device) BridgeSensor {
	return BridgeSensor{
		Device:      bridgeDevice,
		Id:          SENSOR_ID_BRIDGE_STATE,
		Name:        "Connection state",
		DeviceClass: DEVICE_CLASS_CONNECTIVITY,
		UniqueId:    UniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	}
}

func UniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[0:8]
}
