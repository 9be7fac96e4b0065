package domain

import "fmt"

type ComponentKind string

const (
	COMPONENT_KIND_HEATING_CIRCUIT ComponentKind = "heating_circuit"
	COMPONENT_KIND_HOT_WATER       ComponentKind = "hot_water"
	COMPONENT_KIND_PELLEMATIC      ComponentKind = "pellematic_heater"
	COMPONENT_KIND_BUFFER_STORAGE  ComponentKind = "buffer_storage"
	COMPONENT_KIND_SOLAR_COLLECTOR ComponentKind = "solar_collector"
	COMPONENT_KIND_SOLAR_GAIN      ComponentKind = "solar_gain_sensor"
	COMPONENT_KIND_HEAT_PUMP       ComponentKind = "heat_pump"
	COMPONENT_KIND_WIRELESS_SENSOR ComponentKind = "wireless_sensor"
	COMPONENT_KIND_CIRCULATOR      ComponentKind = "circulator"
	COMPONENT_KIND_STIRLING        ComponentKind = "stirling_engine"
	COMPONENT_KIND_SMART_PV        ComponentKind = "smart_pv"
	COMPONENT_KIND_SYSTEM          ComponentKind = "system"
	COMPONENT_KIND_UNKNOWN         ComponentKind = "unknown"
)

type ComponentPrefix struct {
	Kind ComponentKind
	// Indexed components carry a 1-based ordinal parsed from the key's
	// trailing digits. Singletons keep no index even when the key has a
	// digit suffix (circ1).
	Indexed bool
}

// ComponentPrefixTable maps a key's non-numeric prefix to its kind. The
// table is the single source of truth for component naming; the scanner
// always matches the longest prefix first.
var ComponentPrefixTable = map[string]ComponentPrefix{
	"hk":       {COMPONENT_KIND_HEATING_CIRCUIT, true},
	"ww":       {COMPONENT_KIND_HOT_WATER, true},
	"pe":       {COMPONENT_KIND_PELLEMATIC, true},
	"pu":       {COMPONENT_KIND_BUFFER_STORAGE, true},
	"sk":       {COMPONENT_KIND_SOLAR_COLLECTOR, true},
	"se":       {COMPONENT_KIND_SOLAR_GAIN, true},
	"wp":       {COMPONENT_KIND_HEAT_PUMP, true},
	"ff":       {COMPONENT_KIND_WIRELESS_SENSOR, true},
	"circ":     {COMPONENT_KIND_CIRCULATOR, false},
	"stirling": {COMPONENT_KIND_STIRLING, false},
	"power":    {COMPONENT_KIND_SMART_PV, false},
	"system":   {COMPONENT_KIND_SYSTEM, false},
}

var componentKindNames = map[ComponentKind]string{
	COMPONENT_KIND_HEATING_CIRCUIT: "Heating circuit",
	COMPONENT_KIND_HOT_WATER:       "Hot water",
	COMPONENT_KIND_PELLEMATIC:      "Pellematic heater",
	COMPONENT_KIND_BUFFER_STORAGE:  "Buffer storage",
	COMPONENT_KIND_SOLAR_COLLECTOR: "Solar collector",
	COMPONENT_KIND_SOLAR_GAIN:      "Solar gain",
	COMPONENT_KIND_HEAT_PUMP:       "Heat pump",
	COMPONENT_KIND_WIRELESS_SENSOR: "Wireless sensor",
	COMPONENT_KIND_CIRCULATOR:      "Circulator",
	COMPONENT_KIND_STIRLING:        "Stirling engine",
	COMPONENT_KIND_SMART_PV:        "Smart PV",
	COMPONENT_KIND_SYSTEM:          "System",
	COMPONENT_KIND_UNKNOWN:         "Unknown",
}

// Component is one named, optionally indexed group of fields scanned from
// the payload. Index is 1-based; 0 means the component is a singleton.
type Component struct {
	Key    string
	Kind   ComponentKind
	Index  int
	Fields []RawField
}

func (c Component) DisplayName() string {
	name := componentKindNames[c.Kind]
	if c.Kind == COMPONENT_KIND_UNKNOWN || name == "" {
		return fmt.Sprintf("%s (%s)", componentKindNames[COMPONENT_KIND_UNKNOWN], c.Key)
	}
	if c.Index > 0 {
		return fmt.Sprintf("%s %d", name, c.Index)
	}
	return name
}
