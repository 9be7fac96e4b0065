package events

import (
	"strconv"

	. "pellematic2mqtt/internal/core/domain"
)

// PayloadToUpdateEvents converts one fetched payload into state update
// events for every discovered entity. Entities whose field vanished from
// the payload produce no event, keeping their last-known value.
func PayloadToUpdateEvents(groups []ComponentEntities, payload *RawPayload) []any {
	var events []any

	for _, group := range groups {
		for _, def := range group.Entities {
			env, ok := payload.Envelope(def.ComponentKey, def.FieldKey)
			if !ok {
				continue
			}
			events = append(events, updateEvent(def, env))
		}
	}

	return events
}

func updateEvent(def EntityDefinition, env ValueEnvelope) any {
	switch def.Kind {
	case ENTITY_KIND_NUMBER:
		return InputNumberSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: def.Id(),
			},
			Value:    env.ScaledValue(),
			Decimals: DecimalsForScale(def.Scale),
		}
	case ENTITY_KIND_SELECT:
		return SelectSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: def.Id(),
			},
			Value: optionLabelOrCode(def, env),
		}
	default:
		if len(def.Options) > 0 {
			// read-only enumeration, shown as its option label
			return TextSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{
					Id: def.Id(),
				},
				Value: optionLabelOrCode(def, env),
			}
		}
		return FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: def.Id(),
			},
			Value:    env.ScaledValue(),
			Decimals: DecimalsForScale(def.Scale),
		}
	}
}

func optionLabelOrCode(def EntityDefinition, env ValueEnvelope) string {
	code := int(env.Val)
	if label, ok := def.OptionLabel(code); ok {
		return label
	}
	return strconv.Itoa(code)
}

// DecimalsForScale derives the display precision from the scale factor:
// factor 0.1 keeps one decimal, 0.01 two, whole factors none.
func DecimalsForScale(scale float64) uint {
	var decimals uint
	for scale < 1 && decimals < 4 {
		scale *= 10
		decimals++
	}
	return decimals
}
