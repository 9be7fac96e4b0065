package discovery

import (
	"strconv"
	"strings"

	"pellematic2mqtt/internal/core/domain"
)

// READ_ONLY_MARKER prefixes every field the controller exposes as a live
// measurement rather than a setting.
const READ_ONLY_MARKER = "L_"

// statisticSuffixes denote cumulative or periodic counters. Statistics
// are conceptually read-only regardless of naming.
var statisticSuffixes = []string{
	"_total",
	"_yesterday",
	"_today",
	"_runtime",
	"_starts",
	"_counter",
}

type unitHint struct {
	DeviceClass string
	StateClass  string
	Icon        string
}

var unitHints = map[string]unitHint{
	"°C":  {DeviceClass: domain.DEVICE_CLASS_TEMPERATURE, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"K":   {DeviceClass: domain.DEVICE_CLASS_TEMPERATURE, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"kWh": {DeviceClass: domain.DEVICE_CLASS_ENERGY, StateClass: domain.STATE_CLASS_TOTAL_INCREASING},
	"Wh":  {DeviceClass: domain.DEVICE_CLASS_ENERGY, StateClass: domain.STATE_CLASS_TOTAL_INCREASING},
	"kW":  {DeviceClass: domain.DEVICE_CLASS_POWER, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"W":   {DeviceClass: domain.DEVICE_CLASS_POWER, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"%":   {StateClass: domain.STATE_CLASS_MEASUREMENT},
	"h":   {DeviceClass: domain.DEVICE_CLASS_DURATION, StateClass: domain.STATE_CLASS_TOTAL_INCREASING},
	"V":   {DeviceClass: domain.DEVICE_CLASS_VOLTAGE, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"A":   {DeviceClass: domain.DEVICE_CLASS_CURRENT, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"Hz":  {DeviceClass: domain.DEVICE_CLASS_FREQUENCY, StateClass: domain.STATE_CLASS_MEASUREMENT},
	"kg":  {DeviceClass: domain.DEVICE_CLASS_WEIGHT, StateClass: domain.STATE_CLASS_MEASUREMENT, Icon: "mdi:weight-kilogram"},
}

// labelIconHints is ordered; the first matching keyword wins so repeated
// discovery passes stay byte-identical.
var labelIconHints = []struct {
	Keyword string
	Icon    string
}{
	{"pellet", "mdi:fire"},
	{"pump", "mdi:pump"},
	{"fan", "mdi:fan"},
	{"solar", "mdi:solar-power"},
}

// ClassifyField inspects one field's metadata envelope and derives its
// entity kind and display attributes. Rules are checked in a fixed
// precedence order since they are not mutually exclusive. Returns false
// for fields that carry no user-facing meaning.
func ClassifyField(componentKey string, field domain.RawField) (domain.EntityDefinition, bool) {
	if field.Key == "" {
		return domain.EntityDefinition{}, false
	}
	env := field.Envelope

	def := domain.EntityDefinition{
		ComponentKey: componentKey,
		FieldKey:     field.Key,
		Label:        fieldLabel(field),
		Unit:         env.Unit,
		Scale:        env.Scale(),
	}

	options := ParseFormatOptions(env.Format)
	readOnly := strings.HasPrefix(field.Key, READ_ONLY_MARKER)

	switch {
	case readOnly:
		def.Kind = domain.ENTITY_KIND_SENSOR
	case hasStatisticSuffix(field.Key):
		def.Kind = domain.ENTITY_KIND_STATISTIC
	case env.Min != nil && env.Max != nil:
		def.Kind = domain.ENTITY_KIND_NUMBER
		def.Range = &domain.NumericRange{Min: *env.Min, Max: *env.Max}
	case strings.Contains(env.Format, "|") && len(options) > 0:
		def.Kind = domain.ENTITY_KIND_SELECT
		def.Options = options
	default:
		// unknown fields surface read-only rather than being hidden
		def.Kind = domain.ENTITY_KIND_SENSOR
	}

	// read-only enumerations keep their options so values can be shown
	// as option labels instead of raw codes
	if def.Kind == domain.ENTITY_KIND_SENSOR && len(options) > 0 {
		def.Options = options
	}

	applyHints(&def)

	return def, true
}

// ParseFormatOptions parses an enumerated format string like
// "0:Aus|1:Auto|2:Ein" into ordered code/label pairs. Malformed segments
// are skipped individually without failing the whole field.
func ParseFormatOptions(format string) []domain.SelectOption {
	if !strings.Contains(format, "|") {
		return nil
	}
	var options []domain.SelectOption
	for _, segment := range strings.Split(format, "|") {
		idx := strings.Index(segment, ":")
		if idx < 0 {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(segment[:idx]))
		if err != nil {
			continue
		}
		options = append(options, domain.SelectOption{
			Code:  code,
			Label: segment[idx+1:],
		})
	}
	return options
}

func fieldLabel(field domain.RawField) string {
	if field.Envelope.Text != "" {
		return field.Envelope.Text
	}
	return field.Key
}

func hasStatisticSuffix(key string) bool {
	for _, suffix := range statisticSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}

// applyHints infers device class, state class and icon from the unit and
// label lookup tables. No match yields no hint, never a fabricated one.
func applyHints(def *domain.EntityDefinition) {
	if hint, ok := unitHints[def.Unit]; ok {
		def.DeviceClass = hint.DeviceClass
		def.Icon = hint.Icon
		if def.Kind == domain.ENTITY_KIND_SENSOR && len(def.Options) == 0 {
			def.StateClass = hint.StateClass
		}
	}
	if def.Kind == domain.ENTITY_KIND_STATISTIC {
		def.StateClass = domain.STATE_CLASS_TOTAL_INCREASING
	}
	if def.Icon == "" {
		lowerLabel := strings.ToLower(def.Label)
		for _, hint := range labelIconHints {
			if strings.Contains(lowerLabel, hint.Keyword) {
				def.Icon = hint.Icon
				break
			}
		}
	}
}
