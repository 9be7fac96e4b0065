package events

import (
	"testing"

	"pellematic2mqtt/internal/core/discovery"
	. "pellematic2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

const testPayload = `{
	"pe1": {
		"L_temp_act": {"val": 612, "unit": "°C", "factor": 0.1},
		"L_state": {"val": 2, "format": "0:Off|1:Starting|2:Heating"},
		"storage_fill": {"val": 500, "unit": "kg", "min": 0, "max": 1000}
	},
	"hk1": {
		"mode_auto": {"val": 1, "format": "0:Off|1:On", "text": "Mode"}
	}
}`

func eventsForPayload(t *testing.T, raw string) []any {
	t.Helper()
	payload, err := discovery.NormalizePayload([]byte(raw), "UTF-8")
	if err != nil {
		t.Fatal(err)
	}
	groups := discovery.Discover(payload)
	return PayloadToUpdateEvents(groups, payload)
}

func TestPayloadToUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	evs := eventsForPayload(t, testPayload)
	assert.Equal(4, len(evs))

	temp, ok := evs[0].(FloatSensorUpdateEvent)
	assert.True(ok)
	assert.Equal("pe1_L_temp_act", temp.Id)
	assert.Equal(61.2, temp.Value)
	assert.Equal(uint(1), temp.Decimals)

	state, ok := evs[1].(TextSensorUpdateEvent)
	assert.True(ok, "read-only enum surfaces as text")
	assert.Equal("Heating", state.Value)

	fill, ok := evs[2].(InputNumberSensorUpdateEvent)
	assert.True(ok)
	assert.Equal("pe1_storage_fill", fill.Id)
	assert.Equal(500.0, fill.Value)
	assert.Equal(uint(0), fill.Decimals)

	mode, ok := evs[3].(SelectSensorUpdateEvent)
	assert.True(ok)
	assert.Equal("hk1_mode_auto", mode.Id)
	assert.Equal("On", mode.Value)
}

func TestPayloadToUpdateEventsUnknownOptionCode(t *testing.T) {

	assert := assert.New(t)

	payload, err := discovery.NormalizePayload([]byte(testPayload), "UTF-8")
	if err != nil {
		t.Fatal(err)
	}
	groups := discovery.Discover(payload)

	// next fetch returns a code outside the option table
	next, err := discovery.NormalizePayload([]byte(`{
		"pe1": {
			"L_temp_act": {"val": 612, "unit": "°C", "factor": 0.1},
			"L_state": {"val": 9, "format": "0:Off|1:Starting|2:Heating"},
			"storage_fill": {"val": 500, "unit": "kg", "min": 0, "max": 1000}
		},
		"hk1": {
			"mode_auto": {"val": 1, "format": "0:Off|1:On", "text": "Mode"}
		}
	}`), "UTF-8")
	if err != nil {
		t.Fatal(err)
	}

	evs := PayloadToUpdateEvents(groups, next)
	state := evs[1].(TextSensorUpdateEvent)
	assert.Equal("9", state.Value, "unknown codes pass through as raw text")
}

func TestPayloadToUpdateEventsMissingField(t *testing.T) {

	assert := assert.New(t)

	payload, err := discovery.NormalizePayload([]byte(testPayload), "UTF-8")
	if err != nil {
		t.Fatal(err)
	}
	groups := discovery.Discover(payload)

	// the field vanished from a later fetch
	next, err := discovery.NormalizePayload([]byte(`{
		"pe1": {
			"L_temp_act": {"val": 620, "unit": "°C", "factor": 0.1}
		}
	}`), "UTF-8")
	if err != nil {
		t.Fatal(err)
	}

	evs := PayloadToUpdateEvents(groups, next)
	assert.Equal(1, len(evs), "vanished fields produce no events")
	temp := evs[0].(FloatSensorUpdateEvent)
	assert.Equal(62.0, temp.Value)
}

func TestDecimalsForScale(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(uint(0), DecimalsForScale(1))
	assert.Equal(uint(0), DecimalsForScale(2))
	assert.Equal(uint(1), DecimalsForScale(0.1))
	assert.Equal(uint(1), DecimalsForScale(0.5))
	assert.Equal(uint(2), DecimalsForScale(0.01))
	assert.Equal(uint(4), DecimalsForScale(0.00001), "precision is capped")
}
