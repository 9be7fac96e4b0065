package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePayloadPreservesOrder(t *testing.T) {

	assert := assert.New(t)

	raw := []byte(`{
		"system": {"L_ambient": {"val": -69, "unit": "C", "factor": 0.1}},
		"pe1": {"L_temp_act": {"val": 612, "unit": "C", "factor": 0.1}, "storage_fill": {"val": 500, "min": 0, "max": 1000}},
		"hk1": {"temp_set": {"val": 215, "factor": 0.1}, "mode": {"val": 1, "format": "0:Off|1:On"}},
		"version": "3.10d"
	}`)

	payload, err := NormalizePayload(raw, "UTF-8")
	if err != nil {
		t.Error(err)
		return
	}

	assert.Equal(3, len(payload.Components), "scalar top-level values are ignored")
	assert.Equal("system", payload.Components[0].Key)
	assert.Equal("pe1", payload.Components[1].Key)
	assert.Equal("hk1", payload.Components[2].Key)

	pe1 := payload.Components[1]
	assert.Equal("L_temp_act", pe1.Fields[0].Key)
	assert.Equal("storage_fill", pe1.Fields[1].Key)

	env, ok := payload.Envelope("pe1", "storage_fill")
	assert.True(ok)
	assert.Equal(500.0, env.Val)
	assert.Equal(0.0, *env.Min)
	assert.Equal(1000.0, *env.Max)
	assert.Equal(1.0, env.Scale(), "factor defaults to 1.0")

	env, ok = payload.Envelope("system", "L_ambient")
	assert.True(ok)
	assert.Equal(0.1, env.Scale())
	assert.Equal(-6.9, env.ScaledValue())
}

func TestNormalizePayloadSkipsFieldsWithoutVal(t *testing.T) {

	assert := assert.New(t)

	raw := []byte(`{"pe1": {"name": "Kessel 1", "meta": {"unit": "C"}, "L_temp_act": {"val": 612}}}`)

	payload, err := NormalizePayload(raw, "UTF-8")
	if err != nil {
		t.Error(err)
		return
	}

	assert.Equal(1, len(payload.Components))
	assert.Equal(1, len(payload.Components[0].Fields))
	assert.Equal("L_temp_act", payload.Components[0].Fields[0].Key)
}

func TestNormalizePayloadMalformed(t *testing.T) {

	assert := assert.New(t)

	_, err := NormalizePayload([]byte(`{"pe1": {`), "UTF-8")
	assert.ErrorIs(err, ErrMalformedPayload)

	_, err = NormalizePayload([]byte(`[1, 2, 3]`), "UTF-8")
	assert.ErrorIs(err, ErrMalformedPayload)

	_, err = NormalizePayload([]byte(`{}`), "KOI8-R")
	assert.ErrorIs(err, ErrMalformedPayload, "unsupported charset is a payload error")
}

func TestRepairStatetextKey(t *testing.T) {

	assert := assert.New(t)

	broken := `{"hk1": {"L_statetext: {"val": 0, "text": "Heizen"}}}`
	repaired := RepairText(broken)
	assert.Equal(`{"hk1": {"L_statetext": {"val": 0, "text": "Heizen"}}}`, repaired)

	// idempotent: a correct key is left alone
	assert.Equal(repaired, RepairText(repaired))

	// the payload parses after the repair
	payload, err := NormalizePayload([]byte(broken), "UTF-8")
	if err != nil {
		t.Error(err)
		return
	}
	env, ok := payload.Envelope("hk1", "L_statetext")
	assert.True(ok)
	assert.Equal("Heizen", env.Text)
}

func TestRepairControlChars(t *testing.T) {

	assert := assert.New(t)

	broken := "{\"pe1\": {\"L_info\": {\"val\": 0, \"text\": \"line one\nline two\ttabbed\"}}}"

	payload, err := NormalizePayload([]byte(broken), "UTF-8")
	if err != nil {
		t.Error(err)
		return
	}
	env, ok := payload.Envelope("pe1", "L_info")
	assert.True(ok)
	assert.Equal("line one\nline two\ttabbed", env.Text)

	// whitespace outside string literals is untouched
	assert.Equal("{\n\t\"a\": \"b\"}", RepairText("{\n\t\"a\": \"b\"}"))
}

func TestRepairDegreeSign(t *testing.T) {

	assert := assert.New(t)

	// a UTF-8 encoded degree sign read through a single-byte charset
	raw := []byte("{\"pe1\": {\"L_temp_act\": {\"val\": 612, \"unit\": \"\xc2\xb0C\"}}}")

	payload, err := NormalizePayload(raw, "ISO-8859-1")
	if err != nil {
		t.Error(err)
		return
	}
	env, ok := payload.Envelope("pe1", "L_temp_act")
	assert.True(ok)
	assert.Equal("°C", env.Unit)
}

func TestNormalizeCharsetDecoding(t *testing.T) {

	assert := assert.New(t)

	// 0xB0 is the degree sign in ISO-8859-1
	raw := []byte("{\"pe1\": {\"L_temp_act\": {\"val\": 612, \"unit\": \"\xb0C\"}}}")

	payload, err := NormalizePayload(raw, "ISO-8859-1")
	if err != nil {
		t.Error(err)
		return
	}
	env, ok := payload.Envelope("pe1", "L_temp_act")
	assert.True(ok)
	assert.Equal("°C", env.Unit)

	// default charset is ISO-8859-1
	payload, err = NormalizePayload(raw, "")
	if err != nil {
		t.Error(err)
		return
	}
	env, _ = payload.Envelope("pe1", "L_temp_act")
	assert.Equal("°C", env.Unit)
}
