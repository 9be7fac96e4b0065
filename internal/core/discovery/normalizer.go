package discovery

import (
	"encoding/json"
	"fmt"
	"strings"

	"pellematic2mqtt/internal/core/domain"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	brokenStatetextKey   = `"L_statetext:`
	repairedStatetextKey = `"L_statetext":`

	// UTF-8 degree sign decoded through a single-byte charmap.
	brokenDegreeSign = "Â°"
	degreeSign       = "°"
)

// NormalizePayload decodes the raw controller response with the declared
// charset, applies the known textual repairs and parses it into an
// order-preserving payload. Parse failure after repairs is reported as
// ErrMalformedPayload; retrying is the caller's job.
func NormalizePayload(raw []byte, charset string) (*domain.RawPayload, error) {
	text, err := decodeCharset(raw, charset)
	if err != nil {
		return nil, fmt.Errorf("%w: charset %q: %v", ErrMalformedPayload, charset, err)
	}

	text = RepairText(text)

	payload, err := parseOrdered(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return payload, nil
}

// RepairText applies the fixed, ordered repair set for known malformed
// emission patterns. Each repair rewrites only its exact pattern, so the
// function is idempotent and leaves unrelated text untouched.
func RepairText(text string) string {
	// missing closing quote on the statetext key
	text = strings.ReplaceAll(text, brokenStatetextKey, repairedStatetextKey)
	// raw control characters inside string literals are JSON-illegal
	text = escapeControlChars(text)
	// degree sign mangled by a non-round-tripping charset declaration
	text = strings.ReplaceAll(text, brokenDegreeSign, degreeSign)
	return text
}

func decodeCharset(raw []byte, charset string) (string, error) {
	var dec *encoding.Decoder
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "iso-8859-1", "iso8859-1", "latin1":
		dec = charmap.ISO8859_1.NewDecoder()
	case "windows-1252", "cp1252":
		dec = charmap.Windows1252.NewDecoder()
	case "utf-8", "utf8":
		dec = unicode.UTF8.NewDecoder()
	default:
		return "", fmt.Errorf("unsupported charset %q", charset)
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func escapeControlChars(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseOrdered walks the JSON token stream so that component and field
// encounter order survives into the payload. Top-level scalars are
// ignored per the device interface contract.
func parseOrdered(text string) (*domain.RawPayload, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top-level value is not an object")
	}

	var payload domain.RawPayload
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v as object key", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields, isObject, err := parseComponentFields(value)
		if err != nil {
			return nil, err
		}
		if !isObject {
			continue
		}
		payload.Components = append(payload.Components, domain.RawComponent{
			Key:    key,
			Fields: fields,
		})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return &payload, nil
}

func parseComponentFields(value json.RawMessage) ([]domain.RawField, bool, error) {
	trimmed := strings.TrimSpace(string(value))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, false, err
	}

	var fields []domain.RawField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, false, fmt.Errorf("unexpected token %v as field key", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false, err
		}
		env, ok := parseEnvelope(raw)
		if !ok {
			// not an envelope (scalar or missing val), no entity-worthy data
			continue
		}
		fields = append(fields, domain.RawField{Key: key, Envelope: env})
	}
	if _, err := dec.Token(); err != nil {
		return nil, false, err
	}
	return fields, true, nil
}

func parseEnvelope(raw json.RawMessage) (domain.ValueEnvelope, bool) {
	var probe struct {
		Val    *float64 `json:"val"`
		Unit   string   `json:"unit"`
		Factor *float64 `json:"factor"`
		Text   string   `json:"text"`
		Format string   `json:"format"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Val == nil {
		return domain.ValueEnvelope{}, false
	}
	return domain.ValueEnvelope{
		Val:    *probe.Val,
		Unit:   probe.Unit,
		Factor: probe.Factor,
		Text:   probe.Text,
		Format: probe.Format,
		Min:    probe.Min,
		Max:    probe.Max,
	}, true
}
