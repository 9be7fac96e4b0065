package discovery

import (
	"strconv"
	"strings"
	"unicode"

	"pellematic2mqtt/internal/core/domain"
)

// ScanComponents groups the payload's top-level keys into typed component
// instances, preserving encounter order. Keys with no known prefix are
// kept as unknown components so that new controller subsystems surface as
// generic sensors instead of disappearing.
func ScanComponents(payload *domain.RawPayload) []domain.Component {
	var components []domain.Component
	for _, raw := range payload.Components {
		if len(raw.Fields) == 0 {
			// value present but no envelope-bearing sub-keys
			continue
		}
		kind, index := matchComponentKey(raw.Key)
		components = append(components, domain.Component{
			Key:    raw.Key,
			Kind:   kind,
			Index:  index,
			Fields: raw.Fields,
		})
	}
	return components
}

func matchComponentKey(key string) (domain.ComponentKind, int) {
	prefix := strings.TrimRightFunc(key, unicode.IsDigit)
	entry, ok := domain.ComponentPrefixTable[prefix]
	if !ok {
		return domain.COMPONENT_KIND_UNKNOWN, 0
	}
	if !entry.Indexed || len(prefix) == len(key) {
		return entry.Kind, 0
	}
	index, err := strconv.Atoi(key[len(prefix):])
	if err != nil {
		return entry.Kind, 0
	}
	return entry.Kind, index
}
