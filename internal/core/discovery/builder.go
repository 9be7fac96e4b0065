package discovery

import (
	"pellematic2mqtt/internal/core/domain"
)

// Discover runs the full pipeline on one payload: scan components,
// classify every field, disambiguate labels per component and assemble
// the per-component entity groups in encounter order. The pass is pure
// and idempotent: the same payload always yields the same definitions.
func Discover(payload *domain.RawPayload) []domain.ComponentEntities {
	var groups []domain.ComponentEntities
	for _, component := range ScanComponents(payload) {
		var defs []domain.EntityDefinition
		for _, field := range component.Fields {
			def, ok := ClassifyField(component.Key, field)
			if !ok {
				continue
			}
			defs = append(defs, def)
		}
		if len(defs) == 0 {
			continue
		}
		groups = append(groups, domain.ComponentEntities{
			Component: component,
			Entities:  DisambiguateLabels(defs),
		})
	}
	return groups
}

// EntityList flattens the grouped definitions into the final ordered
// sequence handed to the presentation layer.
func EntityList(groups []domain.ComponentEntities) []domain.EntityDefinition {
	var defs []domain.EntityDefinition
	for _, group := range groups {
		defs = append(defs, group.Entities...)
	}
	return defs
}
