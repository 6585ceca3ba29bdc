// Package submit turns edited form values into backend writes: a single
// generic payload, or an ordered multi-call plan with optional compensation.
package submit

import (
	"github.com/goliatone/go-formwizard/pkg/controls"
)

// DefaultCreatorField is stamped on generic payloads with the session user.
const DefaultCreatorField = "creado_por_usuario_id"

// Generic extracts every control's payload value. Untouched optional text is
// sent as nil. When creatorField is empty DefaultCreatorField is used; a nil
// creator leaves the field out.
func Generic(cs []controls.Control, creatorField string, creator any) map[string]any {
	out := make(map[string]any, len(cs)+1)
	for _, c := range cs {
		if c == nil {
			continue
		}
		out[c.Key()] = controls.Payload(c)
	}
	if creator != nil {
		if creatorField == "" {
			creatorField = DefaultCreatorField
		}
		out[creatorField] = creator
	}
	return out
}
