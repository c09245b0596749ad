package models

import "strings"

// BodyPart categorizes an exercise by the muscle group it primarily targets.
type BodyPart string

const (
	BodyPartChest     BodyPart = "chest"
	BodyPartBack      BodyPart = "back"
	BodyPartShoulders BodyPart = "shoulders"
	BodyPartArms      BodyPart = "arms"
	BodyPartLegs      BodyPart = "legs"
	BodyPartCore      BodyPart = "core"
	BodyPartOther     BodyPart = "other"
)

// BodyParts lists all known categories in display order.
var BodyParts = []BodyPart{
	BodyPartChest,
	BodyPartBack,
	BodyPartShoulders,
	BodyPartArms,
	BodyPartLegs,
	BodyPartCore,
	BodyPartOther,
}

// ParseBodyPart maps a stored value to a known category. Empty or unknown
// values (records created before categories existed) become "other".
func ParseBodyPart(s string) BodyPart {
	v := BodyPart(strings.ToLower(strings.TrimSpace(s)))
	for _, bp := range BodyParts {
		if v == bp {
			return bp
		}
	}
	return BodyPartOther
}
