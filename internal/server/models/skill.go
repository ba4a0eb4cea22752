// Package models defines server-side data models persisted in the database
// and the payload shapes exchanged with API clients.
package models

// Skill is a training topic. References are attached on read and are never
// persisted through the skill row itself.
type Skill struct {
	ID          int64        `json:"skill_id"`
	Name        string       `json:"skill_name"`
	Description string       `json:"skill_description"`
	References  []*Reference `json:"references"`
}

// Reference is a learning resource owned by exactly one skill.
type Reference struct {
	ID           int64  `json:"reference_id"`
	Link         string `json:"ref_link"`
	Category     int    `json:"ref_category"`
	LengthInMins int    `json:"length_in_mins"`
	SkillID      int64  `json:"skill_id"`
}

// ReferenceInput is a reference as supplied by a client, before it is bound
// to a skill.
type ReferenceInput struct {
	Link         string `json:"ref_link"`
	Category     int    `json:"ref_category"`
	LengthInMins int    `json:"length_in_mins"`
}

// SkillInput is the validated body of a create or update request.
// References is nil when the field was absent and non-nil (possibly empty)
// when it was present.
type SkillInput struct {
	Name        string           `json:"skill_name"`
	Description string           `json:"skill_description"`
	References  []ReferenceInput `json:"references"`
}
