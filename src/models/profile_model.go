package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the public marketplace identity of an account: a family looking
// for care or a provider offering it. Connections reference profiles by id
// only; deleting an account does not cascade into its connection history.
type Profile struct {
	Id          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind        ProfileKind        `json:"kind" bson:"kind"`
	DisplayName string             `json:"display_name" bson:"display_name"`
	Headline    string             `json:"headline" bson:"headline"`
	Bio         string             `json:"bio" bson:"bio"`
	Location    string             `json:"location" bson:"location"`
	State       string             `json:"state" bson:"state"`
	CareTypes   []string           `json:"care_types" bson:"care_types"`
	HourlyRate  float64            `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty"`
	PhotoURL    string             `json:"photo_url" bson:"photo_url"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ProfileKind string

const (
	ProfileKindFamily   ProfileKind = "family"
	ProfileKindProvider ProfileKind = "provider"
)

type ProfileDto struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Kind        ProfileKind        `bson:"kind" json:"kind"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	Headline    string             `bson:"headline" json:"headline,omitempty"`
	Location    string             `bson:"location" json:"location,omitempty"`
	PhotoURL    string             `bson:"photo_url" json:"photo_url,omitempty"`
}

// CompletenessScore rates how filled-in a profile is, 0 to 100. Each field
// contributes a fixed weight; the hourly rate only counts for providers, so
// the earned weight is normalized against the weights that apply to the
// profile's kind. Used by the portal to nudge owners toward a full profile.
func (p *Profile) CompletenessScore() int {
	type check struct {
		weight int
		filled bool
	}
	checks := []check{
		{20, p.DisplayName != ""},
		{10, p.Headline != ""},
		{15, p.Bio != ""},
		{10, p.Location != ""},
		{20, len(p.CareTypes) > 0},
		{15, p.PhotoURL != ""},
	}
	if p.Kind == ProfileKindProvider {
		checks = append(checks, check{10, p.HourlyRate > 0})
	}

	total, earned := 0, 0
	for _, ch := range checks {
		total += ch.weight
		if ch.filled {
			earned += ch.weight
		}
	}
	if total == 0 {
		return 0
	}
	return earned * 100 / total
}
