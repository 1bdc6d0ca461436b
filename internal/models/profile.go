package models

import (
	"sort"
	"strings"
	"time"
)

// UserProfile holds the dietary preferences of one voice user. The same
// struct is stored in DynamoDB and in SQL; Allergies is a set and is kept
// in its own table on the SQL side.
type UserProfile struct {
	UserID    string    `gorm:"primaryKey;size:256" json:"userId" dynamodbav:"UserId"`
	Diet      *string   `gorm:"size:64" json:"diet,omitempty" dynamodbav:"diet,omitempty"`
	Allergies []string  `gorm:"-" json:"allergies" dynamodbav:"allergies,stringset,omitempty"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"-"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"-"`

	AllergenRows []Allergen `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-" dynamodbav:"-"`
}

func (UserProfile) TableName() string {
	return "voice_user_profiles"
}

// NewUserProfile returns the profile created on first access
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{UserID: userID, Allergies: []string{}}
}

// DietLabel returns the diet or an empty string
func (p *UserProfile) DietLabel() string {
	if p == nil || p.Diet == nil {
		return ""
	}
	return *p.Diet
}

// Normalize makes Allergies a sorted set, never nil
func (p *UserProfile) Normalize() {
	p.Allergies = NormalizeAllergies(p.Allergies)
}

// NormalizeAllergies trims, lower-cases and de-duplicates allergy names.
// The result is sorted and never nil.
func NormalizeAllergies(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
