package service

import (
	"regexp"
	"strings"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
	"github.com/pageza/alchemorsel-voice/backend/internal/spoonacular"
)

const dietVegan = "vegan"

// veganImplied are the intolerances a vegan search always sends
var veganImplied = []string{"dairy", "eggs"}

// nonVeganTitle matches whole words only, so "Cheeseburger" passes and
// "Grilled Cheese Sandwich" does not.
var nonVeganTitle = regexp.MustCompile(`(?i)\b(?:beef|pork|lamb|chicken|turkey|fish|salmon|tuna|shrimp|cheese|milk|yogurt|butter|cream|paneer|egg|honey)\b`)

// DietFilter turns a profile's diet and allergies into upstream query
// parameters and a post-fetch title check.
type DietFilter struct {
	Diet         string
	Vegan        bool
	Intolerances []string
}

// NewDietFilter builds the filter for a diet and allergy set
func NewDietFilter(diet string, allergies []string) DietFilter {
	f := DietFilter{Diet: strings.TrimSpace(diet)}
	intolerances := append([]string(nil), allergies...)
	if strings.EqualFold(f.Diet, dietVegan) {
		f.Vegan = true
		intolerances = append(intolerances, veganImplied...)
	}
	f.Intolerances = models.NormalizeAllergies(intolerances)
	return f
}

// NewDietFilterForProfile builds the filter for a stored profile
func NewDietFilterForProfile(profile *models.UserProfile) DietFilter {
	if profile == nil {
		return NewDietFilter("", nil)
	}
	return NewDietFilter(profile.DietLabel(), profile.Allergies)
}

// SearchParams returns the upstream query. The upstream has no vegan
// diet, so vegan is enforced through intolerances and Allows instead.
func (f DietFilter) SearchParams(ingredients []string, number int) spoonacular.SearchParams {
	params := spoonacular.SearchParams{
		Ingredients:  ingredients,
		Number:       number,
		Intolerances: f.Intolerances,
	}
	if !f.Vegan {
		params.Diet = f.Diet
	}
	return params
}

// Allows reports whether a recipe title passes the post-fetch check
func (f DietFilter) Allows(title string) bool {
	if !f.Vegan {
		return true
	}
	return !nonVeganTitle.MatchString(title)
}

// Apply returns the recipes that pass Allows, keeping upstream order
func (f DietFilter) Apply(recipes []spoonacular.Recipe) []spoonacular.Recipe {
	if !f.Vegan {
		return recipes
	}
	kept := make([]spoonacular.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.Allows(r.Title) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Describe renders the filter for a spoken message, for example
// " for your vegan diet avoiding dairy,eggs". It is empty without a filter.
func (f DietFilter) Describe() string {
	var b strings.Builder
	if f.Diet != "" {
		b.WriteString(" for your ")
		b.WriteString(f.Diet)
		b.WriteString(" diet")
	}
	if len(f.Intolerances) > 0 {
		b.WriteString(" avoiding ")
		b.WriteString(strings.Join(f.Intolerances, ","))
	}
	return b.String()
}
