package fdc

import "encoding/json"

const (
	NUTRIENT_ENERGY        int64 = 1008
	NUTRIENT_TOTAL_FAT     int64 = 1004
	NUTRIENT_SATURATED_FAT int64 = 1258
	NUTRIENT_CHOLESTEROL   int64 = 1253
	NUTRIENT_CARBOHYDRATE  int64 = 1005
	NUTRIENT_FIBER         int64 = 1079
	NUTRIENT_SUGARS        int64 = 2000
	NUTRIENT_PROTEIN       int64 = 1003
)

// Target is a nutrient that is kept out of a food's nutrient list.
type Target struct {
	// Field is the key the nutrient is stored under in a Profile.
	Field string
	// Name is what FoodData Central calls the nutrient.
	Name string
	Id   int64
}

// Targets are the only nutrients ever extracted, in output order.
var Targets = []Target{
	{Field: "Calories", Name: "Energy", Id: NUTRIENT_ENERGY},
	{Field: "Total Fat", Name: "Total lipid (fat)", Id: NUTRIENT_TOTAL_FAT},
	{Field: "Total Sat Fat", Name: "Fatty acids, total saturated", Id: NUTRIENT_SATURATED_FAT},
	{Field: "Cholesterol", Name: "Cholesterol", Id: NUTRIENT_CHOLESTEROL},
	{Field: "Total Carbs", Name: "Carbohydrate, by difference", Id: NUTRIENT_CARBOHYDRATE},
	{Field: "Fiber", Name: "Fiber, total dietary", Id: NUTRIENT_FIBER},
	{Field: "Sugars", Name: "Sugars, total including NLEA", Id: NUTRIENT_SUGARS},
	{Field: "Protein", Name: "Protein", Id: NUTRIENT_PROTEIN},
}

// Profile holds the target nutrients of a food, a nil field means the food's
// nutrient list did not have it. Values are kept exactly as the api returned them.
type Profile struct {
	Calories    *json.Number `json:"Calories"`
	TotalFat    *json.Number `json:"Total Fat"`
	TotalSatFat *json.Number `json:"Total Sat Fat"`
	Cholesterol *json.Number `json:"Cholesterol"`
	TotalCarbs  *json.Number `json:"Total Carbs"`
	Fiber       *json.Number `json:"Fiber"`
	Sugars      *json.Number `json:"Sugars"`
	Protein     *json.Number `json:"Protein"`
}

func (p *Profile) slot(id int64) **json.Number {
	switch id {
	case NUTRIENT_ENERGY:
		return &p.Calories
	case NUTRIENT_TOTAL_FAT:
		return &p.TotalFat
	case NUTRIENT_SATURATED_FAT:
		return &p.TotalSatFat
	case NUTRIENT_CHOLESTEROL:
		return &p.Cholesterol
	case NUTRIENT_CARBOHYDRATE:
		return &p.TotalCarbs
	case NUTRIENT_FIBER:
		return &p.Fiber
	case NUTRIENT_SUGARS:
		return &p.Sugars
	case NUTRIENT_PROTEIN:
		return &p.Protein
	}
	return nil
}

// Get returns the value stored for a target nutrient id, nil if absent or not a target.
func (p Profile) Get(id int64) *json.Number {
	slot := p.slot(id)
	if slot == nil {
		return nil
	}
	return *slot
}

// Extract keeps the target nutrients of a nutrient list. When an id repeats the later
// entry wins, entries without a value count as absent.
func Extract(nutrients []FoodNutrient) Profile {
	var profile Profile
	for _, n := range nutrients {
		slot := profile.slot(n.NutrientId)
		if slot == nil || n.Value == "" {
			continue
		}
		value := n.Value
		*slot = &value
	}
	return profile
}
