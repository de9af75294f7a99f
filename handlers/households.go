package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
	"github.com/rohanthewiz/serr"

	"ecofood/db"
)

// CreateHouseholdRequest is the JSON body for household creation
type CreateHouseholdRequest struct {
	Name         string           `json:"name"`
	EcoFriendly  bool             `json:"eco_friendly"`
	UseLeftovers bool             `json:"use_leftovers"`
	Members      []MemberRequest  `json:"members"`
	KitchenTools []db.KitchenTool `json:"kitchen_tools"`
	PantryItems  []db.PantryItem  `json:"pantry_items"`
}

// MemberRequest mirrors HouseholdMember with pointer meal flags so an
// omitted flag defaults to attending rather than to false
type MemberRequest struct {
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Allergens     []string       `json:"allergens"`
	Likes         []string       `json:"likes"`
	EatsBreakfast *bool          `json:"eats_breakfast"`
	EatsLunch     *bool          `json:"eats_lunch"`
	EatsDinner    *bool          `json:"eats_dinner"`
	MealSchedule  map[string]any `json:"meal_schedule"`
}

func (m MemberRequest) toRow() db.HouseholdMember {
	attends := func(flag *bool) bool {
		if flag == nil {
			return true
		}
		return *flag
	}
	return db.HouseholdMember{
		Name:          m.Name,
		Role:          m.Role,
		Allergens:     m.Allergens,
		Likes:         m.Likes,
		EatsBreakfast: attends(m.EatsBreakfast),
		EatsLunch:     attends(m.EatsLunch),
		EatsDinner:    attends(m.EatsDinner),
		MealSchedule:  m.MealSchedule,
	}
}

func listHouseholdsHandler(c rweb.Context) error {
	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	households, err := database.ListHouseholds()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to list households"), 500)
	}

	return c.WriteJSON(households)
}

func createHouseholdHandler(c rweb.Context) error {
	var req CreateHouseholdRequest
	if err := json.Unmarshal(c.Request().Body(), &req); err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid request body"})
	}

	members := make([]db.HouseholdMember, 0, len(req.Members))
	for _, member := range req.Members {
		members = append(members, member.toRow())
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	household, err := database.CreateHousehold(db.HouseholdParams{
		Name:         req.Name,
		EcoFriendly:  req.EcoFriendly,
		UseLeftovers: req.UseLeftovers,
		Members:      members,
		KitchenTools: req.KitchenTools,
		PantryItems:  req.PantryItems,
	})
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to create household"), 500)
	}

	logger.F("Created household %d (%s)", household.ID, household.Name)
	return c.WriteJSON(household)
}

func getHouseholdHandler(c rweb.Context) error {
	id, err := strconv.ParseInt(c.Request().Param("id"), 10, 64)
	if err != nil {
		c.Response().SetStatus(400)
		return c.WriteJSON(map[string]string{"error": "invalid household id"})
	}

	database, err := db.GetDB()
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to get database"), 500)
	}

	household, err := database.GetHousehold(id)
	if err != nil {
		return c.WriteError(serr.Wrap(err, "failed to load household"), 500)
	}
	if household == nil {
		c.Response().SetStatus(404)
		return c.WriteJSON(map[string]string{"error": "household not found"})
	}

	return c.WriteJSON(household)
}
