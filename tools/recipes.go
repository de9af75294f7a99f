package tools

import (
	"strings"
)

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Map converts an ingredient to the plan-entry wire shape
func (i Ingredient) Map() map[string]any {
	m := map[string]any{"name": i.Name}
	if i.Quantity != "" {
		m["quantity"] = i.Quantity
	}
	if i.Unit != "" {
		m["unit"] = i.Unit
	}
	if i.Notes != "" {
		m["notes"] = i.Notes
	}
	return m
}

// Recipe is one catalogue entry
type Recipe struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Summary           string       `json:"summary"`
	Cuisine           string       `json:"cuisine"`
	DietTags          []string     `json:"diet_tags"`
	Ingredients       []Ingredient `json:"ingredients"`
	Steps             []string     `json:"steps"`
	PrepMinutes       int          `json:"prep_minutes"`
	CookMinutes       int          `json:"cook_minutes"`
	CaloriesPerPerson int          `json:"calories_per_person"`
	RequiredTools     []string     `json:"required_tools"`
}

// SearchOptions are the optional recipe search filters
type SearchOptions struct {
	Diet           string
	Cuisine        string
	MaxPrepMinutes int // 0 means no limit
	Limit          int // 0 means default of 5
}

// RecipeToolset searches a static, deterministic catalogue.
// Self-contained so the catalogue strategy works with no external services.
type RecipeToolset struct {
	catalogue []Recipe
}

// Search returns catalogue recipes matching a textual query and filters.
// An empty query matches everything.
func (t *RecipeToolset) Search(query string, opts SearchOptions) []Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	diet := strings.ToLower(strings.TrimSpace(opts.Diet))
	cuisine := strings.ToLower(strings.TrimSpace(opts.Cuisine))
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	var results []Recipe
	for _, recipe := range t.catalogue {
		if !recipeMatches(recipe, q, diet, cuisine, opts.MaxPrepMinutes) {
			continue
		}
		results = append(results, recipe)
		if len(results) >= limit {
			break
		}
	}
	return results
}

func recipeMatches(recipe Recipe, q, diet, cuisine string, maxPrep int) bool {
	if q != "" {
		blob := strings.ToLower(strings.Join([]string{
			recipe.Title, recipe.Summary, recipe.Cuisine, strings.Join(recipe.DietTags, " "),
		}, " "))
		// Every word of the query must appear somewhere in the blob
		matched := false
		for _, word := range strings.Fields(q) {
			if strings.Contains(blob, word) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if diet != "" {
		found := false
		for _, tag := range recipe.DietTags {
			if strings.Contains(strings.ToLower(tag), diet) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if cuisine != "" && !strings.Contains(strings.ToLower(recipe.Cuisine), cuisine) {
		return false
	}
	if maxPrep > 0 && recipe.PrepMinutes > maxPrep {
		return false
	}
	return true
}

// defaultCatalogue is the static recipe set backing the deterministic
// planning strategy. Ordering is stable; the architect relies on that
// for reproducible assignment.
var defaultCatalogue = []Recipe{
	{
		ID:      "oats-berries",
		Title:   "Overnight Oats with Berries",
		Summary: "Creamy oats soaked overnight, topped with mixed berries and seeds.",
		Cuisine: "Global", DietTags: []string{"vegetarian", "quick", "breakfast"},
		Ingredients: []Ingredient{
			{Name: "rolled oats", Quantity: "1", Unit: "cup"},
			{Name: "milk", Quantity: "1", Unit: "cup"},
			{Name: "mixed berries", Quantity: "1/2", Unit: "cup"},
			{Name: "chia seeds", Quantity: "1", Unit: "tbsp"},
		},
		Steps:       []string{"Combine oats, milk, and chia seeds in a jar.", "Refrigerate overnight.", "Top with berries before serving."},
		PrepMinutes: 10, CookMinutes: 0, CaloriesPerPerson: 380,
		RequiredTools: []string{"mixing bowl"},
	},
	{
		ID:      "shakshuka-skillet",
		Title:   "Smoky Breakfast Shakshuka",
		Summary: "Eggs poached in a spiced tomato and pepper sauce, breakfast skillet style.",
		Cuisine: "Middle Eastern", DietTags: []string{"vegetarian", "high-protein", "breakfast"},
		Ingredients: []Ingredient{
			{Name: "eggs", Quantity: "4"},
			{Name: "tomato", Quantity: "4", Notes: "crushed"},
			{Name: "red pepper", Quantity: "1"},
			{Name: "cumin", Quantity: "1", Unit: "tsp"},
		},
		Steps:       []string{"Simmer tomatoes, pepper, and spices.", "Crack eggs into wells and cover until just set."},
		PrepMinutes: 10, CookMinutes: 20, CaloriesPerPerson: 420,
		RequiredTools: []string{"skillet"},
	},
	{
		ID:      "banana-oat-pancakes",
		Title:   "Banana Oat Pancakes",
		Summary: "Blender pancakes from oats and ripe banana, naturally sweet breakfast stack.",
		Cuisine: "American", DietTags: []string{"vegetarian", "breakfast", "quick"},
		Ingredients: []Ingredient{
			{Name: "rolled oats", Quantity: "1", Unit: "cup"},
			{Name: "banana", Quantity: "2", Notes: "ripe"},
			{Name: "eggs", Quantity: "2"},
		},
		Steps:       []string{"Blend all ingredients to a batter.", "Cook small pancakes until golden on both sides."},
		PrepMinutes: 5, CookMinutes: 15, CaloriesPerPerson: 390,
		RequiredTools: []string{"blender", "skillet"},
	},
	{
		ID:      "veg-bento",
		Title:   "Rainbow Veggie Bento",
		Summary: "Colorful lunchbox with marinated tofu, rice, and crisp vegetables.",
		Cuisine: "Japanese-inspired", DietTags: []string{"vegetarian", "high-fiber", "lunch"},
		Ingredients: []Ingredient{
			{Name: "tofu", Quantity: "200", Unit: "g", Notes: "marinated"},
			{Name: "rice", Quantity: "1", Unit: "cup"},
			{Name: "carrot", Quantity: "1", Notes: "ribboned"},
			{Name: "cucumber", Quantity: "1/2"},
		},
		Steps:       []string{"Cook rice and let it cool slightly.", "Sear tofu until golden.", "Pack rice, tofu, and vegetables into compartments."},
		PrepMinutes: 30, CookMinutes: 15, CaloriesPerPerson: 480,
		RequiredTools: []string{"knife", "cutting board"},
	},
	{
		ID:      "salmon-bowl",
		Title:   "Herb-Roasted Salmon Grain Bowl",
		Summary: "Roasted salmon over quinoa with crunchy vegetables and a citrus-herb dressing.",
		Cuisine: "Mediterranean", DietTags: []string{"high-protein", "omega-3", "gluten-free", "lunch"},
		Ingredients: []Ingredient{
			{Name: "salmon fillet", Quantity: "2"},
			{Name: "quinoa", Quantity: "1", Unit: "cup"},
			{Name: "spinach", Quantity: "2", Unit: "cups"},
			{Name: "lemon", Quantity: "1"},
		},
		Steps:       []string{"Roast salmon with herbs.", "Cook quinoa.", "Assemble bowls with spinach and dressing."},
		PrepMinutes: 15, CookMinutes: 20, CaloriesPerPerson: 560,
		RequiredTools: []string{"oven", "saucepan"},
	},
	{
		ID:      "harvest-grain-salad",
		Title:   "Harvest Grain and Kale Salad",
		Summary: "Warm grains tossed with kale, roasted squash, and toasted seeds for lunch.",
		Cuisine: "Global", DietTags: []string{"vegan", "high-fiber", "lunch"},
		Ingredients: []Ingredient{
			{Name: "farro", Quantity: "1", Unit: "cup"},
			{Name: "kale", Quantity: "2", Unit: "cups"},
			{Name: "butternut squash", Quantity: "2", Unit: "cups", Notes: "cubed"},
			{Name: "pumpkin seeds", Quantity: "2", Unit: "tbsp"},
		},
		Steps:       []string{"Roast squash until caramelized.", "Simmer farro until tender.", "Massage kale and toss everything with vinaigrette."},
		PrepMinutes: 15, CookMinutes: 30, CaloriesPerPerson: 510,
		RequiredTools: []string{"oven", "saucepan", "mixing bowl"},
	},
	{
		ID:      "chicken-wrap",
		Title:   "Grilled Chicken and Greens Wrap",
		Summary: "Quick lunch wrap with grilled chicken, crisp lettuce, and yogurt dressing.",
		Cuisine: "American", DietTags: []string{"high-protein", "quick", "lunch"},
		Ingredients: []Ingredient{
			{Name: "chicken breast", Quantity: "2"},
			{Name: "tortilla", Quantity: "4"},
			{Name: "lettuce", Quantity: "1", Unit: "cup"},
			{Name: "yogurt", Quantity: "1/2", Unit: "cup"},
		},
		Steps:       []string{"Grill chicken and slice thin.", "Spread dressing, layer fillings, and roll tight."},
		PrepMinutes: 10, CookMinutes: 12, CaloriesPerPerson: 520,
		RequiredTools: []string{"grill pan", "knife"},
	},
	{
		ID:      "veggie-chili",
		Title:   "Smoky Three-Bean Chili",
		Summary: "Hearty bean chili with tomatoes, peppers, and warm spices.",
		Cuisine: "Tex-Mex", DietTags: []string{"vegan", "high-fiber", "batch-cooking", "dinner"},
		Ingredients: []Ingredient{
			{Name: "mixed beans", Quantity: "3", Unit: "cups"},
			{Name: "tomato", Quantity: "4", Notes: "crushed"},
			{Name: "onion", Quantity: "1"},
			{Name: "paprika", Quantity: "2", Unit: "tsp", Notes: "smoked"},
		},
		Steps:       []string{"Sweat onion with spices.", "Add beans and tomatoes.", "Simmer 30 minutes and adjust seasoning."},
		PrepMinutes: 15, CookMinutes: 40, CaloriesPerPerson: 540,
		RequiredTools: []string{"stock pot"},
	},
	{
		ID:      "sheet-pan-gnocchi",
		Title:   "Sheet-Pan Gnocchi with Vegetables",
		Summary: "Crispy gnocchi roasted with broccoli, peppers, and olive oil, weeknight dinner.",
		Cuisine: "Italian", DietTags: []string{"vegetarian", "quick", "dinner"},
		Ingredients: []Ingredient{
			{Name: "gnocchi", Quantity: "500", Unit: "g"},
			{Name: "broccoli", Quantity: "2", Unit: "cups"},
			{Name: "red pepper", Quantity: "1"},
			{Name: "olive oil", Quantity: "3", Unit: "tbsp"},
		},
		Steps:       []string{"Toss everything on a sheet pan.", "Roast hot until gnocchi crisp at the edges."},
		PrepMinutes: 10, CookMinutes: 25, CaloriesPerPerson: 580,
		RequiredTools: []string{"oven", "sheet pan"},
	},
	{
		ID:      "miso-noodle-soup",
		Title:   "Ginger Miso Noodle Soup",
		Summary: "Brothy dinner noodles with miso, ginger, greens, and soft tofu.",
		Cuisine: "Japanese-inspired", DietTags: []string{"vegan", "dinner"},
		Ingredients: []Ingredient{
			{Name: "noodles", Quantity: "200", Unit: "g"},
			{Name: "miso paste", Quantity: "3", Unit: "tbsp"},
			{Name: "tofu", Quantity: "150", Unit: "g", Notes: "soft"},
			{Name: "spinach", Quantity: "2", Unit: "cups"},
		},
		Steps:       []string{"Simmer broth with ginger.", "Whisk in miso off the heat.", "Add noodles, tofu, and greens."},
		PrepMinutes: 10, CookMinutes: 15, CaloriesPerPerson: 460,
		RequiredTools: []string{"saucepan", "whisk"},
	},
	{
		ID:      "lentil-curry",
		Title:   "Coconut Red Lentil Curry",
		Summary: "Velvety lentil curry with coconut milk, warm spices, and brown rice.",
		Cuisine: "Indian-inspired", DietTags: []string{"vegan", "high-protein", "batch-cooking", "dinner"},
		Ingredients: []Ingredient{
			{Name: "red lentils", Quantity: "1.5", Unit: "cups"},
			{Name: "coconut milk", Quantity: "1", Unit: "can"},
			{Name: "brown rice", Quantity: "1", Unit: "cup"},
			{Name: "garlic", Quantity: "3", Unit: "cloves"},
		},
		Steps:       []string{"Bloom spices with garlic.", "Add lentils and coconut milk, simmer until soft.", "Serve over brown rice."},
		PrepMinutes: 10, CookMinutes: 30, CaloriesPerPerson: 600,
		RequiredTools: []string{"saucepan"},
	},
	{
		ID:      "fish-tacos",
		Title:   "Crispy Fish Tacos with Slaw",
		Summary: "Pan-seared white fish in tortillas with citrus slaw and lime yogurt.",
		Cuisine: "Mexican", DietTags: []string{"high-protein", "dinner"},
		Ingredients: []Ingredient{
			{Name: "white fish", Quantity: "400", Unit: "g"},
			{Name: "tortilla", Quantity: "8", Notes: "small"},
			{Name: "cabbage", Quantity: "2", Unit: "cups", Notes: "shredded"},
			{Name: "lime", Quantity: "2"},
		},
		Steps:       []string{"Sear seasoned fish until flaky.", "Toss slaw with lime.", "Build tacos and finish with yogurt drizzle."},
		PrepMinutes: 15, CookMinutes: 10, CaloriesPerPerson: 550,
		RequiredTools: []string{"skillet", "knife", "cutting board"},
	},
	{
		ID:      "quinoa-stuffed-peppers",
		Title:   "Quinoa-Stuffed Roasted Peppers",
		Summary: "Bell peppers filled with herbed quinoa, beans, and melted cheese.",
		Cuisine: "Mediterranean", DietTags: []string{"vegetarian", "whole-grain", "dinner"},
		Ingredients: []Ingredient{
			{Name: "bell pepper", Quantity: "4"},
			{Name: "quinoa", Quantity: "1", Unit: "cup"},
			{Name: "black beans", Quantity: "1", Unit: "cup"},
			{Name: "cheese", Quantity: "1/2", Unit: "cup", Notes: "grated"},
		},
		Steps:       []string{"Cook quinoa and fold in beans.", "Stuff peppers and top with cheese.", "Bake until peppers soften."},
		PrepMinutes: 20, CookMinutes: 35, CaloriesPerPerson: 520,
		RequiredTools: []string{"oven", "baking dish"},
	},
	{
		ID:      "green-smoothie-bowl",
		Title:   "Green Power Smoothie Bowl",
		Summary: "Thick spinach and banana smoothie bowl with crunchy seasonal toppings.",
		Cuisine: "Global", DietTags: []string{"vegan", "quick", "breakfast"},
		Ingredients: []Ingredient{
			{Name: "spinach", Quantity: "2", Unit: "cups"},
			{Name: "banana", Quantity: "2", Notes: "frozen"},
			{Name: "oats", Quantity: "1/4", Unit: "cup"},
			{Name: "almond butter", Quantity: "1", Unit: "tbsp"},
		},
		Steps:       []string{"Blend greens, banana, and oats until thick.", "Scoop into bowls and top generously."},
		PrepMinutes: 10, CookMinutes: 0, CaloriesPerPerson: 350,
		RequiredTools: []string{"blender"},
	},
}
