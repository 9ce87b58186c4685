package catalog

import "github.com/ellavondegurechaff/societybot/societybot/database/models"

func intPtr(v int) *int { return &v }

// DefaultItems is the item set seeded into an empty catalog. Raw resources
// come from the harvesting jobs, tools carry durability, and producibles name
// their ingredient lists.
func DefaultItems() []*models.Item {
	return []*models.Item{
		// raw resources
		{ItemTag: "Wood", BasePrice: 10},
		{ItemTag: "Rubber", BasePrice: 25},
		{ItemTag: "Iron", BasePrice: 20},
		{ItemTag: "Minerals", BasePrice: 40},
		{ItemTag: "Coal", BasePrice: 15},
		{ItemTag: "Phosphorus", BasePrice: 12},
		{ItemTag: "Grain", BasePrice: 8},
		{ItemTag: "Wool", BasePrice: 12},
		{ItemTag: "Fish", BasePrice: 10},
		{ItemTag: "Leather", BasePrice: 18},
		{ItemTag: "Gold", BasePrice: 250},
		{ItemTag: "Diamond", BasePrice: 400},
		{ItemTag: "Water", BasePrice: 5},
		{ItemTag: "Natural Gas", BasePrice: 30},
		{ItemTag: "Petroleum", BasePrice: 35},

		// tools
		{ItemTag: "Tool", BasePrice: 25, Producible: true, Ingredients: "Wood:1,Iron:1", Worksteps: 1, Durability: intPtr(20)},
		{ItemTag: "Axe", BasePrice: 50, Producible: true, Ingredients: "Wood:2,Iron:1", Worksteps: 2, Durability: intPtr(30)},
		{ItemTag: "Chainsaw", BasePrice: 400, Producible: true, Ingredients: "Iron:4,Rubber:2", Worksteps: 5, Durability: intPtr(60)},
		{ItemTag: "Pickaxe", BasePrice: 60, Producible: true, Ingredients: "Wood:2,Iron:2", Worksteps: 2, Durability: intPtr(30)},
		{ItemTag: "Mining Machine", BasePrice: 500, Producible: true, Ingredients: "Iron:6,Rubber:2,Coal:2", Worksteps: 6, Durability: intPtr(80)},
		{ItemTag: "Fertilizer", BasePrice: 40, Producible: true, Ingredients: "Phosphorus:2", Worksteps: 1, Durability: intPtr(10)},
		{ItemTag: "Tractor", BasePrice: 600, Producible: true, Ingredients: "Iron:5,Rubber:4,Petroleum:1", Worksteps: 7, Durability: intPtr(100)},

		// goods
		{ItemTag: "Grocery", BasePrice: 15, Producible: true, Ingredients: "Grain:1,Fish:1", Worksteps: 1},
		{ItemTag: "Fabric", BasePrice: 30, Producible: true, Ingredients: "Wool:2", Worksteps: 2},
		{ItemTag: "Plastic", BasePrice: 45, Producible: true, Ingredients: "Petroleum:1,Natural Gas:1", Worksteps: 2},
		{ItemTag: "Steel", BasePrice: 55, Producible: true, Ingredients: "Iron:2,Coal:1", Worksteps: 3},
		{ItemTag: "Furniture", BasePrice: 80, Producible: true, Ingredients: "Wood:4,Fabric:1", Worksteps: 3},
		{ItemTag: "Jewelry", BasePrice: 900, Producible: true, Ingredients: "Gold:1,Diamond:1", Worksteps: 8},
	}
}
