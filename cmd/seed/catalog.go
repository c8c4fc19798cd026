package main

import (
	"fmt"

	"github.com/google/uuid"
)

// seedNamespace keys the deterministic ids so re-runs produce the same rows.
var seedNamespace = uuid.MustParse("5e1f3c0a-6b7d-4d8e-9f10-2a3b4c5d6e7f")

func seedID(kind string, index int) string {
	return uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%s:%d", kind, index))).String()
}

type userDef struct {
	name    string
	email   string
	isAdmin bool
}

var users = []userDef{
	{"Professor Oak", "oak@pokemart.dev", true},
	{"Red", "red@pokemart.dev", false},
	{"Blue", "blue@pokemart.dev", false},
}

type productDef struct {
	name        string
	brand       string
	category    string
	description string
	price       int64
	stock       int
}

var products = []productDef{
	{"Poké Ball", "Silph Co.", "Poké Balls", "A device for catching wild Pokémon.", 200, 99},
	{"Great Ball", "Silph Co.", "Poké Balls", "A good, high-performance Poké Ball.", 600, 50},
	{"Ultra Ball", "Silph Co.", "Poké Balls", "An ultra-high performance Poké Ball.", 1200, 25},
	{"Master Ball", "Silph Co.", "Poké Balls", "Catches any wild Pokémon without fail.", 9999900, 1},
	{"Potion", "Devon Corp.", "Medicine", "Restores 20 HP of one Pokémon.", 300, 80},
	{"Super Potion", "Devon Corp.", "Medicine", "Restores 60 HP of one Pokémon.", 700, 40},
	{"Full Restore", "Devon Corp.", "Medicine", "Fully restores HP and heals all status conditions.", 3000, 10},
	{"Revive", "Devon Corp.", "Medicine", "Revives a fainted Pokémon with half its HP.", 2000, 15},
	{"Escape Rope", "Devon Corp.", "Field Items", "Returns you to the last entrance of a cave or dungeon.", 550, 30},
	{"Repel", "Devon Corp.", "Field Items", "Keeps weak wild Pokémon away for 100 steps.", 350, 60},
	{"Rare Candy", "Game Freak", "Evolution", "Raises the level of a Pokémon by one.", 480000, 3},
	{"Fire Stone", "Game Freak", "Evolution", "Makes certain species of Pokémon evolve.", 3000, 5},
}
