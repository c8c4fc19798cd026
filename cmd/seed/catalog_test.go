package main

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinmiralles/mar-pokemart/pkg/slug"
)

func TestSeedID_Deterministic(t *testing.T) {
	assert.Equal(t, seedID("product", 3), seedID("product", 3))
	assert.NotEqual(t, seedID("product", 3), seedID("product", 4))
	assert.NotEqual(t, seedID("product", 0), seedID("user", 0))

	_, err := uuid.Parse(seedID("user", 0))
	require.NoError(t, err)
}

func TestCatalog(t *testing.T) {
	require.NotEmpty(t, users)
	assert.True(t, users[0].isAdmin, "products are owned by the first user")

	slugs := map[string]bool{}
	for _, p := range products {
		s := slug.Generate(p.name)
		assert.NotEmpty(t, s, p.name)
		assert.False(t, slugs[s], "duplicate slug %s", s)
		slugs[s] = true
		assert.Positive(t, p.price, p.name)
		assert.GreaterOrEqual(t, p.stock, 0, p.name)
	}
}
