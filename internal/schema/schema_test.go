package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryOptionHasLabel(t *testing.T) {
	for _, ct := range ChallengeTypes() {
		assert.NotEmpty(t, ct.Label())
		assert.True(t, ct.Valid())
	}
	for _, d := range Difficulties() {
		assert.NotEmpty(t, d.Label())
		assert.True(t, d.Valid())
	}
	assert.Equal(t, "Data Structure", ChallengeTypeDataStructure.Label())
}

func TestParse(t *testing.T) {
	ct, err := ParseChallengeType("Algorithm")
	require.NoError(t, err)
	assert.Equal(t, ChallengeTypeAlgorithm, ct)

	_, err = ParseChallengeType("algorithm")
	assert.Error(t, err)

	d, err := ParseDifficulty("Hard")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	_, err = ParseDifficulty("")
	assert.Error(t, err)
}

func TestOptionsRoundTrip(t *testing.T) {
	opts := OptionsOf(DefaultCatalog)
	require.Len(t, opts.Types, len(ChallengeTypes()))
	assert.Equal(t, Option{Value: "Easy", Label: "Easy"}, opts.Difficulties[0])

	opts.Types = append(opts.Types, Option{Value: "Quantum", Label: "Quantum"})
	c := CatalogFromOptions(opts)
	assert.Equal(t, ChallengeTypes(), c.ChallengeTypes())
	assert.Equal(t, Difficulties(), c.Difficulties())
}

func TestChallengeTypesReturnsCopy(t *testing.T) {
	types := ChallengeTypes()
	types[0] = "Mutated"
	assert.Equal(t, ChallengeTypeAlgorithm, ChallengeTypes()[0])
}
