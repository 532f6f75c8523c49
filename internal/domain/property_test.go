package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyValid(t *testing.T) {
	prop := Property{
		ID:    "ATH-0001",
		Price: 220_000,
		Type:  PropertyTypeApartment,
	}
	assert.True(t, prop.Valid())

	assert.False(t, Property{Price: 220_000}.Valid())
	assert.False(t, Property{ID: "ATH-0001"}.Valid())
	assert.False(t, Property{ID: "ATH-0001", Price: -1}.Valid())
}
