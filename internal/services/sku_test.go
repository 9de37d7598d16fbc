package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var skuPattern = regexp.MustCompile(`^[A-Z]{1,3}-\d{6}-[A-Z0-9]{3}$`)

func TestGenerateSKUFormat(t *testing.T) {
	assert.Regexp(t, skuPattern, GenerateSKU("Électronique"))
	assert.Regexp(t, skuPattern, GenerateSKU("chaussures"))
	assert.Regexp(t, skuPattern, GenerateSKU("TV"))
}

func TestGenerateSKUPrefix(t *testing.T) {
	assert.Equal(t, "CHA", GenerateSKU("chaussures")[:3])
	assert.Equal(t, "TV-", GenerateSKU("tv")[:3])
}

func TestGenerateSKUFallbackPrefix(t *testing.T) {
	// Catégorie sans lettre exploitable
	sku := GenerateSKU("123")
	assert.Regexp(t, skuPattern, sku)
	assert.Equal(t, "PRD", sku[:3])
}
