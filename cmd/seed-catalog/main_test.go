package main

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sensoryplay/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogFixture(t *testing.T) {
	fh, err := os.Open("../../fixtures/catalog.yaml")
	require.NoError(t, err)
	defer fh.Close()

	catalog, err := loadCatalog(fh)
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Locations)
	for _, l := range catalog.Locations {
		assert.NotEmpty(t, l.Classes, l.Name)
	}
}

func TestLoadCatalogRejectsUnknownFields(t *testing.T) {
	_, err := loadCatalog(strings.NewReader("locations:\n  - name: Studio\n    colour: blue\n"))
	assert.Error(t, err)
}

func TestLoadCatalogRequiresSchedule(t *testing.T) {
	_, err := loadCatalog(strings.NewReader(`
locations:
  - name: Studio
    classes:
      - title: Messy Play
        capacity: 8
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class #1")
}

func TestHasClass(t *testing.T) {
	start := time.Date(2026, 11, 7, 10, 0, 0, 0, time.UTC)
	classes := []model.Class{{Title: "Messy Play", StartsAt: start}}

	assert.True(t, hasClass(classes, "Messy Play", start.In(time.FixedZone("PST", -8*3600))))
	assert.False(t, hasClass(classes, "Messy Play", start.Add(time.Hour)))
	assert.False(t, hasClass(classes, "Sensory Bins", start))
}
