package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/uxradar/internal/model"
)

func TestForSource_ScopesToSiteAndAddsRemote(t *testing.T) {
	q := ForSource(model.SourceConfig{Name: "Remotive", SiteQuery: "site:remotive.com/remote/jobs"})

	assert.True(t, strings.HasPrefix(q, "site:remotive.com/remote/jobs "))
	assert.Contains(t, q, `"UX researcher"`)
	assert.True(t, strings.HasSuffix(q, " remote"))
}

func TestDiscovery_HasNoSiteScope(t *testing.T) {
	q := Discovery()

	assert.NotContains(t, q, "site:")
	assert.Contains(t, q, `"remote UX researcher"`)
	assert.True(t, strings.HasSuffix(q, " jobs"))
}

func TestDefaultSources_AllCurated(t *testing.T) {
	sources := DefaultSources()

	assert.Len(t, sources, 5)
	for _, s := range sources {
		assert.Equal(t, model.TierCurated, s.Tier, s.Name)
		assert.True(t, strings.HasPrefix(s.SiteQuery, "site:"), s.Name)
	}
}
