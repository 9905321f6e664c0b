package query

import "github.com/amishk599/uxradar/internal/model"

// roleKeywords is the disjunction every curated query is scoped to.
const roleKeywords = `("UX research" OR "user research" OR "UX researcher" OR "user researcher" OR "design researcher" OR "usability")`

// discoveryKeywords is looser: full phrases that already carry "remote".
const discoveryKeywords = `("remote UX researcher" OR "remote UX research" OR "remote user researcher" OR "remote design researcher" OR "remote usability")`

// ForSource builds the search query for a curated source.
func ForSource(src model.SourceConfig) string {
	return src.SiteQuery + " " + roleKeywords + " remote"
}

// Discovery builds the unscoped discovery query.
func Discovery() string {
	return discoveryKeywords + " jobs"
}

// DefaultSources is the curated source list used when the config names none.
func DefaultSources() []model.SourceConfig {
	return []model.SourceConfig{
		{Name: "Remotive", SiteQuery: "site:remotive.com/remote/jobs", Tier: model.TierCurated},
		{Name: "We Work Remotely", SiteQuery: "site:weworkremotely.com/remote-jobs", Tier: model.TierCurated},
		{Name: "Dribbble", SiteQuery: "site:dribbble.com/jobs", Tier: model.TierCurated},
		{Name: "User Interviews", SiteQuery: "site:userinterviews.com/ux-job-board", Tier: model.TierCurated},
		{Name: "Lisbon UX", SiteQuery: "site:jobs.lisboaux.com", Tier: model.TierCurated},
	}
}
