package api

import (
	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/source"
	"github.com/rhymeswithjazz/installer-archive/app/tasks"
)

type Handler struct {
	profile    *source.Profile
	fetcher    tasks.Fetcher
	issueRepo  database.IssueRepository
	recRepo    database.RecommendationRepository
	tagRepo    database.TagRepository
	batchLimit int
}

// scrapeRequest selects one trigger action. The url field is required only
// for the single-URL action.
type scrapeRequest struct {
	Action string `json:"action" binding:"required"`
	URL    string `json:"url"`
}

// curationRequest is a partial admin edit of one recommendation.
type curationRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Hidden   *bool   `json:"hidden"`
	Dead     *bool   `json:"dead"`
}

type tagRequest struct {
	Name string `json:"name" binding:"required"`
}
