package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rhymeswithjazz/installer-archive/app/cfg"
	"github.com/rhymeswithjazz/installer-archive/app/database"
	"github.com/rhymeswithjazz/installer-archive/app/extract"
	"github.com/rhymeswithjazz/installer-archive/app/source"
	"github.com/rhymeswithjazz/installer-archive/app/tasks"
)

func NewHandler(profile *source.Profile, fetcher tasks.Fetcher,
	issueRepo database.IssueRepository, recRepo database.RecommendationRepository,
	tagRepo database.TagRepository) *Handler {
	return &Handler{
		profile:    profile,
		fetcher:    fetcher,
		issueRepo:  issueRepo,
		recRepo:    recRepo,
		tagRepo:    tagRepo,
		batchLimit: cfg.Get().BatchLimit,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"source":    h.profile.Name,
	}

	if issueCount, err := h.issueRepo.GetIssueCount(); err == nil {
		health["issues"] = issueCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"version": cfg.Get().Version,
		"source":  h.profile.Name,
	}

	if total, err := h.issueRepo.GetIssueCount(); err == nil {
		scraped, _ := h.issueRepo.GetScrapedIssueCount()
		stats["issues"] = map[string]int{
			"total":     total,
			"scraped":   scraped,
			"unscraped": total - scraped,
		}
	}

	if count, err := h.recRepo.GetRecommendationCount(); err == nil {
		stats["recommendations"] = count
	}
	if counts, err := h.recRepo.GetCategoryCounts(); err == nil {
		stats["categories"] = counts
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListIssues(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	issues, err := h.issueRepo.ListIssues(limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "list_issues", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues": issueListJSON(issues),
		"count":  len(issues),
	})
}

func (h *Handler) GetIssue(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}

	recs, err := h.recRepo.ListByIssue(issue.ID, false)
	if err != nil {
		slog.Error("Database error", "operation", "list_recommendations", "issue_id", issue.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	payload := issueJSON(*issue)
	payload["recommendations"] = recommendationListJSON(recs)
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) ListIssueRecommendations(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}

	recs, err := h.recRepo.ListByIssue(issue.ID, false)
	if err != nil {
		slog.Error("Database error", "operation", "list_recommendations", "issue_id", issue.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issue_id":        issue.ID,
		"recommendations": recommendationListJSON(recs),
		"count":           len(recs),
	})
}

func (h *Handler) SearchRecommendations(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !extract.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + category})
		return
	}

	opts := database.SearchOptions{
		Query:    c.Query("q"),
		Category: category,
		Tag:      c.Query("tag"),
		Limit:    intQuery(c, "limit", 50),
		Offset:   intQuery(c, "offset", 0),
	}

	recs, err := h.recRepo.Search(opts)
	if err != nil {
		slog.Error("Database error", "operation", "search_recommendations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendationListJSON(recs),
		"count":           len(recs),
	})
}

// APIScrape maps a trigger action onto a task and runs it synchronously so
// the caller receives the batch result: counts plus any per-item soft
// errors. Only a violated precondition fails the whole request.
func (h *Handler) APIScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var task tasks.TaskInterface
	switch strings.ToLower(req.Action) {
	case "archive":
		task = tasks.NewScrapeArchiveTask(h.profile, h.fetcher, h.issueRepo)
	case "issues":
		task = tasks.NewScrapeIssuesTask(h.profile, h.fetcher, h.issueRepo, h.recRepo, h.batchLimit)
	case "url":
		if req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Action 'url' requires a url field"})
			return
		}
		task = tasks.NewScrapeIssueTask(req.URL, h.profile, h.fetcher, h.issueRepo, h.recRepo)
	case "backfill-dates":
		task = tasks.NewBackfillDatesTask(h.fetcher, h.issueRepo, h.batchLimit)
	case "backfill-titles":
		task = tasks.NewBackfillTitlesTask(h.fetcher, h.recRepo, h.batchLimit)
	case "feed":
		task = tasks.NewPollFeedTask(h.profile, h.fetcher, h.issueRepo)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action: " + req.Action})
		return
	}

	task.Start()
	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Scrape action failed", "action", req.Action, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Scrape action failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action":   req.Action,
		"duration": task.GetDuration().String(),
		"result":   task.GetResult(),
	})
}

func (h *Handler) APIUpdateRecommendation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recommendation id"})
		return
	}

	var req curationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Category != nil && !extract.ValidCategory(*req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category: " + *req.Category})
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title cannot be empty"})
		return
	}

	err = h.recRepo.UpdateCuration(id, database.CurationUpdate{
		Title:    req.Title,
		Category: req.Category,
		Hidden:   req.Hidden,
		Dead:     req.Dead,
	})
	if err != nil {
		slog.Error("Database error", "operation", "update_recommendation", "id", id, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.recRepo.GetRecommendation(id)
	if err != nil || rec == nil {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	c.JSON(http.StatusOK, recommendationJSON(*rec))
}

func (h *Handler) APITagRecommendation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recommendation id"})
		return
	}

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tag name cannot be empty"})
		return
	}

	rec, err := h.recRepo.GetRecommendation(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_recommendation", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recommendation not found"})
		return
	}

	tagID, err := h.tagRepo.EnsureTag(name)
	if err != nil {
		slog.Error("Database error", "operation", "ensure_tag", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := h.tagRepo.TagRecommendation(id, tagID); err != nil {
		slog.Error("Database error", "operation", "tag_recommendation", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	tags, _ := h.tagRepo.ListTagsForRecommendation(id)
	c.JSON(http.StatusOK, gin.H{
		"recommendation_id": id,
		"tags":              tagNames(tags),
	})
}

func (h *Handler) APIUntagRecommendation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recommendation id"})
		return
	}

	name := strings.ToLower(strings.TrimSpace(c.Param("name")))
	if err := h.tagRepo.UntagRecommendation(id, name); err != nil {
		slog.Error("Database error", "operation", "untag_recommendation", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	tags, _ := h.tagRepo.ListTagsForRecommendation(id)
	c.JSON(http.StatusOK, gin.H{
		"recommendation_id": id,
		"tags":              tagNames(tags),
	})
}

func (h *Handler) APIListTags(c *gin.Context) {
	tags, err := h.tagRepo.ListTags()
	if err != nil {
		slog.Error("Database error", "operation", "list_tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tagNames(tags),
		"total": len(tags),
	})
}

func (h *Handler) loadIssue(c *gin.Context) (*database.Issue, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue id"})
		return nil, false
	}

	issue, err := h.issueRepo.GetIssue(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_issue", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if issue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return nil, false
	}

	return issue, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func issueListJSON(issues []database.Issue) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issueJSON(issue))
	}
	return out
}

func issueJSON(issue database.Issue) map[string]interface{} {
	return map[string]interface{}{
		"id":           issue.ID,
		"title":        issue.Title,
		"url":          issue.URL,
		"published_at": issue.PublishedAt,
		"scraped_at":   issue.ScrapedAt,
	}
}

func recommendationListJSON(recs []database.Recommendation) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recommendationJSON(rec))
	}
	return out
}

func recommendationJSON(rec database.Recommendation) map[string]interface{} {
	return map[string]interface{}{
		"id":               rec.ID,
		"issue_id":         rec.IssueID,
		"title":            rec.Title,
		"url":              rec.URL,
		"description":      rec.Description,
		"category":         rec.Category,
		"section_name":     rec.SectionName,
		"is_primary_link":  rec.IsPrimaryLink,
		"is_crowdsourced":  rec.IsCrowdsourced,
		"contributor_name": rec.ContributorName,
		"hidden":           rec.Hidden,
		"dead":             rec.Dead,
	}
}

func tagNames(tags []database.Tag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	return names
}
