package database

import (
	"database/sql"
	"fmt"
	"strings"
)

var _ RecommendationRepository = (*RecommendationRepositoryImpl)(nil)

// RecommendationRepositoryImpl handles database operations for
// recommendations.
type RecommendationRepositoryImpl struct {
	db *DB
}

func NewRecommendationRepository(db *DB) *RecommendationRepositoryImpl {
	return &RecommendationRepositoryImpl{db: db}
}

const recommendationColumns = `id, issue_id, title, COALESCE(url, ''), COALESCE(description, ''),
	category, COALESCE(section_name, ''), is_primary_link, is_crowdsourced,
	COALESCE(contributor_name, ''), hidden, dead, created_at, updated_at`

// GetURLsForIssue returns every recommendation URL already recorded for an
// issue. This is the dedup boundary that keeps re-parses idempotent.
func (r *RecommendationRepositoryImpl) GetURLsForIssue(issueID int64) (map[string]bool, error) {
	rows, err := r.db.Query(`
		SELECT COALESCE(url, '') FROM recommendations WHERE issue_id = $1
	`, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation URLs: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL row: %w", err)
		}
		if url != "" {
			urls[url] = true
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating URL rows: %w", err)
	}

	return urls, nil
}

func (r *RecommendationRepositoryImpl) InsertRecommendation(issueID int64, rec NewRecommendation) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO recommendations (
			issue_id, title, url, description, category, section_name,
			is_primary_link, is_crowdsourced, contributor_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, issueID, rec.Title, rec.URL, rec.Description, rec.Category,
		rec.SectionName, rec.IsPrimaryLink, rec.IsCrowdsourced, rec.ContributorName)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recommendation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted recommendation id: %w", err)
	}

	return id, nil
}

func (r *RecommendationRepositoryImpl) GetRecommendation(id int64) (*Recommendation, error) {
	var rec Recommendation
	err := r.db.QueryRow(`
		SELECT `+recommendationColumns+` FROM recommendations WHERE id = $1
	`, id).Scan(
		&rec.ID, &rec.IssueID, &rec.Title, &rec.URL, &rec.Description,
		&rec.Category, &rec.SectionName, &rec.IsPrimaryLink, &rec.IsCrowdsourced,
		&rec.ContributorName, &rec.Hidden, &rec.Dead, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}

	return &rec, nil
}

func (r *RecommendationRepositoryImpl) ListByIssue(issueID int64, includeHidden bool) ([]Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE issue_id = $1`
	if !includeHidden {
		query += ` AND hidden = 0 AND dead = 0`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(query, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	return collectRecommendations(rows)
}

// Search filters the public archive. Hidden and dead records never appear.
func (r *RecommendationRepositoryImpl) Search(opts SearchOptions) ([]Recommendation, error) {
	var conditions []string
	var args []interface{}

	conditions = append(conditions, "r.hidden = 0", "r.dead = 0")

	if opts.Query != "" {
		args = append(args, "%"+strings.ToLower(opts.Query)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions,
			fmt.Sprintf("(LOWER(r.title) LIKE %s OR LOWER(r.description) LIKE %s)", placeholder, placeholder))
	}
	if opts.Category != "" {
		args = append(args, opts.Category)
		conditions = append(conditions, fmt.Sprintf("r.category = $%d", len(args)))
	}
	if opts.IssueID != 0 {
		args = append(args, opts.IssueID)
		conditions = append(conditions, fmt.Sprintf("r.issue_id = $%d", len(args)))
	}
	if opts.Tag != "" {
		args = append(args, opts.Tag)
		conditions = append(conditions, fmt.Sprintf(`r.id IN (
			SELECT rt.recommendation_id FROM recommendation_tags rt
			JOIN tags t ON t.id = rt.tag_id WHERE t.name = $%d)`, len(args)))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	limitPlaceholder := fmt.Sprintf("$%d", len(args))
	args = append(args, opts.Offset)
	offsetPlaceholder := fmt.Sprintf("$%d", len(args))

	query := `SELECT ` + recommendationColumns + `
		FROM recommendations r
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY r.id DESC
		LIMIT ` + limitPlaceholder + ` OFFSET ` + offsetPlaceholder

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search recommendations: %w", err)
	}
	defer rows.Close()

	return collectRecommendations(rows)
}

// UpdateCuration applies an admin edit. Nil fields keep their stored value.
func (r *RecommendationRepositoryImpl) UpdateCuration(id int64, update CurationUpdate) error {
	var sets []string
	var args []interface{}

	if update.Title != nil {
		args = append(args, *update.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if update.Category != nil {
		args = append(args, *update.Category)
		sets = append(sets, fmt.Sprintf("category = $%d", len(args)))
	}
	if update.Hidden != nil {
		args = append(args, *update.Hidden)
		sets = append(sets, fmt.Sprintf("hidden = $%d", len(args)))
	}
	if update.Dead != nil {
		args = append(args, *update.Dead)
		sets = append(sets, fmt.Sprintf("dead = $%d", len(args)))
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE recommendations SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update recommendation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("recommendation %d not found", id)
	}

	return nil
}

// GetWeakTitleRecommendations returns linked recommendations whose stored
// title looks like a placeholder: very short, or a single squashed word.
func (r *RecommendationRepositoryImpl) GetWeakTitleRecommendations(limit int) ([]Recommendation, error) {
	rows, err := r.db.Query(`
		SELECT `+recommendationColumns+`
		FROM recommendations
		WHERE COALESCE(url, '') != ''
		  AND (LENGTH(title) < 6 OR (title NOT LIKE '% %' AND LENGTH(title) < 12))
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get weak-title recommendations: %w", err)
	}
	defer rows.Close()

	return collectRecommendations(rows)
}

func (r *RecommendationRepositoryImpl) UpdateTitleAndDescription(id int64, title, description string) error {
	_, err := r.db.Exec(`
		UPDATE recommendations
		SET title = $1,
		    description = CASE WHEN COALESCE(description, '') = '' THEN $2 ELSE description END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, title, description, id)
	if err != nil {
		return fmt.Errorf("failed to update recommendation title: %w", err)
	}
	return nil
}

func (r *RecommendationRepositoryImpl) GetRecommendationCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM recommendations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get recommendation count: %w", err)
	}
	return count, nil
}

func (r *RecommendationRepositoryImpl) GetCategoryCounts() (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT category, COUNT(*) FROM recommendations
		WHERE hidden = 0 AND dead = 0
		GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count row: %w", err)
		}
		counts[category] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category count rows: %w", err)
	}

	return counts, nil
}

func collectRecommendations(rows *sql.Rows) ([]Recommendation, error) {
	var recs []Recommendation
	for rows.Next() {
		var rec Recommendation
		err := rows.Scan(
			&rec.ID, &rec.IssueID, &rec.Title, &rec.URL, &rec.Description,
			&rec.Category, &rec.SectionName, &rec.IsPrimaryLink, &rec.IsCrowdsourced,
			&rec.ContributorName, &rec.Hidden, &rec.Dead, &rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendation rows: %w", err)
	}

	return recs, nil
}
