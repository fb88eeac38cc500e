package database

import (
	"database/sql"
	"fmt"
)

var _ TagRepository = (*TagRepositoryImpl)(nil)

// TagRepositoryImpl handles database operations for tags.
type TagRepositoryImpl struct {
	db *DB
}

func NewTagRepository(db *DB) *TagRepositoryImpl {
	return &TagRepositoryImpl{db: db}
}

// EnsureTag returns the id of the named tag, creating it when absent.
// Adding an existing name is a no-op that reuses the existing tag.
func (r *TagRepositoryImpl) EnsureTag(name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`SELECT id FROM tags WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up tag: %w", err)
	}

	result, err := r.db.Exec(`INSERT INTO tags (name) VALUES ($1)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted tag id: %w", err)
	}

	return id, nil
}

func (r *TagRepositoryImpl) TagRecommendation(recommendationID, tagID int64) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO recommendation_tags (recommendation_id, tag_id)
		VALUES ($1, $2)
	`, recommendationID, tagID)
	if err != nil {
		return fmt.Errorf("failed to tag recommendation: %w", err)
	}
	return nil
}

func (r *TagRepositoryImpl) UntagRecommendation(recommendationID int64, name string) error {
	_, err := r.db.Exec(`
		DELETE FROM recommendation_tags
		WHERE recommendation_id = $1
		  AND tag_id IN (SELECT id FROM tags WHERE name = $2)
	`, recommendationID, name)
	if err != nil {
		return fmt.Errorf("failed to untag recommendation: %w", err)
	}
	return nil
}

func (r *TagRepositoryImpl) ListTags() ([]Tag, error) {
	rows, err := r.db.Query(`SELECT id, name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func (r *TagRepositoryImpl) ListTagsForRecommendation(recommendationID int64) ([]Tag, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.name FROM tags t
		JOIN recommendation_tags rt ON rt.tag_id = t.id
		WHERE rt.recommendation_id = $1
		ORDER BY t.name ASC
	`, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendation tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func collectTags(rows *sql.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}
