package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ IssueRepository = (*IssueRepositoryImpl)(nil)

// IssueRepositoryImpl handles database operations for issues.
type IssueRepositoryImpl struct {
	db *DB
}

func NewIssueRepository(db *DB) *IssueRepositoryImpl {
	return &IssueRepositoryImpl{db: db}
}

// UpsertStub records a discovered issue. The URL is the natural key: an
// existing row keeps its data and only gains a publish date it was missing.
// Returns the row id and whether a new issue was created.
func (r *IssueRepositoryImpl) UpsertStub(title, url string, publishedAt *time.Time) (int64, bool, error) {
	existing, err := r.GetIssueByURL(url)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check existing issue: %w", err)
	}

	if existing != nil {
		if existing.PublishedAt == nil && publishedAt != nil {
			_, err = r.db.Exec(`
				UPDATE issues
				SET published_at = $1, updated_at = CURRENT_TIMESTAMP
				WHERE id = $2
			`, publishedAt, existing.ID)
			if err != nil {
				return 0, false, fmt.Errorf("failed to update issue date: %w", err)
			}
		}
		return existing.ID, false, nil
	}

	result, err := r.db.Exec(`
		INSERT INTO issues (title, url, published_at)
		VALUES ($1, $2, $3)
	`, title, url, publishedAt)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert issue: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get inserted issue id: %w", err)
	}

	return id, true, nil
}

const issueColumns = `id, title, url, published_at, scraped_at, created_at, updated_at`

func (r *IssueRepositoryImpl) scanIssue(row *sql.Row) (*Issue, error) {
	var issue Issue
	err := row.Scan(&issue.ID, &issue.Title, &issue.URL,
		&issue.PublishedAt, &issue.ScrapedAt, &issue.CreatedAt, &issue.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *IssueRepositoryImpl) GetIssue(id int64) (*Issue, error) {
	issue, err := r.scanIssue(r.db.QueryRow(
		`SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return issue, nil
}

func (r *IssueRepositoryImpl) GetIssueByURL(url string) (*Issue, error) {
	issue, err := r.scanIssue(r.db.QueryRow(
		`SELECT `+issueColumns+` FROM issues WHERE url = $1`, url))
	if err != nil {
		return nil, fmt.Errorf("failed to get issue by URL: %w", err)
	}
	return issue, nil
}

func (r *IssueRepositoryImpl) ListIssues(limit, offset int) ([]Issue, error) {
	rows, err := r.db.Query(`
		SELECT `+issueColumns+`
		FROM issues
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// GetUnscrapedIssues returns issues whose content has never been parsed,
// oldest first so a resumed batch picks up where it left off.
func (r *IssueRepositoryImpl) GetUnscrapedIssues(limit int) ([]Issue, error) {
	rows, err := r.db.Query(`
		SELECT `+issueColumns+`
		FROM issues
		WHERE scraped_at IS NULL
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unscraped issues: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

func (r *IssueRepositoryImpl) GetIssuesMissingDate(limit int) ([]Issue, error) {
	rows, err := r.db.Query(`
		SELECT `+issueColumns+`
		FROM issues
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get issues missing dates: %w", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// MarkScraped stamps an issue as parsed, filling in the publish date when it
// was previously unknown.
func (r *IssueRepositoryImpl) MarkScraped(id int64, publishedAt *time.Time) error {
	_, err := r.db.Exec(`
		UPDATE issues
		SET scraped_at = CURRENT_TIMESTAMP,
		    published_at = COALESCE(published_at, $1),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, publishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark issue scraped: %w", err)
	}
	return nil
}

func (r *IssueRepositoryImpl) UpdateIssueDate(id int64, publishedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE issues
		SET published_at = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, publishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update issue date: %w", err)
	}
	return nil
}

func (r *IssueRepositoryImpl) UpdateIssueTitle(id int64, title string) error {
	_, err := r.db.Exec(`
		UPDATE issues
		SET title = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, title, id)
	if err != nil {
		return fmt.Errorf("failed to update issue title: %w", err)
	}
	return nil
}

func (r *IssueRepositoryImpl) GetIssueCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get issue count: %w", err)
	}
	return count, nil
}

func (r *IssueRepositoryImpl) GetScrapedIssueCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM issues WHERE scraped_at IS NOT NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get scraped issue count: %w", err)
	}
	return count, nil
}

func collectIssues(rows *sql.Rows) ([]Issue, error) {
	var issues []Issue
	for rows.Next() {
		var issue Issue
		err := rows.Scan(&issue.ID, &issue.Title, &issue.URL,
			&issue.PublishedAt, &issue.ScrapedAt, &issue.CreatedAt, &issue.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue row: %w", err)
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issue rows: %w", err)
	}

	return issues, nil
}
