package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Posting is an employer's published job opening. Required skills use the
// same names as job seeker profile skills, so a posting can be read against
// a seeker's verified skill set.
type Posting struct {
	ID             uuid.UUID  `json:"id"`
	EmployerID     uuid.UUID  `json:"employer_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	RequiredSkills []string   `json:"required_skills"`
	Location       string     `json:"location"`
	SalaryMin      *int       `json:"salary_min,omitempty"`
	SalaryMax      *int       `json:"salary_max,omitempty"`
	IsOpen         bool       `json:"is_open"`
	CreatedAt      time.Time  `json:"created_at"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p *Posting) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO job_postings (id, employer_id, title, description, required_skills, location, salary_min, salary_max, is_open)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING created_at
	`, p.ID, p.EmployerID, p.Title, p.Description, p.RequiredSkills, p.Location, p.SalaryMin, p.SalaryMax).Scan(&p.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Posting, error) {
	var p Posting
	err := r.pool.QueryRow(ctx, `
		SELECT id, employer_id, title, description, required_skills, location, salary_min, salary_max, is_open, created_at, closed_at
		FROM job_postings WHERE id = $1
	`, id).Scan(&p.ID, &p.EmployerID, &p.Title, &p.Description, &p.RequiredSkills, &p.Location, &p.SalaryMin, &p.SalaryMax, &p.IsOpen, &p.CreatedAt, &p.ClosedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListOpen returns open postings, optionally narrowed to those requiring
// the given skill.
func (r *Repository) ListOpen(ctx context.Context, skill string) ([]*Posting, error) {
	return r.list(ctx, `
		SELECT id, employer_id, title, description, required_skills, location, salary_min, salary_max, is_open, created_at, closed_at
		FROM job_postings
		WHERE is_open AND ($1 = '' OR $1 = ANY(required_skills))
		ORDER BY created_at DESC
	`, skill)
}

func (r *Repository) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*Posting, error) {
	return r.list(ctx, `
		SELECT id, employer_id, title, description, required_skills, location, salary_min, salary_max, is_open, created_at, closed_at
		FROM job_postings WHERE employer_id = $1 ORDER BY created_at DESC
	`, employerID)
}

// Close marks the posting closed iff it belongs to the employer and is
// still open. Returns false when nothing matched.
func (r *Repository) Close(ctx context.Context, id, employerID uuid.UUID) (bool, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE job_postings SET is_open = false, closed_at = now()
		WHERE id = $1 AND employer_id = $2 AND is_open
	`, id, employerID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*Posting, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ID, &p.EmployerID, &p.Title, &p.Description, &p.RequiredSkills, &p.Location, &p.SalaryMin, &p.SalaryMax, &p.IsOpen, &p.CreatedAt, &p.ClosedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
