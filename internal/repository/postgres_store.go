package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// PgxIface は pgxpool.Pool と pgxmock の共通部分です。
type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const jobColumns = `id, created_by, title, company, description, requirements, responsibilities,
	location_city, location_state, location_country, location_remote, location_type,
	salary_min, salary_max, salary_currency, salary_period,
	job_type, experience_level, categories, tags, created_at, updated_at`

const applicantColumns = `id, user_id, headline, summary, skills, work_experience, education,
	preferred_job_types, preferred_locations, preferred_industries, is_remote_only, created_at, updated_at`

const companyColumns = `id, name, description, industry, location_city, location_state, location_country,
	website, size, founded, specialties, created_at, updated_at`

// searchVectorExpr は重み A/B/C のテキストから search_vector を組み立てる式です。
func searchVectorExpr(a, b, c int) string {
	return fmt.Sprintf(
		"setweight(to_tsvector('english', $%d), 'A') || setweight(to_tsvector('english', $%d), 'B') || setweight(to_tsvector('english', $%d), 'C')",
		a, b, c,
	)
}

// postgresStore は求人・応募者・企業の正規レコードを PostgreSQL に保存します。
type postgresStore struct {
	db  PgxIface
	now func() time.Time
}

// NewPostgresStore は新しい postgresStore のインスタンスを生成します。
func NewPostgresStore(db PgxIface) port.DocumentStore {
	return &postgresStore{db: db, now: time.Now}
}

var upsertJobSQL = `INSERT INTO jobs (` + jobColumns + `, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, ` + searchVectorExpr(23, 24, 25) + `)
ON CONFLICT (id) DO UPDATE SET
	created_by = EXCLUDED.created_by,
	title = EXCLUDED.title,
	company = EXCLUDED.company,
	description = EXCLUDED.description,
	requirements = EXCLUDED.requirements,
	responsibilities = EXCLUDED.responsibilities,
	location_city = EXCLUDED.location_city,
	location_state = EXCLUDED.location_state,
	location_country = EXCLUDED.location_country,
	location_remote = EXCLUDED.location_remote,
	location_type = EXCLUDED.location_type,
	salary_min = EXCLUDED.salary_min,
	salary_max = EXCLUDED.salary_max,
	salary_currency = EXCLUDED.salary_currency,
	salary_period = EXCLUDED.salary_period,
	job_type = EXCLUDED.job_type,
	experience_level = EXCLUDED.experience_level,
	categories = EXCLUDED.categories,
	tags = EXCLUDED.tags,
	updated_at = EXCLUDED.updated_at,
	search_vector = EXCLUDED.search_vector
RETURNING ` + jobColumns

// UpsertJob は求人を保存し、保存後のレコードを返します。ID が空の場合は採番します。
func (s *postgresStore) UpsertJob(ctx context.Context, job port.JobDocument) (*port.JobDocument, error) {
	if strings.TrimSpace(job.Title) == "" {
		return nil, fmt.Errorf("%w: job title is required", port.ErrInvalidInput)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	row := s.db.QueryRow(ctx, upsertJobSQL,
		job.ID, job.CreatedBy, job.Title, job.Company, job.Description,
		nonNil(job.Requirements), nonNil(job.Responsibilities),
		job.Location.City, job.Location.State, job.Location.Country, job.Location.Remote, job.Location.Type,
		job.Salary.Min, job.Salary.Max, job.Salary.Currency, job.Salary.Period,
		job.JobType, job.ExperienceLevel, nonNil(job.Categories), nonNil(job.Tags),
		job.CreatedAt, job.UpdatedAt,
		job.Title,
		job.Company,
		joinText(job.Description, joinText(job.Requirements...), joinText(job.Responsibilities...), joinText(job.Categories...), joinText(job.Tags...)),
	)

	saved, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert job: %w", err)
	}
	return &saved, nil
}

func (s *postgresStore) GetJob(ctx context.Context, id string) (*port.JobDocument, error) {
	row := s.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *postgresStore) DeleteJob(ctx context.Context, id string) error {
	return s.delete(ctx, "jobs", id)
}

// ListJobs は afterID より後ろの求人を ID 順に最大 limit 件返します。
func (s *postgresStore) ListJobs(ctx context.Context, afterID string, limit int) ([]port.JobDocument, error) {
	rows, err := s.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return collectJobs(rows)
}

var upsertApplicantSQL = `INSERT INTO applicants (` + applicantColumns + `, search_vector)
VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8, $9, $10, $11, $12, $13, ` + searchVectorExpr(14, 15, 16) + `)
ON CONFLICT (id) DO UPDATE SET
	user_id = EXCLUDED.user_id,
	headline = EXCLUDED.headline,
	summary = EXCLUDED.summary,
	skills = EXCLUDED.skills,
	work_experience = EXCLUDED.work_experience,
	education = EXCLUDED.education,
	preferred_job_types = EXCLUDED.preferred_job_types,
	preferred_locations = EXCLUDED.preferred_locations,
	preferred_industries = EXCLUDED.preferred_industries,
	is_remote_only = EXCLUDED.is_remote_only,
	updated_at = EXCLUDED.updated_at,
	search_vector = EXCLUDED.search_vector
RETURNING ` + applicantColumns

// UpsertApplicant は応募者プロフィールを保存し、保存後のレコードを返します。
func (s *postgresStore) UpsertApplicant(ctx context.Context, applicant port.ApplicantDocument) (*port.ApplicantDocument, error) {
	if applicant.UserID == "" {
		return nil, fmt.Errorf("%w: applicant user id is required", port.ErrInvalidInput)
	}
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if applicant.CreatedAt.IsZero() {
		applicant.CreatedAt = now
	}
	applicant.UpdatedAt = now

	skills, err := marshalJSONArray(applicant.Skills)
	if err != nil {
		return nil, err
	}
	work, err := marshalJSONArray(applicant.WorkExperience)
	if err != nil {
		return nil, err
	}
	education, err := marshalJSONArray(applicant.Education)
	if err != nil {
		return nil, err
	}

	companies := make([]string, 0, len(applicant.WorkExperience))
	details := make([]string, 0, len(applicant.WorkExperience)+len(applicant.Education))
	for _, w := range applicant.WorkExperience {
		companies = append(companies, w.Company)
		details = append(details, w.Description)
	}
	for _, e := range applicant.Education {
		details = append(details, e.Field, e.Degree)
	}

	row := s.db.QueryRow(ctx, upsertApplicantSQL,
		applicant.ID, applicant.UserID, applicant.Headline, applicant.Summary,
		skills, work, education,
		nonNil(applicant.PreferredJobTypes), nonNil(applicant.PreferredLocations), nonNil(applicant.PreferredIndustries),
		applicant.IsRemoteOnly, applicant.CreatedAt, applicant.UpdatedAt,
		joinText(applicant.Headline, joinText(applicant.SkillNames()...)),
		joinText(applicant.Summary, joinText(applicant.PastPositions()...)),
		joinText(joinText(companies...), joinText(details...)),
	)

	saved, err := scanApplicant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert applicant: %w", err)
	}
	return &saved, nil
}

func (s *postgresStore) GetApplicant(ctx context.Context, id string) (*port.ApplicantDocument, error) {
	return s.getApplicant(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id)
}

func (s *postgresStore) GetApplicantByUserID(ctx context.Context, userID string) (*port.ApplicantDocument, error) {
	return s.getApplicant(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE user_id = $1`, userID)
}

func (s *postgresStore) getApplicant(ctx context.Context, query, arg string) (*port.ApplicantDocument, error) {
	applicant, err := scanApplicant(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	return &applicant, nil
}

func (s *postgresStore) DeleteApplicant(ctx context.Context, id string) error {
	return s.delete(ctx, "applicants", id)
}

func (s *postgresStore) ListApplicants(ctx context.Context, afterID string, limit int) ([]port.ApplicantDocument, error) {
	rows, err := s.db.Query(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return collectApplicants(rows)
}

var upsertCompanySQL = `INSERT INTO companies (` + companyColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	industry = EXCLUDED.industry,
	location_city = EXCLUDED.location_city,
	location_state = EXCLUDED.location_state,
	location_country = EXCLUDED.location_country,
	website = EXCLUDED.website,
	size = EXCLUDED.size,
	founded = EXCLUDED.founded,
	specialties = EXCLUDED.specialties,
	updated_at = EXCLUDED.updated_at
RETURNING ` + companyColumns

func (s *postgresStore) UpsertCompany(ctx context.Context, company port.CompanyDocument) (*port.CompanyDocument, error) {
	if strings.TrimSpace(company.Name) == "" {
		return nil, fmt.Errorf("%w: company name is required", port.ErrInvalidInput)
	}
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now

	row := s.db.QueryRow(ctx, upsertCompanySQL,
		company.ID, company.Name, company.Description, nonNil(company.Industry),
		company.Location.City, company.Location.State, company.Location.Country,
		company.Website, company.Size, company.Founded, nonNil(company.Specialties),
		company.CreatedAt, company.UpdatedAt,
	)

	saved, err := scanCompany(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company: %w", err)
	}
	return &saved, nil
}

func (s *postgresStore) GetCompany(ctx context.Context, id string) (*port.CompanyDocument, error) {
	company, err := scanCompany(s.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

func (s *postgresStore) DeleteCompany(ctx context.Context, id string) error {
	return s.delete(ctx, "companies", id)
}

func (s *postgresStore) ListCompanies(ctx context.Context, afterID string, limit int) ([]port.CompanyDocument, error) {
	rows, err := s.db.Query(ctx, `SELECT `+companyColumns+` FROM companies WHERE id > $1 ORDER BY id LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]port.CompanyDocument, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}
	return companies, nil
}

// delete は table から id の行を削除します。table は呼び出し側の定数のみです。
func (s *postgresStore) delete(ctx context.Context, table, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (port.JobDocument, error) {
	var job port.JobDocument
	err := row.Scan(
		&job.ID, &job.CreatedBy, &job.Title, &job.Company, &job.Description,
		&job.Requirements, &job.Responsibilities,
		&job.Location.City, &job.Location.State, &job.Location.Country, &job.Location.Remote, &job.Location.Type,
		&job.Salary.Min, &job.Salary.Max, &job.Salary.Currency, &job.Salary.Period,
		&job.JobType, &job.ExperienceLevel, &job.Categories, &job.Tags,
		&job.CreatedAt, &job.UpdatedAt,
	)
	return job, err
}

func collectJobs(rows pgx.Rows) ([]port.JobDocument, error) {
	defer rows.Close()

	jobs := make([]port.JobDocument, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

func scanApplicant(row pgx.Row) (port.ApplicantDocument, error) {
	var (
		applicant               port.ApplicantDocument
		skills, work, education []byte
	)
	err := row.Scan(
		&applicant.ID, &applicant.UserID, &applicant.Headline, &applicant.Summary,
		&skills, &work, &education,
		&applicant.PreferredJobTypes, &applicant.PreferredLocations, &applicant.PreferredIndustries,
		&applicant.IsRemoteOnly, &applicant.CreatedAt, &applicant.UpdatedAt,
	)
	if err != nil {
		return applicant, err
	}

	if err := unmarshalJSONArray(skills, &applicant.Skills); err != nil {
		return applicant, fmt.Errorf("failed to decode skills: %w", err)
	}
	if err := unmarshalJSONArray(work, &applicant.WorkExperience); err != nil {
		return applicant, fmt.Errorf("failed to decode work experience: %w", err)
	}
	if err := unmarshalJSONArray(education, &applicant.Education); err != nil {
		return applicant, fmt.Errorf("failed to decode education: %w", err)
	}
	return applicant, nil
}

func collectApplicants(rows pgx.Rows) ([]port.ApplicantDocument, error) {
	defer rows.Close()

	applicants := make([]port.ApplicantDocument, 0)
	for rows.Next() {
		applicant, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		applicants = append(applicants, applicant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applicants: %w", err)
	}
	return applicants, nil
}

func scanCompany(row pgx.Row) (port.CompanyDocument, error) {
	var company port.CompanyDocument
	err := row.Scan(
		&company.ID, &company.Name, &company.Description, &company.Industry,
		&company.Location.City, &company.Location.State, &company.Location.Country,
		&company.Website, &company.Size, &company.Founded, &company.Specialties,
		&company.CreatedAt, &company.UpdatedAt,
	)
	return company, err
}

func marshalJSONArray[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(raw), nil
}

func unmarshalJSONArray[T any](raw []byte, out *[]T) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// joinText は空でない値を空白で連結します。
func joinText(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
