// Package inmemory は E2E テストと負荷試験ハーネスで使うメモリ上のカタログを提供します。
package inmemory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// Catalog provides a thread-safe in-memory implementation of both
// port.DocumentStore and port.SearchBackend.
type Catalog struct {
	mu         sync.RWMutex
	jobs       map[string]port.JobDocument
	applicants map[string]port.ApplicantDocument
	companies  map[string]port.CompanyDocument
	now        func() time.Time
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		jobs:       make(map[string]port.JobDocument),
		applicants: make(map[string]port.ApplicantDocument),
		companies:  make(map[string]port.CompanyDocument),
		now:        time.Now,
	}
}

// Mode reports the fallback store mode, since the catalog stands in for PostgreSQL.
func (c *Catalog) Mode() port.SearchMode { return port.SearchModeFallbackStore }

func (c *Catalog) GetJob(_ context.Context, id string) (*port.JobDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	j, ok := c.jobs[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &j, nil
}

func (c *Catalog) UpsertJob(_ context.Context, job port.JobDocument) (*port.JobDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if existing, ok := c.jobs[job.ID]; ok {
		job.CreatedAt = existing.CreatedAt
	} else if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	c.jobs[job.ID] = job
	return &job, nil
}

func (c *Catalog) DeleteJob(_ context.Context, id string) error {
	return deleteFrom(&c.mu, c.jobs, id)
}

func (c *Catalog) ListJobs(_ context.Context, afterID string, limit int) ([]port.JobDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return listAfter(c.jobs, afterID, limit), nil
}

func (c *Catalog) GetApplicant(_ context.Context, id string) (*port.ApplicantDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.applicants[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &a, nil
}

func (c *Catalog) GetApplicantByUserID(_ context.Context, userID string) (*port.ApplicantDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.applicants {
		if a.UserID == userID {
			return &a, nil
		}
	}
	return nil, port.ErrNotFound
}

func (c *Catalog) UpsertApplicant(_ context.Context, applicant port.ApplicantDocument) (*port.ApplicantDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	if existing, ok := c.applicants[applicant.ID]; ok {
		applicant.CreatedAt = existing.CreatedAt
	} else if applicant.CreatedAt.IsZero() {
		applicant.CreatedAt = now
	}
	applicant.UpdatedAt = now
	c.applicants[applicant.ID] = applicant
	return &applicant, nil
}

func (c *Catalog) DeleteApplicant(_ context.Context, id string) error {
	return deleteFrom(&c.mu, c.applicants, id)
}

func (c *Catalog) ListApplicants(_ context.Context, afterID string, limit int) ([]port.ApplicantDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return listAfter(c.applicants, afterID, limit), nil
}

func (c *Catalog) GetCompany(_ context.Context, id string) (*port.CompanyDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	co, ok := c.companies[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &co, nil
}

func (c *Catalog) UpsertCompany(_ context.Context, company port.CompanyDocument) (*port.CompanyDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if existing, ok := c.companies[company.ID]; ok {
		company.CreatedAt = existing.CreatedAt
	} else if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now
	c.companies[company.ID] = company
	return &company, nil
}

func (c *Catalog) DeleteCompany(_ context.Context, id string) error {
	return deleteFrom(&c.mu, c.companies, id)
}

func (c *Catalog) ListCompanies(_ context.Context, afterID string, limit int) ([]port.CompanyDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return listAfter(c.companies, afterID, limit), nil
}

// SearchJobs はいずれかの語の大文字小文字を区別しない部分一致で絞り込み、新しい順に返します。
func (c *Catalog) SearchJobs(_ context.Context, q port.SearchQuery, f port.JobFilters) (*port.JobPage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []port.JobHit
	for _, j := range c.jobs {
		if q.Text != "" && !matchesAnyTerm(q.Text, j.Title, j.Description, j.Company, strings.Join(j.Tags, " ")) {
			continue
		}
		if !matchJobFilters(j, f) {
			continue
		}
		matched = append(matched, port.JobHit{JobDocument: j})
	}
	sort.Slice(matched, func(i, k int) bool { return matched[i].CreatedAt.After(matched[k].CreatedAt) })

	return &port.JobPage{Total: int64(len(matched)), Hits: page(matched, q)}, nil
}

// SearchApplicants は見出し・概要・スキルに対する部分一致で絞り込みます。
func (c *Catalog) SearchApplicants(_ context.Context, q port.SearchQuery, f port.ApplicantFilters) (*port.ApplicantPage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []port.ApplicantHit
	for _, a := range c.applicants {
		if q.Text != "" && !matchesAnyTerm(q.Text, a.Headline, a.Summary, strings.Join(a.SkillNames(), " ")) {
			continue
		}
		if len(f.Skills) > 0 && !overlapsFold(a.SkillNames(), f.Skills) {
			continue
		}
		if len(f.JobTypes) > 0 && !overlapsFold(a.PreferredJobTypes, f.JobTypes) {
			continue
		}
		if f.Remote != nil && a.IsRemoteOnly != *f.Remote {
			continue
		}
		matched = append(matched, port.ApplicantHit{ApplicantDocument: a})
	}
	sort.Slice(matched, func(i, k int) bool { return matched[i].UpdatedAt.After(matched[k].UpdatedAt) })

	return &port.ApplicantPage{Total: int64(len(matched)), Hits: page(matched, q)}, nil
}

// RecommendJobs はスキルと過去の職種の一致数をスコアとして上位を返します。
func (c *Catalog) RecommendJobs(_ context.Context, q port.JobRecommendationQuery) ([]port.JobHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var hits []port.JobHit
	for _, j := range c.jobs {
		if q.RemoteOnly && !j.Location.Remote {
			continue
		}
		if len(q.JobTypes) > 0 && !slices.Contains(q.JobTypes, j.JobType) {
			continue
		}
		text := j.Title + " " + j.Description + " " + strings.Join(j.Requirements, " ") + " " + strings.Join(j.Tags, " ")
		score := countContained(text, q.Skills) + countContained(j.Title, q.Titles)
		if score == 0 {
			continue
		}
		hits = append(hits, port.JobHit{JobDocument: j, Score: &score})
	}
	sort.Slice(hits, func(i, k int) bool { return *hits[i].Score > *hits[k].Score })
	return hits[:min(len(hits), q.Limit)], nil
}

// RecommendCandidates は求人の要件・職務・タイトルとの一致数をスコアとして上位を返します。
func (c *Catalog) RecommendCandidates(_ context.Context, q port.CandidateRecommendationQuery) ([]port.ApplicantHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var words []string
	for _, term := range slices.Concat(q.Requirements, q.Responsibilities, []string{q.Title}) {
		for _, w := range strings.Fields(strings.ToLower(term)) {
			if len(w) > 1 && !slices.Contains(words, w) {
				words = append(words, w)
			}
		}
	}

	var hits []port.ApplicantHit
	for _, a := range c.applicants {
		if q.ExcludeRemoteOnly && a.IsRemoteOnly {
			continue
		}
		text := a.Headline + " " + a.Summary + " " + strings.Join(a.SkillNames(), " ") + " " + strings.Join(a.PastPositions(), " ")
		score := countContained(text, words)
		if score == 0 {
			continue
		}
		hits = append(hits, port.ApplicantHit{ApplicantDocument: a, Score: &score})
	}
	sort.Slice(hits, func(i, k int) bool { return *hits[i].Score > *hits[k].Score })
	return hits[:min(len(hits), q.Limit)], nil
}

func matchJobFilters(j port.JobDocument, f port.JobFilters) bool {
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.Remote != nil && j.Location.Remote != *f.Remote {
		return false
	}
	if f.LocationType != "" && j.Location.Type != f.LocationType {
		return false
	}
	if f.Location != "" && !containsFold(f.Location, j.Location.City, j.Location.State, j.Location.Country) {
		return false
	}
	if f.MinSalary != nil && (j.Salary.Min == nil || *j.Salary.Min < *f.MinSalary) {
		return false
	}
	if f.MaxSalary != nil && (j.Salary.Max == nil || *j.Salary.Max > *f.MaxSalary) {
		return false
	}
	if len(f.Categories) > 0 && !overlapsFold(j.Categories, f.Categories) {
		return false
	}
	return true
}

// matchesAnyTerm は text のいずれかの語が haystacks に含まれるかを返します。
func matchesAnyTerm(text string, haystacks ...string) bool {
	for _, term := range strings.Fields(text) {
		if containsFold(term, haystacks...) {
			return true
		}
	}
	return false
}

func containsFold(needle string, haystacks ...string) bool {
	needle = strings.ToLower(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func overlapsFold(values, wanted []string) bool {
	for _, v := range values {
		for _, w := range wanted {
			if strings.EqualFold(v, w) {
				return true
			}
		}
	}
	return false
}

// countContained returns how many of terms appear in text.
func countContained(text string, terms []string) float64 {
	text = strings.ToLower(text)
	n := 0.0
	for _, t := range terms {
		if t != "" && strings.Contains(text, strings.ToLower(t)) {
			n++
		}
	}
	return n
}

func page[T any](hits []T, q port.SearchQuery) []T {
	start := min(q.Offset(), len(hits))
	end := min(start+q.PageSize, len(hits))
	return hits[start:end]
}

func deleteFrom[T any](mu *sync.RWMutex, m map[string]T, id string) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := m[id]; !ok {
		return port.ErrNotFound
	}
	delete(m, id)
	return nil
}

// listAfter は id 昇順で afterID より後のレコードを最大 limit 件返します。
func listAfter[T any](m map[string]T, afterID string, limit int) []T {
	ids := make([]string, 0, len(m))
	for id := range m {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
