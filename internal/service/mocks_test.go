package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// MockSearchBackend は port.SearchBackend のモック。
type MockSearchBackend struct {
	mock.Mock
	mode port.SearchMode
}

func newMockBackend(mode port.SearchMode) *MockSearchBackend {
	return &MockSearchBackend{mode: mode}
}

func (m *MockSearchBackend) Mode() port.SearchMode {
	return m.mode
}

func (m *MockSearchBackend) SearchJobs(ctx context.Context, query port.SearchQuery, filters port.JobFilters) (*port.JobPage, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobPage), args.Error(1)
}

func (m *MockSearchBackend) SearchApplicants(ctx context.Context, query port.SearchQuery, filters port.ApplicantFilters) (*port.ApplicantPage, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ApplicantPage), args.Error(1)
}

func (m *MockSearchBackend) RecommendJobs(ctx context.Context, query port.JobRecommendationQuery) ([]port.JobHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.JobHit), args.Error(1)
}

func (m *MockSearchBackend) RecommendCandidates(ctx context.Context, query port.CandidateRecommendationQuery) ([]port.ApplicantHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.ApplicantHit), args.Error(1)
}

// MockDocumentStore は port.DocumentStore のモック。
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) GetJob(ctx context.Context, id string) (*port.JobDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobDocument), args.Error(1)
}

func (m *MockDocumentStore) UpsertJob(ctx context.Context, job port.JobDocument) (*port.JobDocument, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobDocument), args.Error(1)
}

func (m *MockDocumentStore) DeleteJob(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDocumentStore) ListJobs(ctx context.Context, afterID string, limit int) ([]port.JobDocument, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.JobDocument), args.Error(1)
}

func (m *MockDocumentStore) GetApplicant(ctx context.Context, id string) (*port.ApplicantDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ApplicantDocument), args.Error(1)
}

func (m *MockDocumentStore) GetApplicantByUserID(ctx context.Context, userID string) (*port.ApplicantDocument, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ApplicantDocument), args.Error(1)
}

func (m *MockDocumentStore) UpsertApplicant(ctx context.Context, applicant port.ApplicantDocument) (*port.ApplicantDocument, error) {
	args := m.Called(ctx, applicant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ApplicantDocument), args.Error(1)
}

func (m *MockDocumentStore) DeleteApplicant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDocumentStore) ListApplicants(ctx context.Context, afterID string, limit int) ([]port.ApplicantDocument, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.ApplicantDocument), args.Error(1)
}

func (m *MockDocumentStore) GetCompany(ctx context.Context, id string) (*port.CompanyDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompanyDocument), args.Error(1)
}

func (m *MockDocumentStore) UpsertCompany(ctx context.Context, company port.CompanyDocument) (*port.CompanyDocument, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompanyDocument), args.Error(1)
}

func (m *MockDocumentStore) DeleteCompany(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDocumentStore) ListCompanies(ctx context.Context, afterID string, limit int) ([]port.CompanyDocument, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.CompanyDocument), args.Error(1)
}

// MockSearchIndex は port.SearchIndex のモック。
type MockSearchIndex struct {
	mock.Mock
	connected bool
}

func (m *MockSearchIndex) Connect(ctx context.Context) bool {
	return m.connected
}

func (m *MockSearchIndex) Connected() bool {
	return m.connected
}

func (m *MockSearchIndex) EnsureIndices(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSearchIndex) IndexJob(ctx context.Context, job port.JobDocument) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockSearchIndex) IndexApplicant(ctx context.Context, applicant port.ApplicantDocument) error {
	return m.Called(ctx, applicant).Error(0)
}

func (m *MockSearchIndex) IndexCompany(ctx context.Context, company port.CompanyDocument) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockSearchIndex) DeleteDocument(ctx context.Context, kind port.DocumentKind, id string) error {
	return m.Called(ctx, kind, id).Error(0)
}

func (m *MockSearchIndex) ListIDs(ctx context.Context, kind port.DocumentKind, afterID string, limit int) ([]string, error) {
	args := m.Called(ctx, kind, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockRecommendationCache は port.RecommendationCache のモック。
type MockRecommendationCache struct {
	mock.Mock
}

func (m *MockRecommendationCache) JobsForApplicant(ctx context.Context, mode port.SearchMode, applicantID string) ([]port.JobHit, bool) {
	args := m.Called(ctx, mode, applicantID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]port.JobHit), args.Bool(1)
}

func (m *MockRecommendationCache) StoreJobsForApplicant(ctx context.Context, mode port.SearchMode, applicantID string, hits []port.JobHit) {
	m.Called(ctx, mode, applicantID, hits)
}

func (m *MockRecommendationCache) CandidatesForJob(ctx context.Context, mode port.SearchMode, jobID string) ([]port.ApplicantHit, bool) {
	args := m.Called(ctx, mode, jobID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]port.ApplicantHit), args.Bool(1)
}

func (m *MockRecommendationCache) StoreCandidatesForJob(ctx context.Context, mode port.SearchMode, jobID string, hits []port.ApplicantHit) {
	m.Called(ctx, mode, jobID, hits)
}

func (m *MockRecommendationCache) InvalidateApplicant(ctx context.Context, applicantID string) {
	m.Called(ctx, applicantID)
}

func (m *MockRecommendationCache) InvalidateJob(ctx context.Context, jobID string) {
	m.Called(ctx, jobID)
}
