package rest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// MockRetrievalService は port.RetrievalService のモックです。
type MockRetrievalService struct {
	mock.Mock
}

func (m *MockRetrievalService) Mode() port.SearchMode {
	return m.Called().Get(0).(port.SearchMode)
}

func (m *MockRetrievalService) SearchJobs(ctx context.Context, query port.SearchQuery, filters port.JobFilters) (*port.JobSearchResult, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobSearchResult), args.Error(1)
}

func (m *MockRetrievalService) SearchApplicants(ctx context.Context, query port.SearchQuery, filters port.ApplicantFilters) (*port.ApplicantSearchResult, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ApplicantSearchResult), args.Error(1)
}

func (m *MockRetrievalService) GetJobRecommendations(ctx context.Context, userID string) (*port.JobRecommendations, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobRecommendations), args.Error(1)
}

func (m *MockRetrievalService) GetCandidateRecommendations(ctx context.Context, caller port.Caller, jobID string) (*port.CandidateRecommendations, error) {
	args := m.Called(ctx, caller, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CandidateRecommendations), args.Error(1)
}

// MockCatalogService は port.CatalogService のモックです。
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) SaveJob(ctx context.Context, job port.JobDocument) (*port.JobDocument, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobDocument), args.Error(1)
}

func (m *MockCatalogService) UpdateJobAs(ctx context.Context, caller port.Caller, job port.JobDocument) (*port.JobDocument, error) {
	args := m.Called(ctx, caller, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.JobDocument), args.Error(1)
}

func (m *MockCatalogService) DeleteJob(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) DeleteJobAs(ctx context.Context, caller port.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *MockCatalogService) SaveApplicant(ctx context.Context, applicant port.ApplicantDocument) (*port.ApplicantDocument, error) {
	args := m.Called(ctx, applicant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ApplicantDocument), args.Error(1)
}

func (m *MockCatalogService) DeleteApplicant(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) DeleteApplicantByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCatalogService) SaveCompany(ctx context.Context, company port.CompanyDocument) (*port.CompanyDocument, error) {
	args := m.Called(ctx, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompanyDocument), args.Error(1)
}

func (m *MockCatalogService) DeleteCompany(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
