package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

type retrievalService struct {
	backend    port.SearchBackend
	jobs       port.JobReader
	applicants port.ApplicantReader
	cache      port.RecommendationCache
	limit      int
	logger     *zap.Logger
}

// NewRetrievalService は retrievalService の新しいインスタンスを生成します。
// cache が nil の場合、レコメンドはキャッシュされません。
func NewRetrievalService(
	selector *BackendSelector,
	jobs port.JobReader,
	applicants port.ApplicantReader,
	cache port.RecommendationCache,
	recommendationLimit int,
	logger *zap.Logger,
) port.RetrievalService {
	if cache == nil {
		cache = noopCache{}
	}
	if recommendationLimit < 1 {
		recommendationLimit = port.RecommendationLimit
	}
	return &retrievalService{
		backend:    selector.Active(),
		jobs:       jobs,
		applicants: applicants,
		cache:      cache,
		limit:      recommendationLimit,
		logger:     logger,
	}
}

func (s *retrievalService) Mode() port.SearchMode {
	return s.backend.Mode()
}

// SearchJobs は求人を検索します。バックエンドのエラーはログに残し、空の結果として返します。
func (s *retrievalService) SearchJobs(ctx context.Context, query port.SearchQuery, filters port.JobFilters) (*port.JobSearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	mode := s.backend.Mode()
	page, err := s.backend.SearchJobs(ctx, query, filters)
	if err != nil {
		s.logger.Error("job search failed",
			zap.String("search_mode", string(mode)),
			zap.String("query_text", query.Text),
			zap.Error(err),
		)
		page = &port.JobPage{}
	}

	jobs := page.Hits
	if jobs == nil {
		jobs = []port.JobHit{}
	}

	return &port.JobSearchResult{
		Total:       page.Total,
		Jobs:        jobs,
		CurrentPage: query.Page,
		TotalPages:  port.TotalPages(page.Total, query.PageSize),
		Mode:        mode,
	}, nil
}

// SearchApplicants は応募者を検索します。エラー時の扱いは SearchJobs と同じです。
func (s *retrievalService) SearchApplicants(ctx context.Context, query port.SearchQuery, filters port.ApplicantFilters) (*port.ApplicantSearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	mode := s.backend.Mode()
	page, err := s.backend.SearchApplicants(ctx, query, filters)
	if err != nil {
		s.logger.Error("applicant search failed",
			zap.String("search_mode", string(mode)),
			zap.String("query_text", query.Text),
			zap.Error(err),
		)
		page = &port.ApplicantPage{}
	}

	applicants := page.Hits
	if applicants == nil {
		applicants = []port.ApplicantHit{}
	}

	return &port.ApplicantSearchResult{
		Total:       page.Total,
		Applicants:  applicants,
		CurrentPage: query.Page,
		TotalPages:  port.TotalPages(page.Total, query.PageSize),
		Mode:        mode,
	}, nil
}

// GetJobRecommendations は userID の応募者プロフィールに合う求人を返します。
func (s *retrievalService) GetJobRecommendations(ctx context.Context, userID string) (*port.JobRecommendations, error) {
	if userID == "" {
		return nil, port.ErrUnauthenticated
	}

	profile, err := s.applicants.GetApplicantByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, port.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load applicant profile: %w", err)
	}

	mode := s.backend.Mode()
	if cached, ok := s.cache.JobsForApplicant(ctx, mode, profile.ID); ok {
		return &port.JobRecommendations{Jobs: cached, Mode: mode}, nil
	}

	hits, err := s.backend.RecommendJobs(ctx, jobRecommendationQuery(*profile, s.limit))
	if err != nil {
		s.logger.Error("job recommendation failed",
			zap.String("search_mode", string(mode)),
			zap.String("applicant_id", profile.ID),
			zap.Error(err),
		)
		return &port.JobRecommendations{Jobs: []port.JobHit{}, Mode: mode}, nil
	}
	if hits == nil {
		hits = []port.JobHit{}
	}

	s.cache.StoreJobsForApplicant(ctx, mode, profile.ID, hits)
	return &port.JobRecommendations{Jobs: hits, Mode: mode}, nil
}

// GetCandidateRecommendations は求人に合う応募者を返します。求人の所有者か管理者のみ呼び出せます。
func (s *retrievalService) GetCandidateRecommendations(ctx context.Context, caller port.Caller, jobID string) (*port.CandidateRecommendations, error) {
	if caller.UserID == "" {
		return nil, port.ErrUnauthenticated
	}

	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, fmt.Errorf("%w with id %s", port.ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	if !caller.IsAdmin() && job.CreatedBy != caller.UserID {
		return nil, port.ErrForbidden
	}

	mode := s.backend.Mode()
	if cached, ok := s.cache.CandidatesForJob(ctx, mode, job.ID); ok {
		return &port.CandidateRecommendations{Applicants: cached, Mode: mode}, nil
	}

	hits, err := s.backend.RecommendCandidates(ctx, candidateRecommendationQuery(*job, s.limit))
	if err != nil {
		s.logger.Error("candidate recommendation failed",
			zap.String("search_mode", string(mode)),
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return &port.CandidateRecommendations{Applicants: []port.ApplicantHit{}, Mode: mode}, nil
	}
	if hits == nil {
		hits = []port.ApplicantHit{}
	}

	s.cache.StoreCandidatesForJob(ctx, mode, job.ID, hits)
	return &port.CandidateRecommendations{Applicants: hits, Mode: mode}, nil
}

// noopCache は何もキャッシュしません。
type noopCache struct{}

func (noopCache) JobsForApplicant(context.Context, port.SearchMode, string) ([]port.JobHit, bool) {
	return nil, false
}

func (noopCache) StoreJobsForApplicant(context.Context, port.SearchMode, string, []port.JobHit) {}

func (noopCache) CandidatesForJob(context.Context, port.SearchMode, string) ([]port.ApplicantHit, bool) {
	return nil, false
}

func (noopCache) StoreCandidatesForJob(context.Context, port.SearchMode, string, []port.ApplicantHit) {
}

func (noopCache) InvalidateApplicant(context.Context, string) {}

func (noopCache) InvalidateJob(context.Context, string) {}
