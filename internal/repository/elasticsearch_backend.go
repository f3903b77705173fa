package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// elasticsearchBackend は Elasticsearch を使って検索とレコメンドを実行します。
type elasticsearchBackend struct {
	es     *elasticsearch.TypedClient
	names  IndexNames
	logger *zap.Logger
}

// NewElasticsearchBackend は新しい elasticsearchBackend のインスタンスを生成します。
func NewElasticsearchBackend(es *elasticsearch.TypedClient, names IndexNames, logger *zap.Logger) port.SearchBackend {
	return &elasticsearchBackend{
		es:     es,
		names:  names,
		logger: logger,
	}
}

func (b *elasticsearchBackend) Mode() port.SearchMode {
	return port.SearchModePrimaryIndex
}

// SearchJobs は求人インデックスに対して全文検索とフィルタを実行します。
func (b *elasticsearchBackend) SearchJobs(ctx context.Context, query port.SearchQuery, filters port.JobFilters) (*port.JobPage, error) {
	res, err := b.search(ctx, b.names.Jobs, buildJobSearchRequest(query, filters))
	if err != nil {
		return nil, err
	}

	return &port.JobPage{
		Total: totalHits(res),
		Hits:  decodeJobHits(res.Hits.Hits, b.logger),
	}, nil
}

// SearchApplicants は応募者インデックスに対して全文検索とフィルタを実行します。
func (b *elasticsearchBackend) SearchApplicants(ctx context.Context, query port.SearchQuery, filters port.ApplicantFilters) (*port.ApplicantPage, error) {
	res, err := b.search(ctx, b.names.Applicants, buildApplicantSearchRequest(query, filters))
	if err != nil {
		return nil, err
	}

	return &port.ApplicantPage{
		Total: totalHits(res),
		Hits:  decodeApplicantHits(res.Hits.Hits, b.logger),
	}, nil
}

func (b *elasticsearchBackend) RecommendJobs(ctx context.Context, query port.JobRecommendationQuery) ([]port.JobHit, error) {
	if query.Empty() {
		return []port.JobHit{}, nil
	}

	res, err := b.search(ctx, b.names.Jobs, buildJobRecommendationRequest(query))
	if err != nil {
		return nil, err
	}
	return decodeJobHits(res.Hits.Hits, b.logger), nil
}

func (b *elasticsearchBackend) RecommendCandidates(ctx context.Context, query port.CandidateRecommendationQuery) ([]port.ApplicantHit, error) {
	if query.Empty() {
		return []port.ApplicantHit{}, nil
	}

	res, err := b.search(ctx, b.names.Applicants, buildCandidateRecommendationRequest(query))
	if err != nil {
		return nil, err
	}
	return decodeApplicantHits(res.Hits.Hits, b.logger), nil
}

func (b *elasticsearchBackend) search(ctx context.Context, indexName string, req *search.Request) (*search.Response, error) {
	res, err := b.es.Search().Index(indexName).Request(req).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search request failed: %w", err)
	}
	return res, nil
}

func totalHits(res *search.Response) int64 {
	if res.Hits.Total == nil {
		return int64(len(res.Hits.Hits))
	}
	return res.Hits.Total.Value
}

func decodeJobHits(hits []types.Hit, logger *zap.Logger) []port.JobHit {
	jobs := make([]port.JobHit, 0, len(hits))
	for _, hit := range hits {
		var doc port.JobDocument
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			logger.Warn("failed to unmarshal job source", zap.Error(err))
			continue
		}
		if hit.Id_ != nil {
			doc.ID = *hit.Id_
		}
		jobs = append(jobs, port.JobHit{JobDocument: doc, Score: hitScore(hit)})
	}
	return jobs
}

func decodeApplicantHits(hits []types.Hit, logger *zap.Logger) []port.ApplicantHit {
	applicants := make([]port.ApplicantHit, 0, len(hits))
	for _, hit := range hits {
		var doc port.ApplicantDocument
		if err := json.Unmarshal(hit.Source_, &doc); err != nil {
			logger.Warn("failed to unmarshal applicant source", zap.Error(err))
			continue
		}
		if hit.Id_ != nil {
			doc.ID = *hit.Id_
		}
		applicants = append(applicants, port.ApplicantHit{ApplicantDocument: doc, Score: hitScore(hit)})
	}
	return applicants
}

func hitScore(hit types.Hit) *float64 {
	if hit.Score_ == nil {
		return nil
	}
	score := float64(*hit.Score_)
	return &score
}
