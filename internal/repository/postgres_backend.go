package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// postgresBackend は検索エンジンに接続できない場合に PostgreSQL 自身のクエリ機能で検索します。
type postgresBackend struct {
	db         PgxIface
	textSearch TextSearchMode
	logger     *zap.Logger
}

// NewPostgresBackend は新しい postgresBackend のインスタンスを生成します。
func NewPostgresBackend(db PgxIface, textSearch TextSearchMode, logger *zap.Logger) port.SearchBackend {
	if textSearch == "" {
		textSearch = TextSearchFullText
	}
	return &postgresBackend{
		db:         db,
		textSearch: textSearch,
		logger:     logger,
	}
}

func (b *postgresBackend) Mode() port.SearchMode {
	return port.SearchModeFallbackStore
}

// SearchJobs は件数取得とページ取得を並行して実行します。
func (b *postgresBackend) SearchJobs(ctx context.Context, query port.SearchQuery, filters port.JobFilters) (*port.JobPage, error) {
	q := buildJobSearchSQL(b.textSearch, query, filters)

	var (
		total int64
		jobs  []port.JobDocument
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.count(gCtx, q, &total)
	})
	g.Go(func() error {
		rows, err := b.db.Query(gCtx, q.pageSQL, q.pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query jobs: %w", err)
		}
		jobs, err = collectJobs(rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Debug("document store job search",
		zap.String("textSearch", string(b.textSearch)),
		zap.Int64("total", total),
	)

	hits := make([]port.JobHit, 0, len(jobs))
	for _, job := range jobs {
		hits = append(hits, port.JobHit{JobDocument: job})
	}
	return &port.JobPage{Total: total, Hits: hits}, nil
}

func (b *postgresBackend) SearchApplicants(ctx context.Context, query port.SearchQuery, filters port.ApplicantFilters) (*port.ApplicantPage, error) {
	q := buildApplicantSearchSQL(b.textSearch, query, filters)

	var (
		total      int64
		applicants []port.ApplicantDocument
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.count(gCtx, q, &total)
	})
	g.Go(func() error {
		rows, err := b.db.Query(gCtx, q.pageSQL, q.pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query applicants: %w", err)
		}
		applicants, err = collectApplicants(rows)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.logger.Debug("document store applicant search",
		zap.String("textSearch", string(b.textSearch)),
		zap.Int64("total", total),
	)

	hits := make([]port.ApplicantHit, 0, len(applicants))
	for _, applicant := range applicants {
		hits = append(hits, port.ApplicantHit{ApplicantDocument: applicant})
	}
	return &port.ApplicantPage{Total: total, Hits: hits}, nil
}

func (b *postgresBackend) count(ctx context.Context, q pagedSQL, total *int64) error {
	if err := b.db.QueryRow(ctx, q.countSQL, q.args...).Scan(total); err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	return nil
}

func (b *postgresBackend) RecommendJobs(ctx context.Context, query port.JobRecommendationQuery) ([]port.JobHit, error) {
	if query.Empty() {
		return []port.JobHit{}, nil
	}

	sql, args := buildJobRecommendationSQL(query)
	rows, err := b.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query job recommendations: %w", err)
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return nil, err
	}

	hits := make([]port.JobHit, 0, len(jobs))
	for _, job := range jobs {
		hits = append(hits, port.JobHit{JobDocument: job})
	}
	return hits, nil
}

func (b *postgresBackend) RecommendCandidates(ctx context.Context, query port.CandidateRecommendationQuery) ([]port.ApplicantHit, error) {
	if query.Empty() {
		return []port.ApplicantHit{}, nil
	}

	sql, args := buildCandidateRecommendationSQL(query)
	rows, err := b.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate recommendations: %w", err)
	}
	applicants, err := collectApplicants(rows)
	if err != nil {
		return nil, err
	}

	hits := make([]port.ApplicantHit, 0, len(applicants))
	for _, applicant := range applicants {
		hits = append(hits, port.ApplicantHit{ApplicantDocument: applicant})
	}
	return hits, nil
}
