package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// ErrIndexUnavailable は検索インデックスに接続していない状態で再同期を要求した場合に返されます。
var ErrIndexUnavailable = errors.New("search index is not connected")

const defaultReindexBatchSize = 200

// ReindexStats は1回の再同期の結果です。
type ReindexStats struct {
	Jobs       int
	Applicants int
	Companies  int
	// Removed はストアに存在しないためインデックスから削除したドキュメント数です。
	Removed  int
	Failed   int
	Duration time.Duration
}

// Reindexer はドキュメントストアの全レコードを検索インデックスへ書き戻し、
// ストアから消えたドキュメントをインデックスから取り除きます。
type Reindexer struct {
	store     port.DocumentStore
	index     port.SearchIndex
	batchSize int
	logger    *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewReindexer は新しい Reindexer を生成します。
func NewReindexer(store port.DocumentStore, index port.SearchIndex, batchSize int, logger *zap.Logger) *Reindexer {
	if batchSize < 1 {
		batchSize = defaultReindexBatchSize
	}
	return &Reindexer{
		store:     store,
		index:     index,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run は求人・応募者・企業の順に全件をインデックスし、続いて孤立したドキュメントを削除します。
// 個々のドキュメントの失敗は Failed に数えて続行し、ストアやインデックスの読み出し失敗は即座に返します。
func (r *Reindexer) Run(ctx context.Context) (*ReindexStats, error) {
	if !r.index.Connected() {
		return nil, ErrIndexUnavailable
	}

	started := time.Now()
	stats := &ReindexStats{}

	jobs, err := reindexAll(ctx, r, stats, r.store.ListJobs, func(j port.JobDocument) string { return j.ID }, r.index.IndexJob)
	stats.Jobs = len(jobs)
	if err != nil {
		return stats, fmt.Errorf("failed to reindex jobs: %w", err)
	}

	applicants, err := reindexAll(ctx, r, stats, r.store.ListApplicants, func(a port.ApplicantDocument) string { return a.ID }, r.index.IndexApplicant)
	stats.Applicants = len(applicants)
	if err != nil {
		return stats, fmt.Errorf("failed to reindex applicants: %w", err)
	}

	companies, err := reindexAll(ctx, r, stats, r.store.ListCompanies, func(c port.CompanyDocument) string { return c.ID }, r.index.IndexCompany)
	stats.Companies = len(companies)
	if err != nil {
		return stats, fmt.Errorf("failed to reindex companies: %w", err)
	}

	if err := pruneOrphans(ctx, r, stats, port.KindJob, jobs, r.store.GetJob); err != nil {
		return stats, fmt.Errorf("failed to prune jobs: %w", err)
	}
	if err := pruneOrphans(ctx, r, stats, port.KindApplicant, applicants, r.store.GetApplicant); err != nil {
		return stats, fmt.Errorf("failed to prune applicants: %w", err)
	}
	if err := pruneOrphans(ctx, r, stats, port.KindCompany, companies, r.store.GetCompany); err != nil {
		return stats, fmt.Errorf("failed to prune companies: %w", err)
	}

	stats.Duration = time.Since(started)
	r.logger.Info("reindex completed",
		zap.Int("jobs", stats.Jobs),
		zap.Int("applicants", stats.Applicants),
		zap.Int("companies", stats.Companies),
		zap.Int("removed", stats.Removed),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// reindexAll は afterID によるキーセットページングで list を読み切り、各ドキュメントを index に渡します。
// 戻り値はインデックスに成功したドキュメントの id 集合です。
func reindexAll[T any](
	ctx context.Context,
	r *Reindexer,
	stats *ReindexStats,
	list func(ctx context.Context, afterID string, limit int) ([]T, error),
	idOf func(T) string,
	index func(ctx context.Context, doc T) error,
) (map[string]struct{}, error) {
	indexed := make(map[string]struct{})
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}

		batch, err := list(ctx, afterID, r.batchSize)
		if err != nil {
			return indexed, err
		}

		for _, doc := range batch {
			id := idOf(doc)
			if err := index(ctx, doc); err != nil {
				stats.Failed++
				r.logger.Warn("failed to reindex document", zap.String("document_id", id), zap.Error(err))
				continue
			}
			indexed[id] = struct{}{}
		}

		if len(batch) < r.batchSize {
			return indexed, nil
		}
		afterID = idOf(batch[len(batch)-1])
	}
}

// pruneOrphans はインデックス上の kind の id を走査し、今回の走査で見なかった id のうち
// ストアにも存在しないものを削除します。走査中に作成されたレコードは get で確認して残します。
func pruneOrphans[T any](
	ctx context.Context,
	r *Reindexer,
	stats *ReindexStats,
	kind port.DocumentKind,
	seen map[string]struct{},
	get func(ctx context.Context, id string) (*T, error),
) error {
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ids, err := r.index.ListIDs(ctx, kind, afterID, r.batchSize)
		if err != nil {
			return err
		}

		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			_, err := get(ctx, id)
			if err == nil {
				continue
			}
			if !errors.Is(err, port.ErrNotFound) {
				return err
			}
			if err := r.index.DeleteDocument(ctx, kind, id); err != nil {
				stats.Failed++
				r.logger.Warn("failed to remove orphaned document",
					zap.String("kind", string(kind)), zap.String("document_id", id), zap.Error(err))
				continue
			}
			stats.Removed++
		}

		if len(ids) < r.batchSize {
			return nil
		}
		afterID = ids[len(ids)-1]
	}
}

// Start は spec に従って定期的な再同期を開始します。
func (r *Reindexer) Start(ctx context.Context, spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return errors.New("reindex schedule already started")
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := r.Run(ctx); err != nil {
			r.logger.Error("scheduled reindex failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reindex schedule %q: %w", spec, err)
	}

	c.Start()
	r.cron = c
	r.logger.Info("reindex schedule started", zap.String("schedule", spec))
	return nil
}

// Stop はスケジュールを止め、実行中の再同期が終わるまで待ちます。
func (r *Reindexer) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	r.logger.Info("reindex schedule stopped")
}
