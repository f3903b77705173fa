package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types/enums/result"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// IndexNames は種別ごとのインデックス名です。
type IndexNames struct {
	Jobs       string
	Applicants string
	Companies  string
}

// NewIndexNames は prefix を付与したインデックス名を返します。
func NewIndexNames(prefix string) IndexNames {
	return IndexNames{
		Jobs:       prefix + "jobs",
		Applicants: prefix + "applicants",
		Companies:  prefix + "companies",
	}
}

// ForKind returns the index that holds documents of kind.
func (n IndexNames) ForKind(kind port.DocumentKind) (string, error) {
	switch kind {
	case port.KindJob:
		return n.Jobs, nil
	case port.KindApplicant:
		return n.Applicants, nil
	case port.KindCompany:
		return n.Companies, nil
	default:
		return "", fmt.Errorf("%w: unknown document kind %q", port.ErrInvalidInput, kind)
	}
}

// indexManager は Elasticsearch のインデックスのライフサイクルと書き込みを担当します。
type indexManager struct {
	es        *elasticsearch.TypedClient
	names     IndexNames
	logger    *zap.Logger
	connected atomic.Bool
}

// NewIndexManager は新しい indexManager のインスタンスを生成します。
// Connect が成功するまでは切断状態として扱われます。
func NewIndexManager(es *elasticsearch.TypedClient, names IndexNames, logger *zap.Logger) port.SearchIndex {
	return &indexManager{
		es:     es,
		names:  names,
		logger: logger,
	}
}

// Connect は Elasticsearch への疎通を一度だけ確認します。失敗した場合、再接続は行いません。
func (m *indexManager) Connect(ctx context.Context) bool {
	res, err := m.es.Info().Do(ctx)
	if err != nil {
		m.logger.Warn("elasticsearch is unreachable, falling back to document store", zap.Error(err))
		m.connected.Store(false)
		return false
	}

	m.logger.Info("connected to elasticsearch", zap.String("cluster", res.ClusterName))
	m.connected.Store(true)
	return true
}

func (m *indexManager) Connected() bool {
	return m.connected.Load()
}

// EnsureIndices は存在しないインデックスのみを明示的なマッピングで作成します。
// 既存のインデックスは上書きしません。
func (m *indexManager) EnsureIndices(ctx context.Context) error {
	if !m.Connected() {
		return nil
	}

	targets := []struct {
		name string
		body mapping
	}{
		{m.names.Jobs, jobsMapping()},
		{m.names.Applicants, applicantsMapping()},
		{m.names.Companies, companiesMapping()},
	}

	errs := make([]error, len(targets))
	var g errgroup.Group
	for i, target := range targets {
		g.Go(func() error {
			if err := m.ensureIndex(ctx, target.name, target.body); err != nil {
				m.logger.Error("failed to ensure index", zap.String("index", target.name), zap.Error(err))
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (m *indexManager) ensureIndex(ctx context.Context, name string, body mapping) error {
	exists, err := m.es.Indices.Exists(name).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	if exists {
		return nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal elasticsearch mappings: %w", err)
	}

	res, err := m.es.Indices.Create(name).Raw(bytes.NewReader(payload)).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create elasticsearch index: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("elasticsearch index creation not acknowledged")
	}

	m.logger.Info("index created", zap.String("index", name))
	return nil
}

func (m *indexManager) IndexJob(ctx context.Context, job port.JobDocument) error {
	return m.index(ctx, m.names.Jobs, job.ID, job)
}

func (m *indexManager) IndexApplicant(ctx context.Context, applicant port.ApplicantDocument) error {
	return m.index(ctx, m.names.Applicants, applicant.ID, applicant)
}

func (m *indexManager) IndexCompany(ctx context.Context, company port.CompanyDocument) error {
	return m.index(ctx, m.names.Companies, company.ID, company)
}

func (m *indexManager) index(ctx context.Context, indexName, id string, doc interface{}) error {
	if !m.Connected() {
		return nil
	}
	if id == "" {
		return fmt.Errorf("%w: document id must not be empty", port.ErrInvalidInput)
	}

	res, err := m.es.Index(indexName).Id(id).Request(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index document in elasticsearch: %w", err)
	}
	if res.Result != result.Created && res.Result != result.Updated {
		return fmt.Errorf("unexpected elasticsearch index result: %s", res.Result)
	}
	return nil
}

// DeleteDocument はインデックスからドキュメントを削除します。対象が存在しない場合も成功として扱います。
func (m *indexManager) DeleteDocument(ctx context.Context, kind port.DocumentKind, id string) error {
	if !m.Connected() {
		return nil
	}

	indexName, err := m.names.ForKind(kind)
	if err != nil {
		return err
	}

	res, err := m.es.Delete(indexName, id).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document from elasticsearch: %w", err)
	}
	if res.Result != result.Deleted && res.Result != result.Notfound {
		return fmt.Errorf("unexpected elasticsearch delete result: %s", res.Result)
	}
	return nil
}

// ListIDs はインデックス上の id を昇順にページングして返します。切断中は空です。
func (m *indexManager) ListIDs(ctx context.Context, kind port.DocumentKind, afterID string, limit int) ([]string, error) {
	if !m.Connected() {
		return nil, nil
	}

	indexName, err := m.names.ForKind(kind)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", port.ErrInvalidInput)
	}

	res, err := m.es.Search().Index(indexName).Request(buildIDListRequest(afterID, limit)).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list document ids from elasticsearch: %w", err)
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if hit.Id_ != nil {
			ids = append(ids, *hit.Id_)
		}
	}
	return ids, nil
}
