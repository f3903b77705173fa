package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// Mirror は正規レコードの変更を検索インデックスへ非同期に反映します。
// 各ミラーは一度だけ試行され、失敗はログに残すのみで書き込み側には伝播しません。
// 同じドキュメントへのミラーは投入順に一つずつ実行されます。
type Mirror struct {
	index  port.SearchIndex
	logger *zap.Logger
	wg     sync.WaitGroup

	mu sync.Mutex
	// tails はドキュメントごとに最後に投入されたミラーの完了通知です。
	tails map[string]chan struct{}
}

// NewMirror は新しい Mirror を生成します。
func NewMirror(index port.SearchIndex, logger *zap.Logger) *Mirror {
	return &Mirror{index: index, logger: logger, tails: make(map[string]chan struct{})}
}

func (m *Mirror) Job(ctx context.Context, job port.JobDocument) {
	m.submit(ctx, port.KindJob, job.ID, func(ctx context.Context) error {
		return m.index.IndexJob(ctx, job)
	})
}

func (m *Mirror) Applicant(ctx context.Context, applicant port.ApplicantDocument) {
	m.submit(ctx, port.KindApplicant, applicant.ID, func(ctx context.Context) error {
		return m.index.IndexApplicant(ctx, applicant)
	})
}

func (m *Mirror) Company(ctx context.Context, company port.CompanyDocument) {
	m.submit(ctx, port.KindCompany, company.ID, func(ctx context.Context) error {
		return m.index.IndexCompany(ctx, company)
	})
}

func (m *Mirror) Delete(ctx context.Context, kind port.DocumentKind, id string) {
	m.submit(ctx, kind, id, func(ctx context.Context) error {
		return m.index.DeleteDocument(ctx, kind, id)
	})
}

func (m *Mirror) submit(ctx context.Context, kind port.DocumentKind, id string, fn func(context.Context) error) {
	if m == nil || m.index == nil || !m.index.Connected() {
		return
	}

	// リクエスト完了後も実行を続けるため、キャンセルは引き継がない
	ctx = context.WithoutCancel(ctx)

	key := string(kind) + "/" + id
	done := make(chan struct{})
	m.mu.Lock()
	prev := m.tails[key]
	m.tails[key] = done
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(key, done)
		if prev != nil {
			<-prev
		}
		if err := fn(ctx); err != nil {
			m.logger.Error("failed to mirror document to search index",
				zap.String("kind", string(kind)),
				zap.String("document_id", id),
				zap.Error(err),
			)
		}
	}()
}

func (m *Mirror) release(key string, done chan struct{}) {
	close(done)
	m.mu.Lock()
	if m.tails[key] == done {
		delete(m.tails, key)
	}
	m.mu.Unlock()
}

// Wait は実行中のミラーが終わるか ctx が終了するまで待ちます。
func (m *Mirror) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
