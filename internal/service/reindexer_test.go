package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

func TestReindexer_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: バッチ単位で全件をインデックスする", func(t *testing.T) {
		store := new(MockDocumentStore)
		index := &MockSearchIndex{connected: true}
		r := NewReindexer(store, index, 2, zap.NewNop())

		store.On("ListJobs", ctx, "", 2).Return([]port.JobDocument{{ID: "j1"}, {ID: "j2"}}, nil).Once()
		store.On("ListJobs", ctx, "j2", 2).Return([]port.JobDocument{{ID: "j3"}}, nil).Once()
		store.On("ListApplicants", ctx, "", 2).Return([]port.ApplicantDocument{{ID: "a1"}}, nil).Once()
		store.On("ListCompanies", ctx, "", 2).Return([]port.CompanyDocument{}, nil).Once()

		index.On("IndexJob", ctx, port.JobDocument{ID: "j1"}).Return(nil).Once()
		index.On("IndexJob", ctx, port.JobDocument{ID: "j2"}).Return(errors.New("rejected")).Once()
		index.On("IndexJob", ctx, port.JobDocument{ID: "j3"}).Return(nil).Once()
		index.On("IndexApplicant", ctx, port.ApplicantDocument{ID: "a1"}).Return(nil).Once()

		index.On("ListIDs", ctx, port.KindJob, "", 2).Return([]string{"j1", "j2"}, nil).Once()
		index.On("ListIDs", ctx, port.KindJob, "j2", 2).Return([]string{"j3", "j9"}, nil).Once()
		index.On("ListIDs", ctx, port.KindJob, "j9", 2).Return([]string{}, nil).Once()
		index.On("ListIDs", ctx, port.KindApplicant, "", 2).Return([]string{"a1"}, nil).Once()
		index.On("ListIDs", ctx, port.KindCompany, "", 2).Return([]string{}, nil).Once()

		// j2 はインデックスに失敗したがストアには存在するので残す
		store.On("GetJob", ctx, "j2").Return(&port.JobDocument{ID: "j2"}, nil).Once()
		store.On("GetJob", ctx, "j9").Return(nil, port.ErrNotFound).Once()
		index.On("DeleteDocument", ctx, port.KindJob, "j9").Return(nil).Once()

		stats, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Jobs)
		assert.Equal(t, 1, stats.Applicants)
		assert.Equal(t, 0, stats.Companies)
		assert.Equal(t, 1, stats.Removed)
		assert.Equal(t, 1, stats.Failed)

		store.AssertExpectations(t)
		index.AssertExpectations(t)
	})

	t.Run("正常系: ストアから消えたドキュメントをインデックスから削除する", func(t *testing.T) {
		store := new(MockDocumentStore)
		index := &MockSearchIndex{connected: true}
		r := NewReindexer(store, index, 10, zap.NewNop())

		store.On("ListJobs", ctx, "", 10).Return([]port.JobDocument{}, nil).Once()
		store.On("ListApplicants", ctx, "", 10).Return([]port.ApplicantDocument{}, nil).Once()
		store.On("ListCompanies", ctx, "", 10).Return([]port.CompanyDocument{{ID: "c1"}}, nil).Once()
		index.On("IndexCompany", ctx, port.CompanyDocument{ID: "c1"}).Return(nil).Once()

		index.On("ListIDs", ctx, port.KindJob, "", 10).Return([]string{"ghost"}, nil).Once()
		index.On("ListIDs", ctx, port.KindApplicant, "", 10).Return([]string{}, nil).Once()
		index.On("ListIDs", ctx, port.KindCompany, "", 10).Return([]string{"c1", "c-gone"}, nil).Once()

		store.On("GetJob", ctx, "ghost").Return(nil, port.ErrNotFound).Once()
		store.On("GetCompany", ctx, "c-gone").Return(nil, port.ErrNotFound).Once()
		index.On("DeleteDocument", ctx, port.KindJob, "ghost").Return(nil).Once()
		index.On("DeleteDocument", ctx, port.KindCompany, "c-gone").Return(errors.New("timeout")).Once()

		stats, err := r.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Companies)
		assert.Equal(t, 1, stats.Removed)
		assert.Equal(t, 1, stats.Failed)

		store.AssertExpectations(t)
		index.AssertExpectations(t)
		store.AssertNotCalled(t, "GetCompany", ctx, "c1")
	})

	t.Run("異常系: 存在確認の失敗では削除しない", func(t *testing.T) {
		store := new(MockDocumentStore)
		index := &MockSearchIndex{connected: true}
		r := NewReindexer(store, index, 10, zap.NewNop())

		store.On("ListJobs", ctx, "", 10).Return([]port.JobDocument{}, nil).Once()
		store.On("ListApplicants", ctx, "", 10).Return([]port.ApplicantDocument{}, nil).Once()
		store.On("ListCompanies", ctx, "", 10).Return([]port.CompanyDocument{}, nil).Once()
		index.On("ListIDs", ctx, port.KindJob, "", 10).Return([]string{"j1"}, nil).Once()
		store.On("GetJob", ctx, "j1").Return(nil, errors.New("db down")).Once()

		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "failed to prune jobs")
		index.AssertNotCalled(t, "DeleteDocument", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: インデックスの id 一覧取得失敗", func(t *testing.T) {
		store := new(MockDocumentStore)
		index := &MockSearchIndex{connected: true}
		r := NewReindexer(store, index, 10, zap.NewNop())

		store.On("ListJobs", ctx, "", 10).Return([]port.JobDocument{}, nil).Once()
		store.On("ListApplicants", ctx, "", 10).Return([]port.ApplicantDocument{}, nil).Once()
		store.On("ListCompanies", ctx, "", 10).Return([]port.CompanyDocument{}, nil).Once()
		index.On("ListIDs", ctx, port.KindJob, "", 10).Return(nil, errors.New("es down")).Once()

		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "failed to prune jobs")
	})

	t.Run("異常系: 未接続", func(t *testing.T) {
		store := new(MockDocumentStore)
		r := NewReindexer(store, &MockSearchIndex{connected: false}, 10, zap.NewNop())

		_, err := r.Run(ctx)
		assert.ErrorIs(t, err, ErrIndexUnavailable)
		store.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: ストアの読み出し失敗", func(t *testing.T) {
		store := new(MockDocumentStore)
		r := NewReindexer(store, &MockSearchIndex{connected: true}, 10, zap.NewNop())

		store.On("ListJobs", ctx, "", 10).Return(nil, errors.New("db down")).Once()

		_, err := r.Run(ctx)
		assert.ErrorContains(t, err, "failed to reindex jobs")
	})
}

func TestReindexer_Schedule(t *testing.T) {
	r := NewReindexer(new(MockDocumentStore), &MockSearchIndex{connected: true}, 0, zap.NewNop())
	ctx := context.Background()

	t.Run("異常系: 不正なスケジュール", func(t *testing.T) {
		assert.Error(t, r.Start(ctx, "not a schedule"))
	})

	t.Run("正常系: 開始と停止", func(t *testing.T) {
		require.NoError(t, r.Start(ctx, "@every 1h"))
		assert.Error(t, r.Start(ctx, "@every 1h"))
		r.Stop()
		r.Stop()
	})
}
