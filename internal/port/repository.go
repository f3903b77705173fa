package port

import "context"

// SearchBackend は検索エンジンとドキュメントストアに共通する検索インターフェースです。
// 実装は PrimaryIndex (Elasticsearch) と FallbackStore (PostgreSQL) の2種類のみです。
type SearchBackend interface {
	Mode() SearchMode
	SearchJobs(ctx context.Context, query SearchQuery, filters JobFilters) (*JobPage, error)
	SearchApplicants(ctx context.Context, query SearchQuery, filters ApplicantFilters) (*ApplicantPage, error)
	RecommendJobs(ctx context.Context, query JobRecommendationQuery) ([]JobHit, error)
	RecommendCandidates(ctx context.Context, query CandidateRecommendationQuery) ([]ApplicantHit, error)
}

// SearchIndex は正規レコードの非正規化コピーを検索エンジンに保持します。
// Connect は起動時に一度だけ呼ばれ、結果はプロセスの生存期間中変わりません。
type SearchIndex interface {
	Connect(ctx context.Context) bool
	Connected() bool
	EnsureIndices(ctx context.Context) error
	IndexJob(ctx context.Context, job JobDocument) error
	IndexApplicant(ctx context.Context, applicant ApplicantDocument) error
	IndexCompany(ctx context.Context, company CompanyDocument) error
	DeleteDocument(ctx context.Context, kind DocumentKind, id string) error
	// ListIDs は kind のインデックスにある id を昇順で afterID の次から最大 limit 件返します。
	ListIDs(ctx context.Context, kind DocumentKind, afterID string, limit int) ([]string, error)
}

// JobReader fetches a canonical job by id.
type JobReader interface {
	GetJob(ctx context.Context, id string) (*JobDocument, error)
}

// ApplicantReader fetches a canonical applicant profile by owning user.
type ApplicantReader interface {
	GetApplicantByUserID(ctx context.Context, userID string) (*ApplicantDocument, error)
}

// DocumentStore は正規レコードの永続化を担当します。存在しないレコードには ErrNotFound を返します。
type DocumentStore interface {
	JobReader
	ApplicantReader

	UpsertJob(ctx context.Context, job JobDocument) (*JobDocument, error)
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, afterID string, limit int) ([]JobDocument, error)

	GetApplicant(ctx context.Context, id string) (*ApplicantDocument, error)
	UpsertApplicant(ctx context.Context, applicant ApplicantDocument) (*ApplicantDocument, error)
	DeleteApplicant(ctx context.Context, id string) error
	ListApplicants(ctx context.Context, afterID string, limit int) ([]ApplicantDocument, error)

	GetCompany(ctx context.Context, id string) (*CompanyDocument, error)
	UpsertCompany(ctx context.Context, company CompanyDocument) (*CompanyDocument, error)
	DeleteCompany(ctx context.Context, id string) error
	ListCompanies(ctx context.Context, afterID string, limit int) ([]CompanyDocument, error)
}
