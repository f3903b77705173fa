package port

import "context"

const (
	RoleUser     = "user"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// Caller は認証済みの呼び出し元です。
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the caller has the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// HasAnyRole reports whether the caller holds one of roles.
func (c Caller) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// RetrievalService は検索・レコメンドの唯一の入口です。どのバックエンドが応答するかは隠蔽されます。
type RetrievalService interface {
	Mode() SearchMode
	SearchJobs(ctx context.Context, query SearchQuery, filters JobFilters) (*JobSearchResult, error)
	SearchApplicants(ctx context.Context, query SearchQuery, filters ApplicantFilters) (*ApplicantSearchResult, error)
	// GetJobRecommendations はプロフィールが存在しない場合 ErrNotFound を返します。
	GetJobRecommendations(ctx context.Context, userID string) (*JobRecommendations, error)
	GetCandidateRecommendations(ctx context.Context, caller Caller, jobID string) (*CandidateRecommendations, error)
}

// CatalogService は正規レコードを保存し、検索インデックスへのミラーを非同期に投入します。
// ...As 系のメソッドは呼び出し元の所有権を確認します。
type CatalogService interface {
	SaveJob(ctx context.Context, job JobDocument) (*JobDocument, error)
	UpdateJobAs(ctx context.Context, caller Caller, job JobDocument) (*JobDocument, error)
	DeleteJob(ctx context.Context, id string) error
	DeleteJobAs(ctx context.Context, caller Caller, id string) error
	SaveApplicant(ctx context.Context, applicant ApplicantDocument) (*ApplicantDocument, error)
	DeleteApplicant(ctx context.Context, id string) error
	DeleteApplicantByUserID(ctx context.Context, userID string) error
	SaveCompany(ctx context.Context, company CompanyDocument) (*CompanyDocument, error)
	DeleteCompany(ctx context.Context, id string) error
}

// RecommendationCache はレコメンド結果のキャッシュです。失敗は実装側でログに残し、呼び出し側には返しません。
type RecommendationCache interface {
	JobsForApplicant(ctx context.Context, mode SearchMode, applicantID string) ([]JobHit, bool)
	StoreJobsForApplicant(ctx context.Context, mode SearchMode, applicantID string, hits []JobHit)
	CandidatesForJob(ctx context.Context, mode SearchMode, jobID string) ([]ApplicantHit, bool)
	StoreCandidatesForJob(ctx context.Context, mode SearchMode, jobID string, hits []ApplicantHit)
	InvalidateApplicant(ctx context.Context, applicantID string)
	InvalidateJob(ctx context.Context, jobID string)
}
