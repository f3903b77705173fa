package port

import "math"

// SearchMode はリクエストに応答したバックエンドを示します。
type SearchMode string

const (
	// SearchModePrimaryIndex は検索エンジン (Elasticsearch) が応答したことを示します。
	SearchModePrimaryIndex SearchMode = "elasticsearch"
	// SearchModeFallbackStore はドキュメントストア (PostgreSQL) が応答したことを示します。
	SearchModeFallbackStore SearchMode = "postgres"
)

const (
	DefaultPage         = 1
	DefaultPageSize     = 10
	RecommendationLimit = 10
	// MaxResultWindow は page*pageSize で到達できる結果の上限です。Elasticsearch の max_result_window に合わせています。
	MaxResultWindow = 10000
)

// SearchQuery は検索リクエストの共通部分です。
type SearchQuery struct {
	Text     string
	Page     int
	PageSize int
}

// Offset は (page-1)*pageSize を返します。
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Validate rejects pagination values below 1 and pages that end past MaxResultWindow.
func (q SearchQuery) Validate() error {
	if q.Page < 1 || q.PageSize < 1 {
		return ErrInvalidPagination
	}
	if q.PageSize > MaxResultWindow || q.Page-1 > (MaxResultWindow-q.PageSize)/q.PageSize {
		return ErrInvalidPagination
	}
	return nil
}

// JobFilters は求人検索の構造化フィルタです。
type JobFilters struct {
	JobType         string
	ExperienceLevel string
	// Remote が nil の場合は制約なし。
	Remote       *bool
	LocationType string
	Location     string
	MinSalary    *float64
	MaxSalary    *float64
	Categories   []string
}

// ApplicantFilters は応募者検索の構造化フィルタです。
type ApplicantFilters struct {
	Skills   []string
	JobTypes []string
	Remote   *bool
}

// JobHit は関連度スコア付きの求人です。
type JobHit struct {
	JobDocument
	Score *float64 `json:"score,omitempty"`
}

// ApplicantHit は関連度スコア付きの応募者です。
type ApplicantHit struct {
	ApplicantDocument
	Score *float64 `json:"score,omitempty"`
}

// JobPage はバックエンドが返す求人の1ページ分です。
type JobPage struct {
	Total int64
	Hits  []JobHit
}

// ApplicantPage はバックエンドが返す応募者の1ページ分です。
type ApplicantPage struct {
	Total int64
	Hits  []ApplicantHit
}

// JobSearchResult は SearchJobs の結果です。
type JobSearchResult struct {
	Total       int64
	Jobs        []JobHit
	CurrentPage int
	TotalPages  int
	Mode        SearchMode
}

// ApplicantSearchResult は SearchApplicants の結果です。
type ApplicantSearchResult struct {
	Total       int64
	Applicants  []ApplicantHit
	CurrentPage int
	TotalPages  int
	Mode        SearchMode
}

// JobRecommendationQuery は応募者プロフィールから導出された暗黙のクエリです。
type JobRecommendationQuery struct {
	Skills     []string
	Titles     []string
	RemoteOnly bool
	JobTypes   []string
	Limit      int
}

// Empty reports whether the query carries no ranking signal.
func (q JobRecommendationQuery) Empty() bool {
	return len(q.Skills) == 0 && len(q.Titles) == 0
}

// CandidateRecommendationQuery は求人から導出された暗黙のクエリです。
type CandidateRecommendationQuery struct {
	Requirements     []string
	Responsibilities []string
	Title            string
	// ExcludeRemoteOnly は非リモート求人の場合に true になります。
	ExcludeRemoteOnly bool
	Limit             int
}

// Empty reports whether the query carries no ranking signal.
func (q CandidateRecommendationQuery) Empty() bool {
	return len(q.Requirements) == 0 && len(q.Responsibilities) == 0 && q.Title == ""
}

// JobRecommendations は求人レコメンドの結果です。
type JobRecommendations struct {
	Jobs []JobHit   `json:"jobs"`
	Mode SearchMode `json:"mode"`
}

// CandidateRecommendations は候補者レコメンドの結果です。
type CandidateRecommendations struct {
	Applicants []ApplicantHit `json:"applicants"`
	Mode       SearchMode     `json:"mode"`
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
