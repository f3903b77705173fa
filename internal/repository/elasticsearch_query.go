package repository

import (
	"strings"

	"github.com/elastic/go-elasticsearch/v9/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types/enums/sortorder"
	"github.com/elastic/go-elasticsearch/v9/typedapi/types/enums/textquerytype"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// 求人の全文検索対象フィールドと重み
var jobTextFields = []string{
	"title^3",
	"company^2",
	"description",
	"requirements",
	"responsibilities",
	"categories",
	"tags",
}

var applicantRootFields = []string{"headline^3", "summary^2"}

const fuzzinessAuto = "AUTO"

// buildJobSearchRequest は求人検索のリクエストを構築します。
func buildJobSearchRequest(query port.SearchQuery, filters port.JobFilters) *search.Request {
	return newPagedRequest(buildJobQuery(query.Text, filters), query, jobSort())
}

func buildJobQuery(text string, filters port.JobFilters) *types.Query {
	boolQuery := &types.BoolQuery{}

	if text = strings.TrimSpace(text); text != "" {
		boolQuery.Must = append(boolQuery.Must, fuzzyMultiMatch(text, jobTextFields))
	} else {
		boolQuery.Must = append(boolQuery.Must, types.Query{MatchAll: &types.MatchAllQuery{}})
	}

	if filters.JobType != "" {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("jobType", filters.JobType))
	}
	if filters.ExperienceLevel != "" {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("experienceLevel", filters.ExperienceLevel))
	}
	if filters.Remote != nil {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("location.remote", *filters.Remote))
	}
	if filters.LocationType != "" {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("location.type", filters.LocationType))
	}
	if loc := strings.TrimSpace(filters.Location); loc != "" {
		boolQuery.Filter = append(boolQuery.Filter, types.Query{
			Bool: &types.BoolQuery{
				Should: []types.Query{
					matchQuery("location.city", loc),
					matchQuery("location.state", loc),
					matchQuery("location.country", loc),
				},
				MinimumShouldMatch: 1,
			},
		})
	}
	if filters.MinSalary != nil {
		boolQuery.Filter = append(boolQuery.Filter, numberRangeQuery("salary.min", filters.MinSalary, nil))
	}
	if filters.MaxSalary != nil {
		boolQuery.Filter = append(boolQuery.Filter, numberRangeQuery("salary.max", nil, filters.MaxSalary))
	}
	if len(filters.Categories) > 0 {
		boolQuery.Filter = append(boolQuery.Filter, termsQuery("categories", filters.Categories))
	}

	return &types.Query{Bool: boolQuery}
}

// buildApplicantSearchRequest は応募者検索のリクエストを構築します。
func buildApplicantSearchRequest(query port.SearchQuery, filters port.ApplicantFilters) *search.Request {
	return newPagedRequest(buildApplicantQuery(query.Text, filters), query, applicantSort())
}

func buildApplicantQuery(text string, filters port.ApplicantFilters) *types.Query {
	boolQuery := &types.BoolQuery{}

	if text = strings.TrimSpace(text); text != "" {
		// skills / workExperience / education は nested のため、パスごとに nested クエリで包む
		boolQuery.Must = append(boolQuery.Must, types.Query{
			Bool: &types.BoolQuery{
				Should: []types.Query{
					fuzzyMultiMatch(text, applicantRootFields),
					nestedQuery("skills", fuzzyMultiMatch(text, []string{"skills.name^3"})),
					nestedQuery("workExperience", fuzzyMultiMatch(text, []string{"workExperience.position^2", "workExperience.company"})),
					nestedQuery("education", fuzzyMultiMatch(text, []string{"education.field"})),
				},
				MinimumShouldMatch: 1,
			},
		})
	} else {
		boolQuery.Must = append(boolQuery.Must, types.Query{MatchAll: &types.MatchAllQuery{}})
	}

	if len(filters.Skills) > 0 {
		boolQuery.Filter = append(boolQuery.Filter, nestedQuery("skills", termsQuery("skills.name.keyword", filters.Skills)))
	}
	if len(filters.JobTypes) > 0 {
		boolQuery.Filter = append(boolQuery.Filter, termsQuery("preferredJobTypes", filters.JobTypes))
	}
	if filters.Remote != nil {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("isRemoteOnly", *filters.Remote))
	}

	return &types.Query{Bool: boolQuery}
}

// buildJobRecommendationRequest は応募者のスキルと職歴から求人レコメンドのリクエストを構築します。
func buildJobRecommendationRequest(q port.JobRecommendationQuery) *search.Request {
	boolQuery := &types.BoolQuery{MinimumShouldMatch: 1}

	if len(q.Skills) > 0 {
		crossFields := textquerytype.Crossfields
		boolQuery.Should = append(boolQuery.Should, types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  strings.Join(q.Skills, " "),
				Fields: []string{"requirements^3", "description", "responsibilities"},
				Type:   &crossFields,
			},
		})
	}
	if len(q.Titles) > 0 {
		bestFields := textquerytype.Bestfields
		boolQuery.Should = append(boolQuery.Should, types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:     strings.Join(q.Titles, " "),
				Fields:    []string{"title^3"},
				Type:      &bestFields,
				Fuzziness: fuzzinessAuto,
			},
		})
	}

	if q.RemoteOnly {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("location.remote", true))
	}
	if len(q.JobTypes) > 0 {
		boolQuery.Filter = append(boolQuery.Filter, termsQuery("jobType", q.JobTypes))
	}

	return newTopRequest(&types.Query{Bool: boolQuery}, q.Limit, jobSort())
}

// buildCandidateRecommendationRequest は求人の要件と職務内容から候補者レコメンドのリクエストを構築します。
func buildCandidateRecommendationRequest(q port.CandidateRecommendationQuery) *search.Request {
	boolQuery := &types.BoolQuery{MinimumShouldMatch: 1}

	if len(q.Requirements) > 0 {
		boolQuery.Should = append(boolQuery.Should, nestedQuery("skills", types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  strings.Join(q.Requirements, " "),
				Fields: []string{"skills.name^3"},
			},
		}))
	}

	experience := make([]string, 0, len(q.Responsibilities)+1)
	if q.Title != "" {
		experience = append(experience, q.Title)
	}
	experience = append(experience, q.Responsibilities...)
	if len(experience) > 0 {
		boolQuery.Should = append(boolQuery.Should, nestedQuery("workExperience", types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  strings.Join(experience, " "),
				Fields: []string{"workExperience.position^3", "workExperience.description"},
			},
		}))
	}

	if q.ExcludeRemoteOnly {
		boolQuery.Filter = append(boolQuery.Filter, termQuery("isRemoteOnly", false))
	}

	return newTopRequest(&types.Query{Bool: boolQuery}, q.Limit, applicantSort())
}

func newPagedRequest(query *types.Query, page port.SearchQuery, sort []types.SortCombinations) *search.Request {
	from := page.Offset()
	size := page.PageSize
	return &search.Request{
		Query:          query,
		From:           &from,
		Size:           &size,
		Sort:           sort,
		TrackTotalHits: true,
	}
}

func newTopRequest(query *types.Query, limit int, sort []types.SortCombinations) *search.Request {
	if limit < 1 {
		limit = port.RecommendationLimit
	}
	return &search.Request{
		Query: query,
		Size:  &limit,
		Sort:  sort,
	}
}

func jobSort() []types.SortCombinations {
	return []types.SortCombinations{scoreSort(), fieldSortDesc("createdAt")}
}

func applicantSort() []types.SortCombinations {
	return []types.SortCombinations{scoreSort(), fieldSortDesc("updatedAt")}
}

func scoreSort() *types.SortOptions {
	order := sortorder.Desc
	return &types.SortOptions{Score_: &types.ScoreSort{Order: &order}}
}

func fieldSortDesc(field string) *types.SortOptions {
	order := sortorder.Desc
	return &types.SortOptions{
		SortOptions: map[string]types.FieldSort{
			field: {Order: &order},
		},
	}
}

func fuzzyMultiMatch(text string, fields []string) types.Query {
	return types.Query{
		MultiMatch: &types.MultiMatchQuery{
			Query:     text,
			Fields:    fields,
			Fuzziness: fuzzinessAuto,
		},
	}
}

func termQuery(field string, value interface{}) types.Query {
	return types.Query{
		Term: map[string]types.TermQuery{
			field: {Value: value},
		},
	}
}

func termsQuery(field string, values []string) types.Query {
	return types.Query{
		Terms: &types.TermsQuery{
			TermsQuery: map[string]types.TermsQueryField{
				field: values,
			},
		},
	}
}

func matchQuery(field, text string) types.Query {
	return types.Query{
		Match: map[string]types.MatchQuery{
			field: {Query: text},
		},
	}
}

func numberRangeQuery(field string, gte, lte *float64) types.Query {
	rq := &types.NumberRangeQuery{}
	if gte != nil {
		v := types.Float64(*gte)
		rq.Gte = &v
	}
	if lte != nil {
		v := types.Float64(*lte)
		rq.Lte = &v
	}
	return types.Query{
		Range: map[string]types.RangeQuery{
			field: rq,
		},
	}
}

// nestedQuery は inner を path の nested クエリで包みます。
func nestedQuery(path string, inner types.Query) types.Query {
	return types.Query{
		Nested: &types.NestedQuery{
			Path:  path,
			Query: inner,
		},
	}
}

func fieldSortAsc(field string) *types.SortOptions {
	order := sortorder.Asc
	return &types.SortOptions{
		SortOptions: map[string]types.FieldSort{
			field: {Order: &order},
		},
	}
}

// buildIDListRequest は afterID より大きい id を昇順に limit 件取得するリクエストを組み立てます。
func buildIDListRequest(afterID string, limit int) *search.Request {
	query := &types.Query{MatchAll: &types.MatchAllQuery{}}
	if afterID != "" {
		query = &types.Query{
			Range: map[string]types.RangeQuery{
				"id": &types.TermRangeQuery{Gt: &afterID},
			},
		}
	}
	return &search.Request{
		Query:   query,
		Size:    &limit,
		Sort:    []types.SortCombinations{fieldSortAsc("id")},
		Source_: false,
	}
}
