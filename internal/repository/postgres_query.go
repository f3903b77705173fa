package repository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// TextSearchMode はドキュメントストアでの全文検索の方式です。
type TextSearchMode string

const (
	// TextSearchFullText は tsvector と websearch_to_tsquery を使います。
	TextSearchFullText TextSearchMode = "fulltext"
	// TextSearchSubstring は ILIKE による部分一致を使います。
	TextSearchSubstring TextSearchMode = "substring"
)

// ParseTextSearchMode は設定値を TextSearchMode に変換します。空の場合は fulltext です。
func ParseTextSearchMode(s string) (TextSearchMode, error) {
	switch mode := TextSearchMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", TextSearchFullText:
		return TextSearchFullText, nil
	case TextSearchSubstring:
		return TextSearchSubstring, nil
	default:
		return "", fmt.Errorf("unsupported text search mode: %s", s)
	}
}

// 部分一致検索の対象列。全文検索と同じフィールド集合です。
var (
	jobSubstringColumns = []string{
		"title",
		"company",
		"description",
		"array_to_string(requirements, ' ')",
		"array_to_string(responsibilities, ' ')",
		"array_to_string(categories, ' ')",
		"array_to_string(tags, ' ')",
	}
	applicantSubstringColumns = []string{
		"headline",
		"summary",
		"skills::text",
		"work_experience::text",
		"education::text",
	}
)

// whereBuilder はプレースホルダ付きの WHERE 句を組み立てます。
type whereBuilder struct {
	clauses []string
	args    []any
}

// arg は値を追加し、そのプレースホルダを返します。
func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// addText は自由記述の各語を OR で結合した条件を追加します。
// 検索エンジンの multi_match と同じく、いずれかの語に一致すればヒットします。
func (b *whereBuilder) addText(mode TextSearchMode, text string, substringColumns []string) {
	terms := textTerms(text)
	if len(terms) == 0 {
		return
	}

	if mode == TextSearchSubstring {
		ors := make([]string, 0, len(terms)*len(substringColumns))
		for _, term := range terms {
			p := b.arg(likePattern(term))
			for _, col := range substringColumns {
				ors = append(ors, col+" ILIKE "+p)
			}
		}
		b.add("(" + strings.Join(ors, " OR ") + ")")
		return
	}

	b.add("search_vector @@ websearch_to_tsquery('english', " + b.arg(strings.Join(terms, " or ")) + ")")
}

// textTerms は自由記述を重複のない語に分割します。
// websearch_to_tsquery がフレーズや否定として解釈する記号は取り除きます。
func textTerms(text string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ReplaceAll(text, `"`, " ")) {
		f = strings.TrimLeft(f, "-")
		if f == "" || strings.EqualFold(f, "or") || slices.ContainsFunc(terms, func(t string) bool { return strings.EqualFold(t, f) }) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// pagedSQL は件数取得用と1ページ分取得用の SQL を返します。
type pagedSQL struct {
	countSQL string
	pageSQL  string
	args     []any
	pageArgs []any
}

func buildJobSearchSQL(mode TextSearchMode, query port.SearchQuery, filters port.JobFilters) pagedSQL {
	b := &whereBuilder{}
	b.addText(mode, query.Text, jobSubstringColumns)

	if filters.JobType != "" {
		b.add("job_type = " + b.arg(filters.JobType))
	}
	if filters.ExperienceLevel != "" {
		b.add("experience_level = " + b.arg(filters.ExperienceLevel))
	}
	if filters.Remote != nil {
		b.add("location_remote = " + b.arg(*filters.Remote))
	}
	if filters.LocationType != "" {
		b.add("location_type = " + b.arg(filters.LocationType))
	}
	if loc := strings.TrimSpace(filters.Location); loc != "" {
		p := b.arg(likePattern(loc))
		b.add(fmt.Sprintf("(location_city ILIKE %[1]s OR location_state ILIKE %[1]s OR location_country ILIKE %[1]s)", p))
	}
	if filters.MinSalary != nil {
		b.add("salary_min >= " + b.arg(*filters.MinSalary))
	}
	if filters.MaxSalary != nil {
		b.add("salary_max <= " + b.arg(*filters.MaxSalary))
	}
	if len(filters.Categories) > 0 {
		b.add("categories && " + b.arg(filters.Categories))
	}

	return paged(b, "jobs", jobColumns, "created_at DESC, id", query)
}

func buildApplicantSearchSQL(mode TextSearchMode, query port.SearchQuery, filters port.ApplicantFilters) pagedSQL {
	b := &whereBuilder{}
	b.addText(mode, query.Text, applicantSubstringColumns)

	if len(filters.Skills) > 0 {
		b.add("jsonb_path_query_array(skills, '$[*].name') ?| " + b.arg(filters.Skills))
	}
	if len(filters.JobTypes) > 0 {
		b.add("preferred_job_types && " + b.arg(filters.JobTypes))
	}
	if filters.Remote != nil {
		b.add("is_remote_only = " + b.arg(*filters.Remote))
	}

	return paged(b, "applicants", applicantColumns, "updated_at DESC, id", query)
}

func paged(b *whereBuilder, table, columns, orderBy string, query port.SearchQuery) pagedSQL {
	where := b.where()
	n := len(b.args)

	pageArgs := make([]any, 0, n+2)
	pageArgs = append(pageArgs, b.args...)
	pageArgs = append(pageArgs, query.PageSize, query.Offset())

	return pagedSQL{
		countSQL: "SELECT COUNT(*) FROM " + table + where,
		pageSQL: fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
			columns, table, where, orderBy, n+1, n+2),
		args:     b.args,
		pageArgs: pageArgs,
	}
}

// buildJobRecommendationSQL は応募者のスキルが求人要件に含まれるか、過去の職種が求人タイトルに一致する求人を選びます。
func buildJobRecommendationSQL(q port.JobRecommendationQuery) (string, []any) {
	b := &whereBuilder{}

	var ors []string
	if len(q.Skills) > 0 {
		ors = append(ors, "EXISTS (SELECT 1 FROM unnest(requirements) AS r WHERE lower(r) = ANY("+b.arg(lowerAll(q.Skills))+"))")
	}
	if len(q.Titles) > 0 {
		patterns := make([]string, 0, len(q.Titles))
		for _, t := range q.Titles {
			patterns = append(patterns, likePattern(t))
		}
		ors = append(ors, "title ILIKE ANY("+b.arg(patterns)+")")
	}
	b.add("(" + strings.Join(ors, " OR ") + ")")

	if q.RemoteOnly {
		b.add("location_remote = TRUE")
	}
	if len(q.JobTypes) > 0 {
		b.add("job_type = ANY(" + b.arg(q.JobTypes) + ")")
	}

	limit := b.arg(recommendationLimit(q.Limit))
	return "SELECT " + jobColumns + " FROM jobs" + b.where() + " ORDER BY created_at DESC, id LIMIT " + limit, b.args
}

// buildCandidateRecommendationSQL は求人要件に含まれるスキルを持つか、求人タイトルに一致する職歴を持つ応募者を選びます。
func buildCandidateRecommendationSQL(q port.CandidateRecommendationQuery) (string, []any) {
	b := &whereBuilder{}

	var ors []string
	if len(q.Requirements) > 0 {
		ors = append(ors, "EXISTS (SELECT 1 FROM jsonb_array_elements(skills) AS s WHERE lower(s->>'name') = ANY("+b.arg(lowerAll(q.Requirements))+"))")
	}
	if q.Title != "" {
		ors = append(ors, "EXISTS (SELECT 1 FROM jsonb_array_elements(work_experience) AS w WHERE w->>'position' ILIKE "+b.arg(likePattern(q.Title))+")")
	}
	if len(q.Responsibilities) > 0 {
		patterns := make([]string, 0, len(q.Responsibilities))
		for _, r := range q.Responsibilities {
			patterns = append(patterns, likePattern(r))
		}
		ors = append(ors, "EXISTS (SELECT 1 FROM jsonb_array_elements(work_experience) AS w WHERE w->>'description' ILIKE ANY("+b.arg(patterns)+"))")
	}
	b.add("(" + strings.Join(ors, " OR ") + ")")

	if q.ExcludeRemoteOnly {
		b.add("is_remote_only = FALSE")
	}

	limit := b.arg(recommendationLimit(q.Limit))
	return "SELECT " + applicantColumns + " FROM applicants" + b.where() + " ORDER BY updated_at DESC, id LIMIT " + limit, b.args
}

func recommendationLimit(limit int) int {
	if limit < 1 {
		return port.RecommendationLimit
	}
	return limit
}

// likePattern は ILIKE のワイルドカードをエスケープして %text% を返します。
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(text)) + "%"
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
