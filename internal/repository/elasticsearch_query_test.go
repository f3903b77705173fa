package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// toJSONMap はリクエストを送信時と同じ JSON 表現に変換します。
func toJSONMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func obj(t *testing.T, v interface{}, key string) map[string]interface{} {
	t.Helper()

	m, ok := v.(map[string]interface{})
	require.True(t, ok, "expected object, got %T", v)
	child, ok := m[key].(map[string]interface{})
	require.True(t, ok, "expected object at %q, got %v", key, m[key])
	return child
}

func list(t *testing.T, v interface{}, key string) []interface{} {
	t.Helper()

	m, ok := v.(map[string]interface{})
	require.True(t, ok, "expected object, got %T", v)
	items, ok := m[key].([]interface{})
	require.True(t, ok, "expected array at %q, got %v", key, m[key])
	return items
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestBuildJobSearchRequest(t *testing.T) {
	t.Parallel()

	t.Run("正常系: フリーテキストは重み付きのfuzzy multi_matchになること", func(t *testing.T) {
		t.Parallel()

		req := buildJobSearchRequest(port.SearchQuery{Text: "golang", Page: 3, PageSize: 5}, port.JobFilters{})
		body := toJSONMap(t, req)

		assert.EqualValues(t, 10, body["from"])
		assert.EqualValues(t, 5, body["size"])
		assert.Equal(t, true, body["track_total_hits"])

		must := list(t, obj(t, body["query"], "bool"), "must")
		require.Len(t, must, 1)
		mm := obj(t, must[0], "multi_match")
		assert.Equal(t, "golang", mm["query"])
		assert.Equal(t, "AUTO", mm["fuzziness"])
		assert.ElementsMatch(t,
			[]interface{}{"title^3", "company^2", "description", "requirements", "responsibilities", "categories", "tags"},
			mm["fields"],
		)

		sort := list(t, body, "sort")
		require.Len(t, sort, 2)
		assert.Contains(t, sort[0], "_score")
		assert.Contains(t, sort[1], "createdAt")
	})

	t.Run("正常系: テキストが空の場合はmatch_allになること", func(t *testing.T) {
		t.Parallel()

		req := buildJobSearchRequest(port.SearchQuery{Text: "   ", Page: 1, PageSize: 10}, port.JobFilters{})
		body := toJSONMap(t, req)

		must := list(t, obj(t, body["query"], "bool"), "must")
		require.Len(t, must, 1)
		assert.Contains(t, must[0], "match_all")
		assert.NotContains(t, must[0], "multi_match")
	})

	t.Run("正常系: 全てのフィルタがfilter句に積まれること", func(t *testing.T) {
		t.Parallel()

		filters := port.JobFilters{
			JobType:         "full-time",
			ExperienceLevel: "senior",
			Remote:          boolPtr(false),
			LocationType:    "hybrid",
			Location:        "Berlin",
			MinSalary:       floatPtr(50000),
			MaxSalary:       floatPtr(90000),
			Categories:      []string{"engineering", "devops"},
		}
		body := toJSONMap(t, buildJobSearchRequest(port.SearchQuery{Page: 1, PageSize: 10}, filters))

		filter := list(t, obj(t, body["query"], "bool"), "filter")
		require.Len(t, filter, 8)

		assert.Equal(t, "full-time", obj(t, obj(t, filter[0], "term"), "jobType")["value"])
		assert.Equal(t, "senior", obj(t, obj(t, filter[1], "term"), "experienceLevel")["value"])
		assert.Equal(t, false, obj(t, obj(t, filter[2], "term"), "location.remote")["value"])
		assert.Equal(t, "hybrid", obj(t, obj(t, filter[3], "term"), "location.type")["value"])

		locationBool := obj(t, filter[4], "bool")
		assert.Len(t, list(t, locationBool, "should"), 3)
		assert.EqualValues(t, 1, locationBool["minimum_should_match"])

		assert.EqualValues(t, 50000, obj(t, obj(t, filter[5], "range"), "salary.min")["gte"])
		assert.EqualValues(t, 90000, obj(t, obj(t, filter[6], "range"), "salary.max")["lte"])
		assert.Equal(t, []interface{}{"engineering", "devops"}, obj(t, filter[7], "terms")["categories"])
	})

	t.Run("正常系: Remoteがnilの場合は制約しないこと", func(t *testing.T) {
		t.Parallel()

		body := toJSONMap(t, buildJobSearchRequest(port.SearchQuery{Page: 1, PageSize: 10}, port.JobFilters{}))
		assert.NotContains(t, obj(t, body["query"], "bool"), "filter")
	})
}

func TestBuildApplicantSearchRequest(t *testing.T) {
	t.Parallel()

	t.Run("正常系: nestedフィールドをshouldで横断検索すること", func(t *testing.T) {
		t.Parallel()

		body := toJSONMap(t, buildApplicantSearchRequest(port.SearchQuery{Text: "kubernetes", Page: 1, PageSize: 10}, port.ApplicantFilters{}))

		must := list(t, obj(t, body["query"], "bool"), "must")
		require.Len(t, must, 1)
		inner := obj(t, must[0], "bool")
		assert.EqualValues(t, 1, inner["minimum_should_match"])

		should := list(t, inner, "should")
		require.Len(t, should, 4)
		assert.ElementsMatch(t, []interface{}{"headline^3", "summary^2"}, obj(t, should[0], "multi_match")["fields"])

		paths := []string{}
		for _, clause := range should[1:] {
			nested := obj(t, clause, "nested")
			paths = append(paths, nested["path"].(string))
			assert.Equal(t, "AUTO", obj(t, obj(t, nested, "query"), "multi_match")["fuzziness"])
		}
		assert.Equal(t, []string{"skills", "workExperience", "education"}, paths)

		sort := list(t, body, "sort")
		require.Len(t, sort, 2)
		assert.Contains(t, sort[1], "updatedAt")
	})

	t.Run("正常系: スキル・希望雇用形態・リモートで絞り込むこと", func(t *testing.T) {
		t.Parallel()

		filters := port.ApplicantFilters{
			Skills:   []string{"Go", "SQL"},
			JobTypes: []string{"contract"},
			Remote:   boolPtr(true),
		}
		body := toJSONMap(t, buildApplicantSearchRequest(port.SearchQuery{Page: 1, PageSize: 10}, filters))

		filter := list(t, obj(t, body["query"], "bool"), "filter")
		require.Len(t, filter, 3)

		nested := obj(t, filter[0], "nested")
		assert.Equal(t, "skills", nested["path"])
		assert.Equal(t, []interface{}{"Go", "SQL"}, obj(t, obj(t, nested, "query"), "terms")["skills.name.keyword"])
		assert.Equal(t, []interface{}{"contract"}, obj(t, filter[1], "terms")["preferredJobTypes"])
		assert.Equal(t, true, obj(t, obj(t, filter[2], "term"), "isRemoteOnly")["value"])
	})
}

func TestBuildJobRecommendationRequest(t *testing.T) {
	t.Parallel()

	body := toJSONMap(t, buildJobRecommendationRequest(port.JobRecommendationQuery{
		Skills:     []string{"Go", "PostgreSQL"},
		Titles:     []string{"Backend Engineer"},
		RemoteOnly: true,
		JobTypes:   []string{"full-time"},
		Limit:      10,
	}))

	assert.EqualValues(t, 10, body["size"])
	assert.NotContains(t, body, "from")

	boolQuery := obj(t, body["query"], "bool")
	assert.EqualValues(t, 1, boolQuery["minimum_should_match"])

	should := list(t, boolQuery, "should")
	require.Len(t, should, 2)

	skills := obj(t, should[0], "multi_match")
	assert.Equal(t, "Go PostgreSQL", skills["query"])
	assert.Equal(t, "cross_fields", skills["type"])
	assert.ElementsMatch(t, []interface{}{"requirements^3", "description", "responsibilities"}, skills["fields"])

	titles := obj(t, should[1], "multi_match")
	assert.Equal(t, "best_fields", titles["type"])
	assert.Equal(t, "AUTO", titles["fuzziness"])
	assert.Equal(t, []interface{}{"title^3"}, titles["fields"])

	filter := list(t, boolQuery, "filter")
	require.Len(t, filter, 2)
	assert.Equal(t, true, obj(t, obj(t, filter[0], "term"), "location.remote")["value"])
	assert.Equal(t, []interface{}{"full-time"}, obj(t, filter[1], "terms")["jobType"])
}

func TestBuildCandidateRecommendationRequest(t *testing.T) {
	t.Parallel()

	t.Run("正常系: 非リモート求人はリモート限定の応募者を除外すること", func(t *testing.T) {
		t.Parallel()

		body := toJSONMap(t, buildCandidateRecommendationRequest(port.CandidateRecommendationQuery{
			Requirements:      []string{"Go", "Kafka"},
			Responsibilities:  []string{"Design APIs"},
			Title:             "Backend Engineer",
			ExcludeRemoteOnly: true,
		}))

		assert.EqualValues(t, port.RecommendationLimit, body["size"])

		boolQuery := obj(t, body["query"], "bool")
		should := list(t, boolQuery, "should")
		require.Len(t, should, 2)

		skills := obj(t, should[0], "nested")
		assert.Equal(t, "skills", skills["path"])
		assert.Equal(t, []interface{}{"skills.name^3"}, obj(t, obj(t, skills, "query"), "multi_match")["fields"])

		work := obj(t, should[1], "nested")
		assert.Equal(t, "workExperience", work["path"])
		mm := obj(t, obj(t, work, "query"), "multi_match")
		assert.Equal(t, "Backend Engineer Design APIs", mm["query"])

		filter := list(t, boolQuery, "filter")
		require.Len(t, filter, 1)
		assert.Equal(t, false, obj(t, obj(t, filter[0], "term"), "isRemoteOnly")["value"])
	})

	t.Run("正常系: リモート求人は応募者を絞り込まないこと", func(t *testing.T) {
		t.Parallel()

		body := toJSONMap(t, buildCandidateRecommendationRequest(port.CandidateRecommendationQuery{
			Requirements: []string{"Go"},
		}))
		assert.NotContains(t, obj(t, body["query"], "bool"), "filter")
	})
}
