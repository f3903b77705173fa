package service

import (
	"strings"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// jobRecommendationQuery は応募者プロフィールから暗黙の求人クエリを導出します。
// スキル名と過去の職種がシグナルになり、リモート限定と希望雇用形態がフィルタになります。
func jobRecommendationQuery(profile port.ApplicantDocument, limit int) port.JobRecommendationQuery {
	return port.JobRecommendationQuery{
		Skills:     profile.SkillNames(),
		Titles:     profile.PastPositions(),
		RemoteOnly: profile.IsRemoteOnly,
		JobTypes:   nonBlank(profile.PreferredJobTypes),
		Limit:      limit,
	}
}

// candidateRecommendationQuery は求人から暗黙の候補者クエリを導出します。
// リモートでない求人では、リモート限定の応募者を除外します。
func candidateRecommendationQuery(job port.JobDocument, limit int) port.CandidateRecommendationQuery {
	return port.CandidateRecommendationQuery{
		Requirements:      nonBlank(job.Requirements),
		Responsibilities:  nonBlank(job.Responsibilities),
		Title:             strings.TrimSpace(job.Title),
		ExcludeRemoteOnly: !job.Location.Remote,
		Limit:             limit,
	}
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
