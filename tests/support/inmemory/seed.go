package inmemory

import (
	"context"
	"fmt"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// SeedSampleData populates the catalog with a deterministic set of jobs,
// applicants and companies used across E2E tests and load testing harnesses.
func SeedSampleData(c *Catalog) error {
	ctx := context.Background()

	companies := []port.CompanyDocument{
		{ID: "company-1", Name: "Acme Search", Industry: []string{"software"}, Location: port.CompanyLocation{City: "Berlin", Country: "DE"}, Founded: 2012},
		{ID: "company-2", Name: "Globex Data", Industry: []string{"analytics"}, Location: port.CompanyLocation{City: "Austin", State: "TX", Country: "US"}, Founded: 1999},
	}
	for _, co := range companies {
		if _, err := c.UpsertCompany(ctx, co); err != nil {
			return fmt.Errorf("seed company %s: %w", co.ID, err)
		}
	}

	jobs := []port.JobDocument{
		{
			ID: "job-1", CreatedBy: "employer-1", Title: "Senior Go Developer", Company: "Acme Search",
			Description:  "Build search services in Go",
			Requirements: []string{"Go", "Elasticsearch"},
			Location:     port.Location{Remote: true, Type: "remote"},
			Salary:       port.Salary{Min: float64Ptr(90000), Max: float64Ptr(130000), Currency: "EUR", Period: "yearly"},
			JobType:      "full-time", ExperienceLevel: "senior", Categories: []string{"engineering"},
		},
		{
			ID: "job-2", CreatedBy: "employer-1", Title: "Frontend Engineer", Company: "Acme Search",
			Description:  "Own the job board UI",
			Requirements: []string{"TypeScript", "React"},
			Location:     port.Location{City: "Berlin", Country: "DE", Type: "hybrid"},
			JobType:      "full-time", ExperienceLevel: "mid", Categories: []string{"engineering"},
		},
		{
			ID: "job-3", CreatedBy: "employer-2", Title: "Data Analyst", Company: "Globex Data",
			Description:  "Reporting on hiring funnels",
			Requirements: []string{"SQL", "PostgreSQL"},
			Location:     port.Location{City: "Austin", State: "TX", Country: "US", Type: "onsite"},
			JobType:      "part-time", ExperienceLevel: "entry", Categories: []string{"data"},
		},
	}
	for _, j := range jobs {
		if _, err := c.UpsertJob(ctx, j); err != nil {
			return fmt.Errorf("seed job %s: %w", j.ID, err)
		}
	}

	applicants := []port.ApplicantDocument{
		{
			ID: "applicant-1", UserID: "user-1", Headline: "Backend engineer",
			Skills:            []port.Skill{{Name: "Go", Level: "expert"}, {Name: "Elasticsearch"}},
			WorkExperience:    []port.WorkExperience{{Position: "Go Developer", Company: "Initech"}},
			PreferredJobTypes: []string{"full-time"},
			IsRemoteOnly:      true,
		},
		{
			ID: "applicant-2", UserID: "user-2", Headline: "Analyst moving into data engineering",
			Skills:            []port.Skill{{Name: "SQL"}, {Name: "PostgreSQL"}},
			WorkExperience:    []port.WorkExperience{{Position: "Data Analyst"}},
			PreferredJobTypes: []string{"part-time", "full-time"},
		},
	}
	for _, a := range applicants {
		if _, err := c.UpsertApplicant(ctx, a); err != nil {
			return fmt.Errorf("seed applicant %s: %w", a.ID, err)
		}
	}
	return nil
}

func float64Ptr(v float64) *float64 { return &v }
