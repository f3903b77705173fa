package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

type jobRequest struct {
	Title            string        `json:"title" validate:"required,max=200"`
	Company          string        `json:"company" validate:"max=200"`
	Description      string        `json:"description"`
	Requirements     []string      `json:"requirements"`
	Responsibilities []string      `json:"responsibilities"`
	Location         port.Location `json:"location"`
	Salary           port.Salary   `json:"salary"`
	JobType          string        `json:"jobType"`
	ExperienceLevel  string        `json:"experienceLevel"`
	Categories       []string      `json:"categories"`
	Tags             []string      `json:"tags"`
}

func (r jobRequest) document(id string) (port.JobDocument, error) {
	if r.Salary.Min != nil && r.Salary.Max != nil && *r.Salary.Min > *r.Salary.Max {
		return port.JobDocument{}, fmt.Errorf("%w: salary min must not exceed max", port.ErrInvalidInput)
	}
	location := r.Location
	if strings.EqualFold(location.Type, "remote") {
		location.Remote = true
	}
	return port.JobDocument{
		ID:               id,
		Title:            strings.TrimSpace(r.Title),
		Company:          r.Company,
		Description:      r.Description,
		Requirements:     r.Requirements,
		Responsibilities: r.Responsibilities,
		Location:         location,
		Salary:           r.Salary,
		JobType:          r.JobType,
		ExperienceLevel:  r.ExperienceLevel,
		Categories:       r.Categories,
		Tags:             r.Tags,
	}, nil
}

type applicantRequest struct {
	Headline            string                `json:"headline" validate:"max=200"`
	Summary             string                `json:"summary"`
	Skills              []port.Skill          `json:"skills" validate:"dive"`
	WorkExperience      []port.WorkExperience `json:"workExperience"`
	Education           []port.Education      `json:"education"`
	PreferredJobTypes   []string              `json:"preferredJobTypes"`
	PreferredLocations  []string              `json:"preferredLocations"`
	PreferredIndustries []string              `json:"preferredIndustries"`
	IsRemoteOnly        bool                  `json:"isRemoteOnly"`
}

type companyRequest struct {
	Name        string               `json:"name" validate:"required,max=200"`
	Description string               `json:"description"`
	Industry    []string             `json:"industry"`
	Location    port.CompanyLocation `json:"location"`
	Website     string               `json:"website" validate:"omitempty,url"`
	Size        string               `json:"size"`
	Founded     int                  `json:"founded" validate:"omitempty,gte=1800"`
	Specialties []string             `json:"specialties"`
}

// CatalogHandler は正規レコードの書き込みエンドポイントを処理します。
type CatalogHandler struct {
	svc port.CatalogService
}

func NewCatalogHandler(svc port.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// CreateJob handles POST /jobs. The caller becomes the job's owner.
func (h *CatalogHandler) CreateJob(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	var req jobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	job, err := req.document("")
	if err != nil {
		return err
	}
	job.CreatedBy = caller.UserID

	saved, err := h.svc.SaveJob(c.Request().Context(), job)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "job": saved})
}

func (h *CatalogHandler) UpdateJob(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	var req jobRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	job, err := req.document(c.Param("id"))
	if err != nil {
		return err
	}

	saved, err := h.svc.UpdateJobAs(c.Request().Context(), caller, job)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "job": saved})
}

func (h *CatalogHandler) DeleteJob(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	if err := h.svc.DeleteJobAs(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// PutOwnApplicant は呼び出し元自身の応募者プロフィールを作成または更新します。
func (h *CatalogHandler) PutOwnApplicant(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	var req applicantRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	saved, err := h.svc.SaveApplicant(c.Request().Context(), port.ApplicantDocument{
		UserID:              caller.UserID,
		Headline:            req.Headline,
		Summary:             req.Summary,
		Skills:              req.Skills,
		WorkExperience:      req.WorkExperience,
		Education:           req.Education,
		PreferredJobTypes:   req.PreferredJobTypes,
		PreferredLocations:  req.PreferredLocations,
		PreferredIndustries: req.PreferredIndustries,
		IsRemoteOnly:        req.IsRemoteOnly,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "applicant": saved})
}

func (h *CatalogHandler) DeleteOwnApplicant(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	if err := h.svc.DeleteApplicantByUserID(c.Request().Context(), caller.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *CatalogHandler) PutCompany(c echo.Context) error {
	var req companyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	saved, err := h.svc.SaveCompany(c.Request().Context(), port.CompanyDocument{
		ID:          c.Param("id"),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Industry:    req.Industry,
		Location:    req.Location,
		Website:     req.Website,
		Size:        req.Size,
		Founded:     req.Founded,
		Specialties: req.Specialties,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "company": saved})
}

func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return fmt.Errorf("%w: malformed request body", port.ErrInvalidInput)
	}
	return c.Validate(dst)
}
