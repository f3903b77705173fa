package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

type jobSearchResponse struct {
	Success     bool            `json:"success"`
	Count       int             `json:"count"`
	Total       int64           `json:"total"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Jobs        []port.JobHit   `json:"jobs"`
	SearchMode  port.SearchMode `json:"searchMode"`
}

type applicantSearchResponse struct {
	Success     bool                `json:"success"`
	Count       int                 `json:"count"`
	Total       int64               `json:"total"`
	TotalPages  int                 `json:"totalPages"`
	CurrentPage int                 `json:"currentPage"`
	Applicants  []port.ApplicantHit `json:"applicants"`
	SearchMode  port.SearchMode     `json:"searchMode"`
}

type recommendationResponse[T any] struct {
	Success         bool            `json:"success"`
	Count           int             `json:"count"`
	Recommendations []T             `json:"recommendations"`
	SearchMode      port.SearchMode `json:"searchMode,omitempty"`
}

// SearchHandler は検索・レコメンドのエンドポイントを処理します。
type SearchHandler struct {
	svc          port.RetrievalService
	defaultLimit int
}

// NewSearchHandler は新しい SearchHandler を生成します。
func NewSearchHandler(svc port.RetrievalService, defaultLimit int) *SearchHandler {
	if defaultLimit < 1 {
		defaultLimit = port.DefaultPageSize
	}
	return &SearchHandler{svc: svc, defaultLimit: defaultLimit}
}

// SearchJobs handles GET /search/jobs.
func (h *SearchHandler) SearchJobs(c echo.Context) error {
	var params jobSearchParams
	if err := bindQuery(c, &params); err != nil {
		return err
	}
	query, err := params.searchQuery(h.defaultLimit)
	if err != nil {
		return err
	}
	filters, err := params.filters()
	if err != nil {
		return err
	}

	res, err := h.svc.SearchJobs(c.Request().Context(), query, filters)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jobSearchResponse{
		Success:     true,
		Count:       len(res.Jobs),
		Total:       res.Total,
		TotalPages:  res.TotalPages,
		CurrentPage: res.CurrentPage,
		Jobs:        res.Jobs,
		SearchMode:  res.Mode,
	})
}

// SearchApplicants handles GET /search/applicants.
func (h *SearchHandler) SearchApplicants(c echo.Context) error {
	var params applicantSearchParams
	if err := bindQuery(c, &params); err != nil {
		return err
	}
	query, err := params.searchQuery(h.defaultLimit)
	if err != nil {
		return err
	}

	res, err := h.svc.SearchApplicants(c.Request().Context(), query, params.filters())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, applicantSearchResponse{
		Success:     true,
		Count:       len(res.Applicants),
		Total:       res.Total,
		TotalPages:  res.TotalPages,
		CurrentPage: res.CurrentPage,
		Applicants:  res.Applicants,
		SearchMode:  res.Mode,
	})
}

// JobRecommendations は呼び出し元のプロフィールに基づく求人を返します。プロフィールがなければ空です。
func (h *SearchHandler) JobRecommendations(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	res, err := h.svc.GetJobRecommendations(c.Request().Context(), caller.UserID)
	if errors.Is(err, port.ErrNotFound) {
		return c.JSON(http.StatusOK, recommendationResponse[port.JobHit]{
			Success:         true,
			Recommendations: []port.JobHit{},
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, recommendationResponse[port.JobHit]{
		Success:         true,
		Count:           len(res.Jobs),
		Recommendations: res.Jobs,
		SearchMode:      res.Mode,
	})
}

// CandidateRecommendations handles GET /search/recommendations/candidates/:jobId.
func (h *SearchHandler) CandidateRecommendations(c echo.Context) error {
	caller, ok := callerFrom(c)
	if !ok {
		return port.ErrUnauthenticated
	}

	res, err := h.svc.GetCandidateRecommendations(c.Request().Context(), caller, c.Param("jobId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, recommendationResponse[port.ApplicantHit]{
		Success:         true,
		Count:           len(res.Applicants),
		Recommendations: res.Applicants,
		SearchMode:      res.Mode,
	})
}
