package rest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// requestValidator は echo.Validator を go-playground/validator で実装します。
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if f := verrs[0].Field(); f == "Page" || f == "Limit" {
				return port.ErrInvalidPagination
			}
			return fmt.Errorf("%w: %s failed on %q", port.ErrInvalidInput, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", port.ErrInvalidInput, err)
	}
	return nil
}

// PageParams はページングのクエリパラメータです。整数として解釈できない値は拒否します。
// echo の binder は非公開型の埋め込みフィールドを無視するため、公開型にしています。
type PageParams struct {
	Query string `query:"query"`
	Page  string `query:"page" validate:"omitempty,number"`
	Limit string `query:"limit" validate:"omitempty,number"`
}

func (p PageParams) searchQuery(defaultLimit int) (port.SearchQuery, error) {
	page, err := atoiOr(p.Page, port.DefaultPage)
	if err != nil {
		return port.SearchQuery{}, port.ErrInvalidPagination
	}
	limit, err := atoiOr(p.Limit, defaultLimit)
	if err != nil {
		return port.SearchQuery{}, port.ErrInvalidPagination
	}

	q := port.SearchQuery{Text: strings.TrimSpace(p.Query), Page: page, PageSize: limit}
	if err := q.Validate(); err != nil {
		return port.SearchQuery{}, err
	}
	return q, nil
}

type jobSearchParams struct {
	PageParams
	JobType      string   `query:"jobType"`
	Experience   string   `query:"experience"`
	Remote       string   `query:"remote" validate:"omitempty,oneof=true false"`
	LocationType string   `query:"locationType"`
	Location     string   `query:"location"`
	MinSalary    string   `query:"minSalary" validate:"omitempty,numeric"`
	MaxSalary    string   `query:"maxSalary" validate:"omitempty,numeric"`
	Categories   []string `query:"categories"`
}

func (p jobSearchParams) filters() (port.JobFilters, error) {
	minSalary, err := parseOptionalFloat(p.MinSalary)
	if err != nil {
		return port.JobFilters{}, err
	}
	maxSalary, err := parseOptionalFloat(p.MaxSalary)
	if err != nil {
		return port.JobFilters{}, err
	}
	if minSalary != nil && maxSalary != nil && *minSalary > *maxSalary {
		return port.JobFilters{}, fmt.Errorf("%w: minSalary must not exceed maxSalary", port.ErrInvalidInput)
	}

	return port.JobFilters{
		JobType:         strings.TrimSpace(p.JobType),
		ExperienceLevel: strings.TrimSpace(p.Experience),
		Remote:          parseOptionalBool(p.Remote),
		LocationType:    strings.TrimSpace(p.LocationType),
		Location:        strings.TrimSpace(p.Location),
		MinSalary:       minSalary,
		MaxSalary:       maxSalary,
		Categories:      splitValues(p.Categories),
	}, nil
}

type applicantSearchParams struct {
	PageParams
	Skills   []string `query:"skills"`
	JobTypes []string `query:"jobTypes"`
	Remote   string   `query:"remote" validate:"omitempty,oneof=true false"`
}

func (p applicantSearchParams) filters() port.ApplicantFilters {
	return port.ApplicantFilters{
		Skills:   splitValues(p.Skills),
		JobTypes: splitValues(p.JobTypes),
		Remote:   parseOptionalBool(p.Remote),
	}
}

// bindQuery はクエリパラメータを dst に読み込み、検証します。
func bindQuery(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return fmt.Errorf("%w: malformed query parameters", port.ErrInvalidInput)
	}
	return c.Validate(dst)
}

func atoiOr(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", port.ErrInvalidInput, raw)
	}
	return &v, nil
}

func parseOptionalBool(raw string) *bool {
	switch raw {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

// splitValues は繰り返しパラメータとカンマ区切りの両方を受け付けます。
func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
