package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

type healthResponse struct {
	Status     string          `json:"status"`
	SearchMode port.SearchMode `json:"searchMode"`
}

func healthHandler(mode port.SearchMode) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", SearchMode: mode})
	}
}
