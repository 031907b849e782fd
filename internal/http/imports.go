package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/duobook/studio/internal/audit"
)

// ImportsController serves the provenance log.
type ImportsController struct {
	auditor *audit.Service
}

func NewImportsController(auditor *audit.Service) *ImportsController {
	return &ImportsController{auditor: auditor}
}

// History lists import records, newest first, optionally filtered by
// ?source=.
func (i *ImportsController) History(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondBadRequest(c, "invalid offset")
			return
		}
		offset = parsed
	}

	records, total, err := i.auditor.History(c.Query("source"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "import history")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    records,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(records)) < total,
	})
}
