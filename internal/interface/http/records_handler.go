package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/weather-records/internal/domain/records"
	apperrors "github.com/yanqian/weather-records/pkg/errors"
	"github.com/yanqian/weather-records/pkg/util"
)

// CreateRecord resolves weather for a location and saves it.
func (h *Handler) CreateRecord(c *gin.Context) {
	var req records.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid request body", err))
		return
	}
	record, err := h.recordsSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": record, "message": "Weather record created successfully"})
}

// ListRecords returns one filtered, sorted page of records.
func (h *Handler) ListRecords(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, err.Error(), nil))
		return
	}
	page, err := h.recordsSvc.List(c.Request.Context(), query)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": page})
}

// GetRecord returns a single record.
func (h *Handler) GetRecord(c *gin.Context) {
	record, err := h.recordsSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record})
}

// UpdateRecord applies a partial update.
func (h *Handler) UpdateRecord(c *gin.Context) {
	var req records.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid request body", err))
		return
	}
	record, err := h.recordsSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record, "message": "Weather record updated successfully"})
}

// DeleteRecord removes a record.
func (h *Handler) DeleteRecord(c *gin.Context) {
	id, err := h.recordsSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"id": id}, "message": "Weather record deleted successfully"})
}

// ExportJSON downloads every record as a JSON document.
func (h *Handler) ExportJSON(c *gin.Context) {
	export, err := h.recordsSvc.ExportJSON(c.Request.Context())
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment("json"))
	c.JSON(http.StatusOK, export)
}

// ExportCSV downloads every record as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	payload, err := h.recordsSvc.ExportCSV(c.Request.Context())
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment("csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

func attachment(ext string) string {
	return `attachment; filename="weather-records-` + util.NowUTC().Format(util.DateLayout) + `.` + ext + `"`
}

func parseListQuery(c *gin.Context) (records.ListQuery, error) {
	q := records.ListQuery{
		Location:  c.Query("location"),
		SortBy:    records.SortField(c.Query("sortBy")),
		SortOrder: records.SortOrder(strings.ToLower(c.Query("sortOrder"))),
	}
	if v := strings.TrimSpace(c.Query("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return records.ListQuery{}, errors.New("page must be a number")
		}
		q.Page = page
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return records.ListQuery{}, errors.New("limit must be a number")
		}
		q.Limit = limit
	}
	if v := strings.TrimSpace(c.Query("startDate")); v != "" {
		start, err := util.ParseDate(v)
		if err != nil {
			return records.ListQuery{}, errors.New("startDate must be formatted as YYYY-MM-DD")
		}
		q.StartDate = &start
	}
	if v := strings.TrimSpace(c.Query("endDate")); v != "" {
		end, err := util.ParseDate(v)
		if err != nil {
			return records.ListQuery{}, errors.New("endDate must be formatted as YYYY-MM-DD")
		}
		q.EndDate = &end
	}
	return q, nil
}
