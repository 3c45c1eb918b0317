package api

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes err in the API's error format. Unexpected errors are
// logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	var serr *service.Error
	if !errors.As(err, &serr) {
		logging.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, middleware.ErrorResponse{
			Error:   "internal",
			Message: "internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch serr.Kind {
	case service.KindValidation, service.KindConflict:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
		if errors.Is(err, service.ErrMissingRelation) {
			status = http.StatusBadRequest
		}
	case service.KindForbidden:
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{
		Error:   string(serr.Kind),
		Message: serr.Message,
		Field:   serr.Field,
	})
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, service.ValidationError("", "malformed request body: %v", err))
		return false
	}
	return true
}

// pathID parses the :id route parameter; a malformed id names nothing, so it is 404.
func pathID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.NotFoundError(entity))
		return uuid.Nil, false
	}
	return id, true
}

// pageFrom reads the page and limit query parameters.
func pageFrom(c *gin.Context) (service.Page, bool) {
	number, ok := intQuery(c, "page", 1)
	if !ok {
		return service.Page{}, false
	}
	limit, ok := intQuery(c, "limit", service.DefaultPageSize)
	if !ok {
		return service.Page{}, false
	}
	page := service.NewPage(number, limit)
	if page.Number > math.MaxInt32/page.Limit {
		respondError(c, service.ValidationError("page", "is out of range"))
		return service.Page{}, false
	}
	return page, true
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, service.ValidationError(name, "must be an integer"))
		return 0, false
	}
	return v, true
}

// boolQuery returns nil when the parameter is absent.
func boolQuery(c *gin.Context, name string) (*bool, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(c, service.ValidationError(name, "must be 0, 1, true or false"))
		return nil, false
	}
	return &v, true
}

// paginate wraps items into a page with absolute next and previous links.
func paginate[T, R any](c *gin.Context, paged *service.Paged[T], convert func(T) R) types.PageResponse[R] {
	results := make([]R, len(paged.Items))
	for i, item := range paged.Items {
		results[i] = convert(item)
	}
	resp := types.PageResponse[R]{Count: paged.Count, Results: results}
	if paged.Page.HasNext(paged.Count) {
		resp.Next = pageLink(c, paged.Page.Number+1)
	}
	if paged.Page.Number > 1 {
		resp.Previous = pageLink(c, paged.Page.Number-1)
	}
	return resp
}

func pageLink(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := c.Request.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	link := u.String()
	return &link
}
