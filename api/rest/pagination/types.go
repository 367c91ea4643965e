package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Params is a limit/offset window over a newest-first listing.
type Params struct {
	Limit  int
	Offset int
}

// Meta is returned next to a page of results.
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// FromQuery reads ?limit= and ?offset=, ignoring values that do not parse.
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil {
		offset = 0
	}

	return Clamp(limit, offset, defaultLimit, maxLimit)
}

// Clamp applies defaultLimit to a missing limit, caps it at maxLimit and floors offset at zero.
func Clamp(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}
