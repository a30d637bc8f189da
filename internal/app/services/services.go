package services

import (
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/helpers"
)

// PageRequest is a 1-based page of a listing
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 1 {
		p.Page = helpers.DefaultPage
	}
	if p.Size <= 0 || p.Size > helpers.MaxPageSize {
		p.Size = helpers.DefaultPageSize
	}
	return p
}

// window returns the SQL limit and offset of the page
func (p PageRequest) window() (limit, offset int) {
	p = p.normalized()
	off, lim := helpers.CalculateOffsetLimit(p.Page, p.Size)
	return lim, int(off)
}

func (p PageRequest) info(total int64) dto.PaginationInfo {
	p = p.normalized()
	return helpers.NewPaginationInfo(total, p.Page, p.Size)
}
