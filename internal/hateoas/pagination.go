package hateoas

// PageRelation is a pagination relation and the page it points at.
type PageRelation struct {
	Rel  string
	Page int
}

// PageRelations returns the navigation relations that apply to page out of
// totalPages, in display order: self, next, prev, first, last.
//
//	self   always
//	next   page < totalPages-1
//	prev   page > 0
//	first  page > 0
//	last   totalPages > 0 && page < totalPages-1
func PageRelations(page, totalPages int) []PageRelation {
	rels := []PageRelation{{Rel: RelSelf, Page: page}}
	hasNext := page < totalPages-1
	if hasNext {
		rels = append(rels, PageRelation{Rel: RelNext, Page: page + 1})
	}
	if page > 0 {
		rels = append(rels,
			PageRelation{Rel: RelPrev, Page: page - 1},
			PageRelation{Rel: RelFirst, Page: 0},
		)
	}
	if totalPages > 0 && hasNext {
		rels = append(rels, PageRelation{Rel: RelLast, Page: totalPages - 1})
	}
	return rels
}
