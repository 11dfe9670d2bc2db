package services

import (
	"strings"

	"labquote/utils"

	"gorm.io/gorm"
)

func offset(page, size int) int {
	return utils.Pagination{Page: page, PageSize: size}.Offset()
}

func limit(size int) int {
	return utils.Pagination{Page: 1, PageSize: size}.Normalize().PageSize
}

// likePattern builds a case-insensitive LIKE argument.
func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// findPage counts the filtered rows and loads one page of them into dest.
func findPage(q *gorm.DB, order string, page, size int, dest interface{}, preloads ...string) (int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	find := q.Order(order).Offset(offset(page, size)).Limit(limit(size))
	for _, p := range preloads {
		find = find.Preload(p)
	}
	if err := find.Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
