package cache

import (
	"fmt"
	"time"
)

const (
	IndexPageKeyPrefix = "index:page:%d"
	GroupKeyPrefix     = "group:%s"
)

const (
	// IndexPageTTL is the staleness window for the whole-page index cache.
	// Within it, repeated index requests are served from Redis even if the
	// underlying data changed.
	IndexPageTTL = 20 * time.Second
	// GroupTTL bounds cached group metadata. Groups are read-only from the
	// view layer, so a longer window is safe.
	GroupTTL = 10 * time.Minute
)

func IndexPageKey(page int) string {
	return fmt.Sprintf(IndexPageKeyPrefix, page)
}

func GroupKey(slug string) string {
	return fmt.Sprintf(GroupKeyPrefix, slug)
}
