package rewards

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
)

type dayKey struct {
	userID snowflake.ID
	day    string
}

// DayLog remembers (user, day) pairs already known to be used up.
// A used day never becomes available again, so entries cannot go stale.
// A nil DayLog remembers nothing.
type DayLog struct {
	cache *lru.Cache
}

func NewDayLog(size int) (*DayLog, error) {
	if size <= 0 {
		return nil, nil
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &DayLog{cache: cache}, nil
}

func (l *DayLog) Seen(userID snowflake.ID, day time.Time) bool {
	if l == nil {
		return false
	}
	return l.cache.Contains(dayKey{userID: userID, day: formatDay(day)})
}

func (l *DayLog) Mark(userID snowflake.ID, day time.Time) {
	if l == nil {
		return
	}
	l.cache.Add(dayKey{userID: userID, day: formatDay(day)}, struct{}{})
}
