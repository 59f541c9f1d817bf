package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tgienger/tim/internal/models"
)

var (
	// dateLayouts are accepted for bill ranges
	dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", "2006-01-02T15:04"}
	// timeLayouts are accepted for amended timestamps
	timeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04"}
)

// parseID reads a record ID. Zero stands for the most recently completed record.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// parseTime reads a local timestamp in one of layouts
func parseTime(s string, layouts []string, loc *time.Location) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q (use %s)", ErrInvalidTime, s, strings.Join(layouts, " or "))
}

// tagString joins tags for storage, refusing empty tags unless allowed
func (a *app) tagString(tags []string) (string, error) {
	joined := strings.TrimSpace(models.JoinTags(tags))
	if joined == "" && !a.cfg.Tracking.AllowNoTags {
		return "", ErrNoTags
	}
	return joined, nil
}
