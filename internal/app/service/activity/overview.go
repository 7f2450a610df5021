package activity

import (
	"time"

	"github.com/fatflowers/pulseboard/pkg/tool"
)

const (
	ShortWindow = 7 * 24 * time.Hour
	LongWindow  = 30 * 24 * time.Hour
)

// OverviewCounts are the six independent windowed counts behind Overview.
type OverviewCounts struct {
	ActiveUsers7d  int
	ActiveUsers30d int
	TotalEvents7d  int
	TotalEvents30d int
	Errors7d       int
	Errors30d      int
}

type Overview struct {
	ActiveUsers7d       int    `json:"activeUsers7d"`
	ActiveUsers30d      int    `json:"activeUsers30d"`
	TotalEvents7d       int    `json:"totalEvents7d"`
	TotalEvents30d      int    `json:"totalEvents30d"`
	Errors7d            int    `json:"errors7d"`
	Errors30d           int    `json:"errors30d"`
	ErrorRate7d         string `json:"errorRate7d"`
	ErrorRate30d        string `json:"errorRate30d"`
	AvgEventsPerUser7d  string `json:"avgEventsPerUser7d"`
	AvgEventsPerUser30d string `json:"avgEventsPerUser30d"`
}

// BuildOverview derives the ratio fields from the raw counts.
func BuildOverview(c OverviewCounts) Overview {
	return Overview{
		ActiveUsers7d:       c.ActiveUsers7d,
		ActiveUsers30d:      c.ActiveUsers30d,
		TotalEvents7d:       c.TotalEvents7d,
		TotalEvents30d:      c.TotalEvents30d,
		Errors7d:            c.Errors7d,
		Errors30d:           c.Errors30d,
		ErrorRate7d:         errorRate(c.Errors7d, c.TotalEvents7d),
		ErrorRate30d:        errorRate(c.Errors30d, c.TotalEvents30d),
		AvgEventsPerUser7d:  avgPerUser(c.TotalEvents7d, c.ActiveUsers7d),
		AvgEventsPerUser30d: avgPerUser(c.TotalEvents30d, c.ActiveUsers30d),
	}
}

func errorRate(errors, total int) string {
	if total == 0 {
		return "0.00"
	}
	return tool.FormatFixed(float64(errors)/float64(total)*100, 2)
}

func avgPerUser(total, users int) string {
	if users == 0 {
		return "0"
	}
	return tool.FormatFixed(float64(total)/float64(users), 1)
}
