package activity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	models "github.com/fatflowers/pulseboard/internal/models"
)

var day1 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rec(id, profile, eventType string, ts time.Time, details map[string]any) models.ActivityRecord {
	var d datatypes.JSONMap
	if details != nil {
		d = datatypes.JSONMap(details)
	}
	return models.ActivityRecord{ID: id, OrganizationID: "org-1", ProfileID: profile, EventType: eventType, EventDetails: d, Timestamp: ts}
}

func TestNormalize_DefaultsMissingDimensions(t *testing.T) {
	e := Normalize(rec("1", "u1", "click", day1, nil))
	require.Equal(t, Unknown, e.Feature)
	require.Equal(t, Unknown, e.ViewerRole)
	require.Equal(t, Unknown, e.ErrorCode)
	require.Nil(t, e.Action)
	require.Nil(t, e.Route)
	require.Nil(t, e.HTTPStatus)
}

func TestNormalize_EmptyAndNullValues(t *testing.T) {
	e := Normalize(rec("1", "u1", "click", day1, map[string]any{
		"feature":     "",
		"viewer_role": nil,
		"action":      "",
		"route":       nil,
	}))
	require.Equal(t, Unknown, e.Feature)
	require.Equal(t, Unknown, e.ViewerRole)
	require.NotNil(t, e.Action)
	require.Equal(t, "", *e.Action)
	require.Nil(t, e.Route)
}

func TestNormalize_ReadsTypedValues(t *testing.T) {
	e := Normalize(rec("1", "u1", "error", day1.In(time.FixedZone("X", 3600)), map[string]any{
		"feature":     "search",
		"viewer_role": "coach",
		"action":      "submit",
		"error_code":  "E42",
		"route":       "/api/search",
		"http_status": float64(502),
	}))
	require.Equal(t, "search", e.Feature)
	require.Equal(t, "coach", e.ViewerRole)
	require.Equal(t, "submit", *e.Action)
	require.Equal(t, "E42", e.ErrorCode)
	require.Equal(t, "/api/search", *e.Route)
	require.Equal(t, 502, *e.HTTPStatus)
	require.Equal(t, time.UTC, e.Timestamp.Location())
	require.True(t, e.IsError())
}

func TestNormalize_ScalarCoercion(t *testing.T) {
	var details map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"feature": 7, "action": true, "http_status": "404", "error_code": {"nested": 1}}`), &details))
	e := Normalize(rec("1", "u1", "error", day1, details))
	require.Equal(t, "7", e.Feature)
	require.Equal(t, "true", *e.Action)
	require.Equal(t, 404, *e.HTTPStatus)
	require.Equal(t, Unknown, e.ErrorCode)

	e = Normalize(rec("2", "u1", "error", day1, map[string]any{"http_status": 4.5}))
	require.Nil(t, e.HTTPStatus)
	e = Normalize(rec("3", "u1", "error", day1, map[string]any{"http_status": "n/a"}))
	require.Nil(t, e.HTTPStatus)
}

func TestWindow_ContainsIsInclusive(t *testing.T) {
	w := Window{From: day1, To: day1.Add(time.Hour)}
	require.True(t, w.Contains(day1))
	require.True(t, w.Contains(day1.Add(time.Hour)))
	require.False(t, w.Contains(day1.Add(-time.Nanosecond)))
	require.False(t, w.Contains(day1.Add(time.Hour+time.Nanosecond)))
}

func TestFormatISO(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.FixedZone("X", -3600))
	require.Equal(t, "2026-01-02T04:04:05.006Z", FormatISO(ts))
}
