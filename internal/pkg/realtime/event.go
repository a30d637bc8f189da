// Package realtime turns Postgres row-insert notifications into per-user
// notifications and keeps the change stream alive across disconnects.
package realtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/yigit/campusdesk/internal/pkg/notifications"
)

// Stream names a change stream. Values match the source table names.
type Stream string

const (
	StreamNotices    Stream = "notices"
	StreamMarks      Stream = "marks"
	StreamPlacements Stream = "placements"
	StreamAlerts     Stream = "notifications"
)

// Streams lists every stream the supervisor follows.
var Streams = []Stream{StreamNotices, StreamMarks, StreamPlacements, StreamAlerts}

// Valid reports whether s is a followed stream.
func (s Stream) Valid() bool {
	for _, known := range Streams {
		if s == known {
			return true
		}
	}
	return false
}

// Audience values carried by notice rows.
const (
	AudienceAll      = "all"
	AudienceStudents = "students"
	AudienceFaculty  = "faculty"
)

// Event is one inserted row, already loaded from its table.
type Event struct {
	Stream    Stream
	RowID     int64
	CreatedAt time.Time

	// EnrollmentNumber restricts delivery to one student. Empty means broadcast.
	EnrollmentNumber string
	// Audience restricts notices to a role group.
	Audience string

	// Title and Body carry the row's display fields:
	//   notices:    title, -
	//   marks:      subject, "<exam type>: <obtained>/<max>"
	//   placements: company, role
	//   alerts:     title, message
	Title string
	Body  string

	// AlertType is the notification type stored on alert rows.
	AlertType notifications.Type
}

// RowRef identifies an inserted row as announced on the notification channel.
type RowRef struct {
	Stream Stream `json:"table"`
	ID     int64  `json:"id"`
}

// ToNotification normalizes an event. The result is always unread.
func ToNotification(ev Event) notifications.Notification {
	n := notifications.Notification{
		ID:        fmt.Sprintf("%s-%d", idPrefix(ev.Stream), ev.RowID),
		Type:      notificationType(ev),
		Read:      false,
		CreatedAt: ev.CreatedAt,
	}

	switch ev.Stream {
	case StreamNotices:
		n.Title = "New Notice"
		n.Message = ev.Title
	case StreamMarks:
		n.Title = "New Marks Posted"
		n.Message = joinNonEmpty(" - ", ev.Title, ev.Body)
	case StreamPlacements:
		n.Title = "New Placement Opportunity"
		if ev.Body != "" {
			n.Message = fmt.Sprintf("%s is hiring: %s", ev.Title, ev.Body)
		} else {
			n.Message = ev.Title
		}
	case StreamAlerts:
		n.Title = ev.Title
		n.Message = ev.Body
	}
	return n
}

// Alerts get their own prefix since their type may repeat another stream's.
func idPrefix(s Stream) string {
	switch s {
	case StreamNotices:
		return "notice"
	case StreamMarks:
		return "marks"
	case StreamPlacements:
		return "placement"
	default:
		return "alert"
	}
}

func notificationType(ev Event) notifications.Type {
	switch ev.Stream {
	case StreamNotices:
		return notifications.TypeNotice
	case StreamMarks:
		return notifications.TypeMarks
	case StreamPlacements:
		return notifications.TypePlacement
	default:
		if ev.AlertType.Valid() {
			return ev.AlertType
		}
		return notifications.TypeAttendance
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
