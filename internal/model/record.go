package model

import (
	"strconv"
	"time"
)

// CSVHeader is the fixed column set of the persisted log. It is written exactly
// once, when the store file is first created, and every appended row follows
// this order.
var CSVHeader = []string{
	"timestamp_utc",
	"telegram_id",
	"username",
	"fio",
	"group",
	"task_type",
	"seminar_no",
	"task_text",
	"feedback",
}

// NoHandle is the sentinel stored in place of a missing Telegram username.
const NoHandle = "—"

// Record is one processed submission plus its generated feedback.
// Records are immutable once appended to the store.
type Record struct {
	Timestamp    time.Time
	SenderID     int64
	SenderHandle string
	FullName     string
	Group        string
	TaskType     string
	SeminarNo    string
	TaskText     string
	Feedback     string
}

// Sender identifies the author of an inbound message.
type Sender struct {
	ID     int64
	Handle string
}

// CSVRow serialises the record in CSVHeader order.
func (r *Record) CSVRow() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		strconv.FormatInt(r.SenderID, 10),
		r.SenderHandle,
		r.FullName,
		r.Group,
		r.TaskType,
		r.SeminarNo,
		r.TaskText,
		r.Feedback,
	}
}
