package usecase

import "time"

const (
	// TimeLayout is the wire format of the shared leg timestamp.
	TimeLayout = time.RFC3339Nano

	// EntryCacheTTL is how long looked-up entries stay cached by default.
	EntryCacheTTL = time.Hour

	// Pipeline stages reported to the Recorder.
	StageEncode      = "encode"
	StageRelay       = "relay"
	StageMaterialize = "materialize"
)

// legacyTimeLayouts are zone-less ISO local date-times, read as UTC.
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}
