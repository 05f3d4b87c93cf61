package wire

import (
	"strconv"
	"strings"

	"github.com/swdee/go-hybridtrack"
)

const (
	// UntrackedFields is the number of fields in a record without a track id
	UntrackedFields = 6
	// TrackedFields is the number of fields in a record with a track id
	TrackedFields = 7
)

// Record is a single detection in the wire format.  Producers that predate
// tracking emit Untracked records, others emit Tracked records, and a
// message may contain both.
type Record interface {
	// Detection returns the record as a Detection
	Detection() hybridtrack.Detection
	// Fields returns the number of fields the record is encoded with
	Fields() int

	appendTo(sb *strings.Builder, precision int)
}

// Untracked is a record with cx,cy,w,h,classId,confidence
type Untracked struct {
	CX         float32
	CY         float32
	W          float32
	H          float32
	ClassID    int
	Confidence float32
}

// Detection returns the record with TrackID set to Untracked
func (u Untracked) Detection() hybridtrack.Detection {
	return hybridtrack.Detection{
		CX:         u.CX,
		CY:         u.CY,
		W:          u.W,
		H:          u.H,
		ClassID:    u.ClassID,
		Confidence: u.Confidence,
		TrackID:    hybridtrack.Untracked,
	}
}

func (u Untracked) Fields() int {
	return UntrackedFields
}

func (u Untracked) appendTo(sb *strings.Builder, precision int) {
	for _, v := range [4]float32{u.CX, u.CY, u.W, u.H} {
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', precision, 32))
		sb.WriteByte(fieldSep)
	}

	sb.WriteString(strconv.Itoa(u.ClassID))
	sb.WriteByte(fieldSep)
	sb.WriteString(strconv.FormatFloat(float64(u.Confidence), 'f', precision, 32))
}

// Tracked is a record with cx,cy,w,h,classId,confidence,trackId
type Tracked struct {
	Untracked
	TrackID int
}

// Detection returns the record including its track id
func (t Tracked) Detection() hybridtrack.Detection {
	d := t.Untracked.Detection()
	d.TrackID = t.TrackID
	return d
}

func (t Tracked) Fields() int {
	return TrackedFields
}

func (t Tracked) appendTo(sb *strings.Builder, precision int) {
	t.Untracked.appendTo(sb, precision)
	sb.WriteByte(fieldSep)
	sb.WriteString(strconv.Itoa(t.TrackID))
}

// FromDetection returns a Tracked record when tracked is set, otherwise an
// Untracked record
func FromDetection(d hybridtrack.Detection, tracked bool) Record {

	u := Untracked{
		CX:         d.CX,
		CY:         d.CY,
		W:          d.W,
		H:          d.H,
		ClassID:    d.ClassID,
		Confidence: d.Confidence,
	}

	if !tracked {
		return u
	}

	return Tracked{Untracked: u, TrackID: d.TrackID}
}
