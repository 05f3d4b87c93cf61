package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/swdee/go-hybridtrack"
	"go.uber.org/multierr"
)

const (
	fieldSep  = ','
	recordSep = ';'

	// DefaultPrecision is the number of decimal places floats are encoded
	// with
	DefaultPrecision = 4
)

// Codec encodes and decodes the semicolon separated text format
type Codec struct {
	// Precision is the number of decimal places used for float fields
	Precision int
}

// NewCodec returns a Codec using DefaultPrecision
func NewCodec() *Codec {
	return &Codec{Precision: DefaultPrecision}
}

// Encode returns the records as "cx,cy,w,h,classId,conf[,trackId];..."
func (c *Codec) Encode(records []Record) string {

	var sb strings.Builder

	for i, r := range records {
		if i > 0 {
			sb.WriteByte(recordSep)
		}

		r.appendTo(&sb, c.Precision)
	}

	return sb.String()
}

// EncodeDetections encodes the detections as Tracked records when tracked is
// set, otherwise as Untracked records
func (c *Codec) EncodeDetections(dets []hybridtrack.Detection, tracked bool) string {

	records := make([]Record, len(dets))

	for i, d := range dets {
		records[i] = FromDetection(d, tracked)
	}

	return c.Encode(records)
}

// DecodeRecords parses a message into records.  Records with the wrong number
// of fields or a non numeric field are skipped and reported in the returned
// error, which aggregates one ErrMalformedRecord per skipped record.  The
// valid records are always returned.
func (c *Codec) DecodeRecords(msg string) ([]Record, error) {

	var records []Record
	var errs error

	for i, raw := range strings.Split(msg, string(recordSep)) {
		raw = strings.TrimSpace(raw)

		if raw == "" {
			continue
		}

		r, err := parseRecord(raw)

		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}

		records = append(records, r)
	}

	return records, errs
}

// Decode parses a message into detections, skipping malformed records
func (c *Codec) Decode(msg string) ([]hybridtrack.Detection, error) {

	records, err := c.DecodeRecords(msg)

	dets := make([]hybridtrack.Detection, len(records))

	for i, r := range records {
		dets[i] = r.Detection()
	}

	return dets, err
}

// parseRecord parses a single comma separated record.  Trailing empty fields
// are ignored, so "1,2,3,4,0,0.5," is a six field record.
func parseRecord(raw string) (Record, error) {

	parts := strings.Split(raw, string(fieldSep))

	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	if len(parts) != UntrackedFields && len(parts) != TrackedFields {
		return nil, fmt.Errorf("%w: %d fields in %q", hybridtrack.ErrMalformedRecord, len(parts), raw)
	}

	var floats [4]float32

	for i := range floats {
		v, err := parseFloat(parts[i])

		if err != nil {
			return nil, err
		}

		floats[i] = v
	}

	classID, err := parseInt(parts[4])

	if err != nil {
		return nil, err
	}

	conf, err := parseFloat(parts[5])

	if err != nil {
		return nil, err
	}

	u := Untracked{
		CX:         floats[0],
		CY:         floats[1],
		W:          floats[2],
		H:          floats[3],
		ClassID:    classID,
		Confidence: conf,
	}

	if len(parts) == UntrackedFields {
		return u, nil
	}

	trackID, err := parseInt(parts[6])

	if err != nil {
		return nil, err
	}

	return Tracked{Untracked: u, TrackID: trackID}, nil
}

func parseFloat(s string) (float32, error) {

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)

	if err != nil {
		return 0, fmt.Errorf("%w: %v", hybridtrack.ErrMalformedRecord, err)
	}

	return float32(v), nil
}

func parseInt(s string) (int, error) {

	v, err := strconv.Atoi(strings.TrimSpace(s))

	if err != nil {
		return 0, fmt.Errorf("%w: %v", hybridtrack.ErrMalformedRecord, err)
	}

	return v, nil
}
