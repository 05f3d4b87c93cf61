package hybridtrack

import "errors"

var (
	// ErrInvalidFrame is returned for frames with no pixel data or zero
	// dimensions.  The frame is skipped and the stream continues.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrUnsupportedTensorType is returned at load time when a model input or
	// output tensor uses an element type the encoder or decoder can't handle
	ErrUnsupportedTensorType = errors.New("unsupported tensor type")

	// ErrMalformedOutput is returned when the model output tensor doesn't have
	// the expected [numAttributes][numPredictions] shape
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrTrackerUnavailable is returned when the tracker failed to initialise
	// or produced no response for a frame
	ErrTrackerUnavailable = errors.New("tracker unavailable")

	// ErrMalformedRecord is returned for a wire record with the wrong number
	// of fields or a non numeric field
	ErrMalformedRecord = errors.New("malformed record")

	// ErrContextReleased is returned when an operation is attempted on a
	// tracker session or frame source that has already been closed
	ErrContextReleased = errors.New("context released")
)
