/*
go-hybridtrack runs object detection on a subset of video frames (keyframes)
and lets an external visual tracker propagate tracks on the frames in between.

The root package holds the shared data model: frames, detections, tensor
descriptors, the inference Engine contract and the error taxonomy.  The
letterbox transform and tensor encoding live in the preprocess subpackage,
output decoding, non-max suppression and coordinate unmapping in postprocess,
the tracker boundary and its flat float interchange format in tracker, the
textual wire format in wire, and the keyframe scheduler and frame worker in
pipeline.

See example code and usage in the example subdirectory.
*/
package hybridtrack
