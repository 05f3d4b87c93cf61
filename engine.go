package hybridtrack

// Engine is the contract with an opaque inference engine.  Descriptors are
// fixed for the lifetime of the engine and must be cached at load time rather
// than queried per frame.
type Engine interface {
	// InputDesc describes the single image input tensor
	InputDesc() TensorDesc
	// OutputDesc describes the single detection output tensor
	OutputDesc() TensorDesc
	// Invoke runs the model on the encoded input bytes and returns the raw
	// output tensor.  The returned data may be reused by the next call.
	Invoke(input []byte) (Tensor, error)
	// Close releases the engine
	Close() error
}
