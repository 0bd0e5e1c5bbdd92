package transform

import "fmt"

// Operation identifies a document transform.
type Operation string

// Supported operations.
const (
	OpMerge    Operation = "merge"
	OpSplit    Operation = "split"
	OpCompress Operation = "compress"
	OpRotate   Operation = "rotate"
	OpEncrypt  Operation = "encrypt"
	OpDecrypt  Operation = "decrypt"
	OpConvert  Operation = "convert"
)

// ParseOperation validates an operation name from a request path.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	switch op {
	case OpMerge, OpSplit, OpCompress, OpRotate, OpEncrypt, OpDecrypt, OpConvert:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// Input is a named document submitted to a transform.
type Input struct {
	Name string
	Data []byte
}

// Options carries operation-specific parameters.
type Options struct {
	// Angle is the clockwise rotation in degrees. Rotate only.
	Angle int

	// Pages selects pages to affect: "all", "odd", "even", or a
	// comma-separated list of 1-indexed page numbers. Rotate only.
	Pages string

	// Password protects or unlocks a document. Encrypt and decrypt only.
	Password string

	// Conversion names the target format. Convert only.
	Conversion string
}

// Request describes a transform invocation.
type Request struct {
	Operation Operation
	Inputs    []Input
	Options   Options
}

// Result is the output of a completed transform.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
}
