package parser

type implParser struct {
	maxSize int64
}

const defaultMaxSize = 16 << 20

// New creates the default Parser for .ips and .crash reports
func New() Parser {
	return &implParser{maxSize: defaultMaxSize}
}
