package parser

// Parser turns one raw line of build-tool output into a test event
type Parser interface {
	ParseLine(raw string) (Event, bool)
}
