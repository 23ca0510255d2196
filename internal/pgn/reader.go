package pgn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/pgn-ratings/internal/logging"
	"fjacquet/pgn-ratings/internal/parsererror"
)

// MaxLineSize bounds a single PGN line.
const MaxLineSize = 1 << 20

type readState int

const (
	stateIdle readState = iota
	stateHeaders
	stateMovetext
)

// Reader is a line-oriented PGN reader.
type Reader struct {
	scanner *bufio.Scanner
	logger  logging.Logger
	line    int

	state        readState
	skip         Skip
	commentDepth int
	headersDone  bool
}

// NewReader creates a Reader over r. A nil logger falls back to the default logger.
func NewReader(r io.Reader, logger logging.Logger) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{
		scanner: scanner,
		logger:  logging.OrDefault(logger),
	}
}

// ReadAll feeds every game of the stream to v and returns the number of games.
func (r *Reader) ReadAll(v Visitor) (int, error) {
	games := 0
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if r.line == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		started, err := r.feed(v, line)
		if err != nil {
			return games, err
		}
		games += started
	}
	if err := r.scanner.Err(); err != nil {
		return games, &parsererror.ParseError{
			Parser: "pgn",
			Field:  "line",
			Line:   r.line + 1,
			Err:    err,
		}
	}
	if r.state != stateIdle {
		if err := r.finishGame(v); err != nil {
			return games, err
		}
	}
	return games, nil
}

// feed processes one line and reports how many games it started.
func (r *Reader) feed(v Visitor, line string) (int, error) {
	if strings.HasPrefix(line, "%") {
		return 0, nil
	}
	trimmed := strings.TrimSpace(line)

	switch r.state {
	case stateIdle:
		if trimmed == "" {
			return 0, nil
		}
		r.beginGame(v)
		return 1, r.feedHeaderBlock(v, trimmed)

	case stateHeaders:
		return 0, r.feedHeaderBlock(v, trimmed)

	case stateMovetext:
		if r.commentDepth == 0 && strings.HasPrefix(trimmed, "[") {
			if err := r.finishGame(v); err != nil {
				return 0, err
			}
			r.beginGame(v)
			return 1, r.feedHeaderBlock(v, trimmed)
		}
		return 0, r.movetext(v, trimmed)
	}
	return 0, nil
}

func (r *Reader) beginGame(v Visitor) {
	r.state = stateHeaders
	r.skip = false
	r.commentDepth = 0
	r.headersDone = false
	v.BeginGame()
}

func (r *Reader) feedHeaderBlock(v Visitor, trimmed string) error {
	if strings.HasPrefix(trimmed, "[") {
		key, value, err := parseHeader(trimmed)
		if err != nil {
			r.logger.Debug("Ignoring malformed header line",
				logging.Field{Key: logging.FieldLine, Value: r.line},
				logging.Field{Key: logging.FieldReason, Value: err.Error()})
			return nil
		}
		return v.Header(key, value)
	}

	if err := r.endHeaders(v); err != nil {
		return err
	}
	r.state = stateMovetext
	return r.movetext(v, trimmed)
}

// movetext forwards a movetext line to visitors that asked to see it.
func (r *Reader) movetext(v Visitor, trimmed string) error {
	if trimmed == "" {
		return nil
	}
	r.scanMovetext(trimmed)
	if r.skip {
		return nil
	}
	if mv, ok := v.(MovetextVisitor); ok {
		return mv.Movetext(trimmed)
	}
	return nil
}

func (r *Reader) endHeaders(v Visitor) error {
	skip, err := v.EndHeaders()
	if err != nil {
		return err
	}
	r.skip = skip
	r.headersDone = true
	return nil
}

func (r *Reader) finishGame(v Visitor) error {
	if !r.headersDone {
		if err := r.endHeaders(v); err != nil {
			return err
		}
	}
	r.state = stateIdle
	return v.EndGame()
}

// scanMovetext tracks brace comments so a '[' inside a multi-line comment is
// not mistaken for the next game's headers.
func (r *Reader) scanMovetext(line string) {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '{':
			r.commentDepth = 1
		case '}':
			r.commentDepth = 0
		case ';':
			if r.commentDepth == 0 {
				return
			}
		}
	}
}

var errNotHeader = errors.New("not a header line")

// parseHeader parses `[Key "Value"]`, honouring \" and \\ escapes.
func parseHeader(line string) (string, string, error) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", "", errNotHeader
	}
	body := strings.TrimSpace(line[1 : len(line)-1])

	// Keys may span several words, as in "White Rating".
	quote := strings.IndexByte(body, '"')
	if quote < 0 {
		return "", "", fmt.Errorf("missing quoted value in %q", line)
	}
	key := strings.Join(strings.Fields(body[:quote]), " ")
	if key == "" {
		return "", "", fmt.Errorf("missing header key in %q", line)
	}
	rest := body[quote:]
	if len(rest) < 2 {
		return "", "", fmt.Errorf("unterminated value for %s", key)
	}

	var value strings.Builder
	escaped := false
	for i := 1; i < len(rest); i++ {
		ch := rest[i]
		switch {
		case escaped:
			value.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			if strings.TrimSpace(rest[i+1:]) != "" {
				return "", "", fmt.Errorf("trailing data after value of %s", key)
			}
			return key, value.String(), nil
		default:
			value.WriteByte(ch)
		}
	}
	return "", "", fmt.Errorf("unterminated value for %s", key)
}
