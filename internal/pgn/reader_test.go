package pgn

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"fjacquet/pgn-ratings/internal/logging"
	"fjacquet/pgn-ratings/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures visitor calls as strings.
type recorder struct {
	calls     []string
	skip      Skip
	headerErr error
	endHdrErr error
	movetext  []string
}

func (r *recorder) BeginGame() { r.calls = append(r.calls, "begin") }

func (r *recorder) Header(key, value string) error {
	r.calls = append(r.calls, fmt.Sprintf("header %s=%s", key, value))
	return r.headerErr
}

func (r *recorder) EndHeaders() (Skip, error) {
	r.calls = append(r.calls, "end_headers")
	return r.skip, r.endHdrErr
}

func (r *recorder) EndGame() error {
	r.calls = append(r.calls, "end_game")
	return nil
}

type movetextRecorder struct {
	recorder
}

func (m *movetextRecorder) Movetext(line string) error {
	m.movetext = append(m.movetext, line)
	return nil
}

const twoGames = `[Event "Rated Blitz game"]
[Site "https://lichess.org/abc"]
[WhiteElo "1500"]
[BlackElo "1600?"]
[TimeControl "180+2"]

1. e4 e5 2. Nf3 { [%clk 0:03:00] } Nc6 1-0

[Event "Casual Bullet game"]
[TimeControl "60+0"]

1. d4 d5 0-1
`

func TestReadAll_ProtocolOrder(t *testing.T) {
	rec := &recorder{skip: true}
	games, err := NewReader(strings.NewReader(twoGames), logging.NewMockLogger()).ReadAll(rec)
	require.NoError(t, err)

	assert.Equal(t, 2, games)
	assert.Equal(t, []string{
		"begin",
		"header Event=Rated Blitz game",
		"header Site=https://lichess.org/abc",
		"header WhiteElo=1500",
		"header BlackElo=1600?",
		"header TimeControl=180+2",
		"end_headers",
		"end_game",
		"begin",
		"header Event=Casual Bullet game",
		"header TimeControl=60+0",
		"end_headers",
		"end_game",
	}, rec.calls)
}

func TestReadAll_NoTrailingNewlineAndCRLF(t *testing.T) {
	input := "[Event \"a\"]\r\n\r\n1. e4 *\r\n\r\n[Event \"b\"]\r\n\r\n1. d4 *"
	rec := &recorder{skip: true}

	games, err := NewReader(strings.NewReader(input), nil).ReadAll(rec)
	require.NoError(t, err)
	assert.Equal(t, 2, games)
	assert.Equal(t, "header Event=b", rec.calls[5])
	assert.Equal(t, "end_game", rec.calls[len(rec.calls)-1])
}

func TestReadAll_HeadersOnlyAtEOF(t *testing.T) {
	rec := &recorder{skip: true}
	games, err := NewReader(strings.NewReader(`[Event "x"]`), nil).ReadAll(rec)
	require.NoError(t, err)

	assert.Equal(t, 1, games)
	assert.Equal(t, []string{"begin", "header Event=x", "end_headers", "end_game"}, rec.calls)
}

func TestReadAll_MovetextWithoutBlankLine(t *testing.T) {
	input := "[Event \"x\"]\n1. e4 e5 *\n[Event \"y\"]\n1. d4 *\n"
	rec := &recorder{skip: true}

	games, err := NewReader(strings.NewReader(input), nil).ReadAll(rec)
	require.NoError(t, err)
	assert.Equal(t, 2, games)
	assert.Equal(t, []string{
		"begin", "header Event=x", "end_headers", "end_game",
		"begin", "header Event=y", "end_headers", "end_game",
	}, rec.calls)
}

func TestReadAll_CommentContainingBracketLine(t *testing.T) {
	input := `[Event "x"]

1. e4 { a long comment
[this is not a header]
still comment } e5 *

[Event "y"]

1. d4 *
`
	rec := &recorder{skip: true}
	games, err := NewReader(strings.NewReader(input), nil).ReadAll(rec)
	require.NoError(t, err)
	assert.Equal(t, 2, games)
	assert.Equal(t, []string{
		"begin", "header Event=x", "end_headers", "end_game",
		"begin", "header Event=y", "end_headers", "end_game",
	}, rec.calls)
}

func TestReadAll_EscapeLinesAndEmptyInput(t *testing.T) {
	rec := &recorder{skip: true}
	games, err := NewReader(strings.NewReader("% exported by tool\n\n\n"), nil).ReadAll(rec)
	require.NoError(t, err)
	assert.Zero(t, games)
	assert.Empty(t, rec.calls)
}

func TestReadAll_MalformedHeaderIgnored(t *testing.T) {
	mock := logging.NewMockLogger()
	input := "[Event \"x\"]\n[Broken\n[WhiteElo \"1500\"]\n\n*\n"
	rec := &recorder{skip: true}

	_, err := NewReader(strings.NewReader(input), mock).ReadAll(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"begin", "header Event=x", "header WhiteElo=1500", "end_headers", "end_game"}, rec.calls)
	assert.True(t, mock.HasEntry("DEBUG", "Ignoring malformed header line"))
}

func TestReadAll_VisitorErrorStops(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{skip: true, endHdrErr: boom}

	_, err := NewReader(strings.NewReader(twoGames), nil).ReadAll(rec)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "end_headers", rec.calls[len(rec.calls)-1])
}

func TestReadAll_MovetextOnlyWhenNotSkipped(t *testing.T) {
	mv := &movetextRecorder{}
	mv.skip = false
	_, err := NewReader(strings.NewReader(twoGames), nil).ReadAll(mv)
	require.NoError(t, err)
	assert.Equal(t, []string{"1. e4 e5 2. Nf3 { [%clk 0:03:00] } Nc6 1-0", "1. d4 d5 0-1"}, mv.movetext)

	skipping := &movetextRecorder{}
	skipping.skip = true
	_, err = NewReader(strings.NewReader(twoGames), nil).ReadAll(skipping)
	require.NoError(t, err)
	assert.Empty(t, skipping.movetext)
}

func TestReadAll_LineTooLong(t *testing.T) {
	input := "[Event \"" + strings.Repeat("x", MaxLineSize+10) + "\"]\n"
	_, err := NewReader(strings.NewReader(input), nil).ReadAll(&recorder{})

	var parseErr *parsererror.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "pgn", parseErr.Parser)
	assert.Equal(t, 1, parseErr.Line)
}

func TestReadAll_MultiWordHeaderKeys(t *testing.T) {
	input := "[TimeControl \"120+1\"]\n[White Rating \"1500\"]\n[Black Rating \"1600\"]\n\n1. e4 *\n"
	rec := &recorder{skip: true}

	_, err := NewReader(strings.NewReader(input), logging.NewMockLogger()).ReadAll(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"begin",
		"header TimeControl=120+1",
		"header White Rating=1500",
		"header Black Rating=1600",
		"end_headers",
		"end_game",
	}, rec.calls)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{line: `[Event "Rated Blitz game"]`, key: "Event", value: "Rated Blitz game", ok: true},
		{line: `[White "O\"Brien"]`, key: "White", value: `O"Brien`, ok: true},
		{line: `[Annotator "a\\b"]`, key: "Annotator", value: `a\b`, ok: true},
		{line: `[ Event   "spaced" ]`, key: "Event", value: "spaced", ok: true},
		{line: `[Event ""]`, key: "Event", value: "", ok: true},
		{line: `[White Rating "1500"]`, key: "White Rating", value: "1500", ok: true},
		{line: "[Black \t Rating\t\"1600\"]", key: "Black Rating", value: "1600", ok: true},
		{line: `[Event]`, ok: false},
		{line: `[Event "unterminated]`, ok: false},
		{line: `[Event "a" junk]`, ok: false},
		{line: `["no key"]`, ok: false},
		{line: `Event "x"`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			key, value, err := parseHeader(tt.line)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}
