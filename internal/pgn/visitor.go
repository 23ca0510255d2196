// Package pgn reads a stream of PGN game records and reports their headers to
// a Visitor. Movetext is scanned only to find record boundaries.
package pgn

// Skip tells the reader whether to discard the movetext of the current game.
type Skip bool

// Visitor receives the records of a PGN stream. For every game the reader
// calls BeginGame, then Header once per header line, then EndHeaders at most
// once, then EndGame. An error from any method stops the read.
type Visitor interface {
	BeginGame()
	Header(key, value string) error
	EndHeaders() (Skip, error)
	EndGame() error
}

// MovetextVisitor is implemented by visitors that want the movetext lines of
// games for which EndHeaders returned Skip(false).
type MovetextVisitor interface {
	Visitor
	Movetext(line string) error
}
