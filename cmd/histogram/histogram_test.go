package histogram_test

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/pgn-ratings/cmd/histogram"
	"fjacquet/pgn-ratings/cmd/root"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamesPGN = `[Event "Rated Blitz game"]
[Site "https://lichess.org/abcd"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1700"]
[TimeControl "180+2"]

1. e4 e5 2. Nf3 { [%eval 0.3] } Nc6 1-0

[Event "Casual Bullet game"]
[WhiteElo "2000"]
[BlackElo "?"]
[TimeControl "60+0"]

1. d4 d5 0-1

[Event "Rated Classical game"]
[WhiteElo "1800"]
[BlackElo "1850"]
[TimeControl "bogus"]

1. c4 *`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdirForTest(t, t.TempDir())

	cmd := root.NewCommand()
	cmd.AddCommand(histogram.NewCommand())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const expectedStatus = "ultrabullet: total 0, mean No games, stddev No games\n" +
	"bullet: total 1, mean 2000.00, stddev 0.00\n" +
	"blitz: total 2, mean 1600.00, stddev 100.00\n" +
	"rapid: total 0, mean No games, stddev No games\n" +
	"classical: total 0, mean No games, stddev No games\n" +
	"skipped 1, casual 1\n"

func TestHistogramCommand_File(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "games.pgn")
	require.NoError(t, os.WriteFile(input, []byte(gamesPGN), 0600))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "", "histogram", input, "--output-dir", outDir)
	require.NoError(t, err)
	assert.Equal(t, expectedStatus, out)

	blitz, err := os.ReadFile(filepath.Join(outDir, "blitz.data"))
	require.NoError(t, err)
	assert.Equal(t, "1500,1\n1700,1\n", string(blitz))

	bullet, err := os.ReadFile(filepath.Join(outDir, "bullet.data"))
	require.NoError(t, err)
	assert.Equal(t, "2000,1\n", string(bullet))

	for _, name := range []string{"ultrabullet", "rapid", "classical"} {
		content, err := os.ReadFile(filepath.Join(outDir, name+".data"))
		require.NoError(t, err, name)
		assert.Empty(t, content, name)
	}
}

func TestHistogramCommand_Stdin(t *testing.T) {
	outDir := t.TempDir()

	out, err := execute(t, gamesPGN, "histogram", "-", "--output-dir", outDir, "--delimiter", ";", "--extension", ".csv")
	require.NoError(t, err)
	assert.Equal(t, expectedStatus, out)

	blitz, err := os.ReadFile(filepath.Join(outDir, "blitz.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1500;1\n1700;1\n", string(blitz))
}

func TestHistogramCommand_Gzip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "games.pgn.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(gamesPGN))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(input, buf.Bytes(), 0600))

	summary := filepath.Join(dir, "summary.yaml")
	out, err := execute(t, "", "histogram", input, "--output-dir", dir, "--summary-file", summary)
	require.NoError(t, err)
	assert.Equal(t, expectedStatus, out)

	content, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(content), "source: "+input)
	assert.Contains(t, string(content), "casual: 1")
}

func TestHistogramCommand_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "", "histogram", filepath.Join(t.TempDir(), "nope.pgn"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := execute(t, "", "histogram", "a.pgn", "b.pgn")
		assert.Error(t, err)
	})

	t.Run("unwritable output directory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))
		_, err := execute(t, gamesPGN, "histogram", "--output-dir", blocker)
		assert.Error(t, err)
	})
}

func TestHistogramCommand_Metadata(t *testing.T) {
	assert.Equal(t, "histogram [FILE]", histogram.Cmd.Use)
	assert.NotNil(t, histogram.Cmd.RunE)
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
