package ft8modem

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLogDaily(t *testing.T) {
	var dir = filepath.Join(t.TempDir(), "logs")
	var l = NewDecodeLog(true, dir, "FN42", NewLogger(io.Discard, "info"))
	l.now = func() time.Time { return time.Unix(1700000000, 0) }

	l.Write(FT8, DecodedLine{Time: 1700000000, Content: "-12  0.3 1234 ~  CQ K1ABC FN42"})
	l.Write(FT8, DecodedLine{Time: 1700000015, Content: "-3  0.1  900 ~  K1ABC W1AW R-05"})
	l.Close()

	var data, err = os.ReadFile(filepath.Join(dir, "2023-11-14.log"))
	require.NoError(t, err)

	assert.Equal(t, decodeLogHeader+
		"1700000000,2023-11-14T22:13:20Z,FT8,-12,0.3,1234,CQ,K1ABC,FN42,0\n"+
		"1700000015,2023-11-14T22:13:35Z,FT8,-3,0.1,900,K1ABC,W1AW,R-05,\n",
		string(data))
}

func TestDecodeLogRollsOverAndAppends(t *testing.T) {
	var dir = t.TempDir()
	var now = time.Unix(1700000000, 0)
	var l = NewDecodeLog(true, dir, "", NewLogger(io.Discard, "info"))
	l.now = func() time.Time { return now }

	l.Write(FT4, DecodedLine{Time: 1, Content: "1 2 3 ~ A B C"})
	now = now.Add(24 * time.Hour)
	l.Write(FT4, DecodedLine{Time: 2, Content: "1 2 3 ~ A B C"})
	l.Close()

	assert.FileExists(t, filepath.Join(dir, "2023-11-14.log"))
	assert.FileExists(t, filepath.Join(dir, "2023-11-15.log"))

	// Reopening an existing file does not repeat the header.
	l = NewDecodeLog(true, dir, "", NewLogger(io.Discard, "info"))
	l.now = func() time.Time { return now }
	l.Write(FT4, DecodedLine{Time: 3, Content: "1 2 3 ~ A B C"})
	l.Close()

	var data, err = os.ReadFile(filepath.Join(dir, "2023-11-15.log"))
	require.NoError(t, err)
	assert.Equal(t, decodeLogHeader+
		"2,1970-01-01T00:00:02Z,FT4,1,2,3,A,B,C,\n"+
		"3,1970-01-01T00:00:03Z,FT4,1,2,3,A,B,C,\n",
		string(data))
}

func TestDecodeLogSingleFile(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "decodes.csv")
	var l = NewDecodeLog(false, path, "", NewLogger(io.Discard, "info"))

	l.Write(FT8, DecodedLine{Time: 1700000000, Content: "-12  0.1 1000 ~"})
	l.Close()

	var data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, decodeLogHeader+"1700000000,2023-11-14T22:13:20Z,FT8,-12,0.1,1000,,,,\n", string(data))
}

func TestDecodeLogNotADirectory(t *testing.T) {
	var file = filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	var l = NewDecodeLog(true, file, "", NewLogger(io.Discard, "info"))
	assert.Equal(t, ".", l.path)
}
