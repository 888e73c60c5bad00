package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/clipstack/internal/model"
	"github.com/rcliao/clipstack/internal/store"
)

type harness struct {
	t   *testing.T
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, dir: t.TempDir()}
}

// run executes one clipstack invocation against the harness directory and
// returns its stdout.
func (h *harness) run(stdin io.Reader, args ...string) (string, error) {
	h.t.Helper()
	resetFlags(RootCmd)

	var out, errOut bytes.Buffer
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	RootCmd.SetIn(stdin)
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(append([]string{
		"--config", filepath.Join(h.dir, "config.toml"),
		"--db-path", h.dir,
	}, args...))

	err := RootCmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(stdin io.Reader, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err, "clipstack %v", args)
	return out
}

func (h *harness) store(content string, args ...string) {
	h.t.Helper()
	h.mustRun(strings.NewReader(content), append([]string{"store"}, args...)...)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestStoreAndList(t *testing.T) {
	h := newHarness(t)
	h.store("hello")
	h.store("world")

	assert.Equal(t, "2\tworld\n1\thello\n", h.mustRun(nil, "list"))
}

func TestStoreRejectsEmptyInput(t *testing.T) {
	h := newHarness(t)

	for _, input := range []string{"", "\n"} {
		_, err := h.run(strings.NewReader(input), "store")
		assert.ErrorIs(t, err, model.ErrEmptyInput, "input %q", input)
	}
	assert.Empty(t, h.mustRun(nil, "list"))
}

func TestStoreDuplicateMovesToFront(t *testing.T) {
	h := newHarness(t)
	h.store("hello")
	h.store("world")
	h.store("hello")

	assert.Equal(t, "1\thello\n2\tworld\n", h.mustRun(nil, "list"))
}

func TestStoreDuplicateReinsert(t *testing.T) {
	h := newHarness(t)
	h.store("hello")
	h.store("world")
	h.store("hello", "--dedupe-mode", "reinsert")

	assert.Equal(t, "3\thello\n2\tworld\n", h.mustRun(nil, "list"))
}

func TestDecode(t *testing.T) {
	h := newHarness(t)
	h.store("first line\nsecond line\n")
	h.store("world")

	assert.Equal(t, "first line\nsecond line\n", h.mustRun(nil, "decode", "1"))

	// a line picked from the menu
	assert.Equal(t, "world", h.mustRun(strings.NewReader("2\tworld\n"), "decode"))
}

func TestDecodeErrors(t *testing.T) {
	h := newHarness(t)
	h.store("hello")

	_, err := h.run(nil, "decode", "99")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = h.run(nil, "decode", "abc")
	assert.ErrorIs(t, err, model.ErrInvalidIndex)

	_, err = h.run(strings.NewReader(""), "decode")
	assert.ErrorIs(t, err, model.ErrInvalidIndex)
}

func TestNonDecimalIDsAreRejected(t *testing.T) {
	h := newHarness(t)
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		h.store(s)
	}

	out, err := h.run(nil, "decode", "010")
	assert.ErrorIs(t, err, model.ErrInvalidIndex)
	assert.Empty(t, out)

	_, err = h.run(strings.NewReader("010\th\n"), "delete")
	assert.ErrorIs(t, err, model.ErrInvalidIndex)
	assert.Equal(t, "h", h.mustRun(nil, "decode", "8"))
	assert.Equal(t, "j", h.mustRun(nil, "decode", "10"))
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	h.store("hello")
	h.store("world")

	h.mustRun(nil, "delete", "1")
	assert.Equal(t, "2\tworld\n", h.mustRun(nil, "list"))
	assert.NoFileExists(t, filepath.Join(h.dir, "1"))

	// unknown ids are ignored
	h.mustRun(strings.NewReader("7\tgone"), "delete")
	assert.Equal(t, "2\tworld\n", h.mustRun(nil, "list"))
}

func TestClearKeepsIDsIncreasing(t *testing.T) {
	h := newHarness(t)
	h.store("hello")
	h.store("world")

	h.mustRun(nil, "clear")
	assert.Empty(t, h.mustRun(nil, "list"))
	assert.NoFileExists(t, filepath.Join(h.dir, "1"))
	assert.NoFileExists(t, filepath.Join(h.dir, "2"))

	h.store("again")
	assert.Equal(t, "3\tagain\n", h.mustRun(nil, "list"))
}

func TestLastAndSecondLast(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(nil, "last")
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	h.store("hello")
	assert.Equal(t, "1\thello\n", h.mustRun(nil, "last"))
	_, err = h.run(nil, "second-last")
	assert.ErrorIs(t, err, model.ErrInsufficientHistory)

	h.store("world")
	assert.Equal(t, "2\tworld\n", h.mustRun(nil, "last"))
	assert.Equal(t, "1\thello\n", h.mustRun(nil, "second-last"))
	assert.Equal(t, "clipboard\n1\thello\n", h.mustRun(nil, "second-last", "-t", "clipboard"))
}

func TestListHeaderAndWidth(t *testing.T) {
	h := newHarness(t)
	h.store("a rather long clipboard entry")

	assert.Equal(t, "History\n1\ta rathe...\n", h.mustRun(nil, "list", "--header", "History", "-p", "7"))
}

func TestMaxItemsEvictsOldest(t *testing.T) {
	h := newHarness(t)
	for _, s := range []string{"one", "two", "three"} {
		h.store(s, "--max-items", "2")
	}

	assert.Equal(t, "3\tthree\n2\ttwo\n", h.mustRun(nil, "list"))
	assert.NoFileExists(t, filepath.Join(h.dir, "1"))
}

func TestImageThumbnails(t *testing.T) {
	h := newHarness(t)

	img := image.NewRGBA(image.Rect(0, 0, 512, 300))
	for x := range 512 {
		img.Set(x, x%300, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	h.store(buf.String())

	thumb := filepath.Join(h.dir, "thumbs", "1.png")
	assert.FileExists(t, thumb)

	rofi := h.mustRun(nil, "list", "-g", "rofi")
	assert.True(t, strings.HasPrefix(rofi, "1\timage/png "), rofi)
	assert.True(t, strings.HasSuffix(rofi, "\x00icon\x1fthumbnail://"+thumb+"\n"), rofi)

	wofi := h.mustRun(nil, "list", "-g", "wofi")
	assert.True(t, strings.HasPrefix(wofi, "1\t:img:"+thumb+":text:image/png "), wofi)

	assert.Equal(t, buf.String(), h.mustRun(nil, "decode", "1"))

	h.mustRun(nil, "delete", "1")
	assert.NoFileExists(t, thumb)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	h.store("Hello there")
	h.store("unrelated")
	h.store("say hello")

	assert.Equal(t, "3\tsay hello\n1\tHello there\n", h.mustRun(nil, "search", "HELLO"))
	assert.Equal(t, "3\tsay hello\n", h.mustRun(nil, "search", "--limit", "1", "hello"))
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.store("hello")
	h.store("world!")

	var st store.Stats
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(nil, "stats")), &st))
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, int64(3), st.NextID)
	assert.Equal(t, int64(11), st.BlobBytes)
	assert.Equal(t, int64(11), st.DiskBytes)
	assert.Empty(t, st.MissingBlobs)
	assert.Equal(t, filepath.Join(h.dir, store.FileName), st.DBPath)

	require.NoError(t, os.Remove(filepath.Join(h.dir, "1")))
	st = store.Stats{}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(nil, "stats")), &st))
	assert.Equal(t, []uint64{1}, st.MissingBlobs)
	assert.Equal(t, int64(6), st.DiskBytes)
}

func TestDebugDump(t *testing.T) {
	h := newHarness(t)
	h.store("hello")

	var dump struct {
		Config  map[string]any `json:"config"`
		History model.Snapshot `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(h.mustRun(nil, "debug", "-i", "9")), &dump))
	assert.EqualValues(t, 9, dump.Config["max_items"])
	assert.Equal(t, []uint64{1}, dump.History.Order)
	assert.Equal(t, "hello", dump.History.Entries[1].Preview.Summary)
}

func TestDefaultConfigWritten(t *testing.T) {
	h := newHarness(t)
	h.mustRun(nil, "list")

	data, err := os.ReadFile(filepath.Join(h.dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_items = 750")
}

func TestInvalidFlagValue(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(nil, "list", "-g", "kitty")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	noStdin := func() ([]byte, error) { return nil, io.ErrUnexpectedEOF }
	stdin := func(s string) func() ([]byte, error) {
		return func() ([]byte, error) { return []byte(s), nil }
	}

	id, err := parseID([]string{"12"}, noStdin)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	id, err = parseID(nil, stdin("  34\t:img:/x/34.png:text:image/png 2 KiB\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(34), id)

	_, err = parseID(nil, noStdin)
	assert.ErrorIs(t, err, model.ErrIO)

	for _, bad := range []string{"", "-1", "twelve", "\t\n", "010", "0x0a", "1_0", "10.0", "+3"} {
		_, err = parseID(nil, stdin(bad))
		assert.ErrorIs(t, err, model.ErrInvalidIndex, "input %q", bad)
	}
}
