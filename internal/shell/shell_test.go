package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallsh/internal/config"
	"smallsh/internal/execute"
	"smallsh/internal/jobs"
	"smallsh/internal/term"
)

func TestMain(m *testing.M) {
	execute.Init()
	os.Exit(m.Run())
}

type harness struct {
	shell      *Shell
	out        bytes.Buffer
	errs       bytes.Buffer
	broadcasts int
}

func run(t *testing.T, input string) *harness {
	t.Helper()

	h := &harness{}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = devNull.Close() })

	jm := jobs.NewManager(int(devNull.Fd()))
	launcher, err := execute.NewLauncher(jm, execute.WithStdio(devNull, devNull, devNull))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.YieldMillis = 0
	cfg.ExitGraceMillis = 0

	term.SetOutput(&h.out)
	term.SetErrOutput(&h.errs)
	term.SetColorMode(term.ColorNever)
	t.Cleanup(term.Reset)

	h.shell = New(jm, launcher, cfg, WithInput(strings.NewReader(input)))
	h.shell.broadcast = func() error {
		h.broadcasts++
		return nil
	}

	h.shell.Run()
	return h
}

// chdirBack restores the working directory once the test is over.
func chdirBack(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func realPath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return resolved
}

// failingReader returns data and then a read error other than EOF.
type failingReader struct {
	data []byte
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, errors.New("terminal went away")
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReadErrorWarnsAndExits(t *testing.T) {
	h := &harness{}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devNull.Close()

	jm := jobs.NewManager(int(devNull.Fd()))
	launcher, err := execute.NewLauncher(jm, execute.WithStdio(devNull, devNull, devNull))
	require.NoError(t, err)
	term.SetOutput(&h.out)
	term.SetErrOutput(&h.errs)
	term.SetColorMode(term.ColorNever)
	t.Cleanup(term.Reset)

	cfg := config.Default()
	cfg.YieldMillis, cfg.ExitGraceMillis = 0, 0
	s := New(jm, launcher, cfg, WithInput(&failingReader{data: []byte("status\n")}))
	s.broadcast = func() error { return nil }

	s.Run()

	assert.Equal(t, ": Last foreground process status: exit value 0\n: \n", h.out.String())
	assert.Equal(t, "Warning. read input: terminal went away\n", h.errs.String())
}

func TestBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"cd", "status", "exit"} {
		assert.Contains(t, Builtins, name)
	}
}

func TestEndOfInputExits(t *testing.T) {
	h := run(t, "")

	assert.Equal(t, ": \n", h.out.String())
	assert.Equal(t, 1, h.broadcasts)
}

func TestBlankAndCommentLines(t *testing.T) {
	h := run(t, "\n# a comment\n     \n#echo nope > out &\n")

	assert.Equal(t, ": : : : : \n", h.out.String())
	assert.Empty(t, h.errs.String())
}

func TestStatusInitial(t *testing.T) {
	h := run(t, "status\n")

	assert.Equal(t, ": Last foreground process status: exit value 0\n: \n", h.out.String())
}

func TestStatusAfterForegroundCommand(t *testing.T) {
	h := run(t, "false\nstatus\ntrue\nstatus\n")

	assert.Equal(t, ": : Last foreground process status: exit value 1\n"+
		": : Last foreground process status: exit value 0\n: \n", h.out.String())
}

func TestStatusIgnoresRedirectionAndBackground(t *testing.T) {
	h := run(t, "status > /nonexistent/file &\n")

	assert.Equal(t, ": Last foreground process status: exit value 0\n: \n", h.out.String())
}

func TestExitStopsReading(t *testing.T) {
	h := run(t, "exit\nstatus\n")

	assert.Equal(t, ": ", h.out.String())
	assert.Equal(t, 1, h.broadcasts)
	assert.Equal(t, jobs.PhaseCleanup, h.shell.jm.Phase())
}

func TestExitInBackgroundStillExits(t *testing.T) {
	h := run(t, "exit &\nstatus\n")

	assert.Equal(t, ": ", h.out.String())
	assert.Equal(t, 1, h.broadcasts)
}

func TestCdToArgument(t *testing.T) {
	chdirBack(t)
	dir := t.TempDir()

	run(t, "cd "+dir+"\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, dir), realPath(t, wd))
}

func TestCdDefaultsToHome(t *testing.T) {
	chdirBack(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	run(t, "cd\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, home), realPath(t, wd))
}

func TestCdMissingDirectory(t *testing.T) {
	chdirBack(t)
	before, err := os.Getwd()
	require.NoError(t, err)

	h := run(t, "cd /nonexistent/smallsh/dir\n")

	assert.True(t, strings.HasPrefix(h.errs.String(), "Error. Path not found: "), h.errs.String())
	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCdAffectsChildren(t *testing.T) {
	chdirBack(t)
	dir := t.TempDir()

	run(t, "cd "+dir+"\ntouch created-here\n")

	assert.FileExists(t, filepath.Join(dir, "created-here"))
}

func TestBuiltinHelp(t *testing.T) {
	h := run(t, "cd --help\n")

	assert.Contains(t, h.out.String(), "usage: cd [DIR]")
	assert.Contains(t, h.out.String(), "--help")
	assert.Empty(t, h.errs.String())
}

func TestBuiltinUnknownOptionIsAnArgument(t *testing.T) {
	h := run(t, "status -x\n")

	assert.Equal(t, ": Last foreground process status: exit value 0\n: \n", h.out.String())
	assert.Empty(t, h.errs.String())
}

func TestExitWithDashArgument(t *testing.T) {
	h := run(t, "exit -1\nstatus\n")

	assert.Equal(t, ": ", h.out.String())
	assert.Empty(t, h.errs.String())
	assert.Equal(t, 1, h.broadcasts)
}

func TestExitHelpStillExits(t *testing.T) {
	h := run(t, "exit --help\nstatus\n")

	assert.Contains(t, h.out.String(), "usage: exit")
	assert.NotContains(t, h.out.String(), "Last foreground process status")
	assert.Equal(t, 1, h.broadcasts)
}

func TestCdIntoDashDirectory(t *testing.T) {
	chdirBack(t)
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "-x"), 0o755))
	require.NoError(t, os.Chdir(parent))

	h := run(t, "cd -x\n")

	assert.Empty(t, h.errs.String())
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, filepath.Join(parent, "-x")), realPath(t, wd))
}

func TestCdAfterDoubleDash(t *testing.T) {
	chdirBack(t)
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "-h"), 0o755))
	require.NoError(t, os.Chdir(parent))

	h := run(t, "cd -- -h\n")

	assert.NotContains(t, h.out.String(), "usage:")
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, realPath(t, filepath.Join(parent, "-h")), realPath(t, wd))
}

func TestExternalCommandWithRedirection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")

	h := run(t, "echo $$ > "+out+"\n")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []string{strconv.Itoa(os.Getpid())}, strings.Fields(string(data)))
	assert.Equal(t, ": : \n", h.out.String())
}

func TestForegroundOnlyModeRunsInForeground(t *testing.T) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	require.NoError(t, err)
	defer devNull.Close()

	var out bytes.Buffer
	jm := jobs.NewManager(int(devNull.Fd()))
	jm.Toggle()
	launcher, err := execute.NewLauncher(jm, execute.WithStdio(devNull, devNull, devNull))
	require.NoError(t, err)
	term.SetOutput(&out)
	t.Cleanup(term.Reset)

	cfg := config.Default()
	cfg.YieldMillis, cfg.ExitGraceMillis = 0, 0
	s := New(jm, launcher, cfg, WithInput(strings.NewReader("false &\nstatus\n")))
	s.broadcast = func() error { return nil }

	s.Run()

	assert.Equal(t, ": : Last foreground process status: exit value 1\n: \n", out.String())
}
