package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/internal/maincmd"
)

func writeSrc(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.hinton")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunExecutesSourceFile(t *testing.T) {
	path := writeSrc(t, `print("hello");`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: bytes.NewReader(nil)}

	c := &maincmd.Cmd{}
	code := c.Run(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "hello")
	require.Empty(t, errOut.String())
}

func TestRunReportsRuntimeError(t *testing.T) {
	path := writeSrc(t, `let x = 1 / 0;`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: bytes.NewReader(nil)}

	c := &maincmd.Cmd{}
	code := c.Run(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitRuntime, code)
	require.NotEmpty(t, errOut.String())
}

func TestRunReportsCompileError(t *testing.T) {
	path := writeSrc(t, `let x = ;`)
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut, Stdin: bytes.NewReader(nil)}

	c := &maincmd.Cmd{}
	code := c.Run(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitCompile, code)
	require.Contains(t, errOut.String(), "Syntax")
}

func TestRunMissingFileIsCompileError(t *testing.T) {
	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	c := &maincmd.Cmd{}
	code := c.Run(context.Background(), stdio, []string{filepath.Join(t.TempDir(), "missing.hinton")})
	require.Equal(t, maincmd.ExitCompile, code)
	require.NotEmpty(t, errOut.String())
}

func TestTokenizePrintsOneLinePerToken(t *testing.T) {
	path := writeSrc(t, `let x = 1;`)
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &bytes.Buffer{}}

	c := &maincmd.Cmd{}
	code := c.Tokenize(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "let")
	require.Contains(t, out.String(), `"x"`)
}

func TestParsePrintsSyntaxTree(t *testing.T) {
	path := writeSrc(t, `let x = 1 + 2;`)
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &bytes.Buffer{}}

	c := &maincmd.Cmd{}
	code := c.Parse(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "Ident(x)")
}

func TestResolvePrintsSymbolTable(t *testing.T) {
	path := writeSrc(t, `let x = 1;`)
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &bytes.Buffer{}}

	c := &maincmd.Cmd{}
	code := c.Resolve(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "<module>")
	require.Contains(t, out.String(), "x")
}

func TestDisasmPrintsChunkAndFunctions(t *testing.T) {
	path := writeSrc(t, `
		func add(a, b) {
			return a + b;
		}
		let x = add(1, 2);
	`)
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &bytes.Buffer{}}

	c := &maincmd.Cmd{}
	code := c.Disasm(context.Background(), stdio, []string{path})
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "== <module> ==")
	require.Contains(t, out.String(), "== add ==")
}

func TestMainPrintsVersionAndExits(t *testing.T) {
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &bytes.Buffer{}}

	c := &maincmd.Cmd{BuildVersion: "1.2.3", BuildDate: "2026-01-01"}
	code := c.Main([]string{"hinton", "-v"}, stdio)
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "1.2.3")
}

func TestMainDefaultsToRunWithBarePath(t *testing.T) {
	path := writeSrc(t, `print("from main");`)
	var out bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &bytes.Buffer{}, Stdin: bytes.NewReader(nil)}

	c := &maincmd.Cmd{}
	code := c.Main([]string{"hinton", path}, stdio)
	require.Equal(t, maincmd.ExitSuccess, code)
	require.Contains(t, out.String(), "from main")
}
