package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"

	"gofish/internal/domain/game"
)

const ngfGame = "Rated game\n19\nwhiteguy 3D*\nblackguy 2D*\nhttp://www.wbaduk.com/\n0\n0\n6\n20030413 [12:48]\n5\nWhite wins by resign!\n2\nPMAABPP\nPMABWDD\n"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.env")}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("gofish %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvert(t *testing.T) {
	in := writeFile(t, "game.ngf", ngfGame)
	out := filepath.Join(t.TempDir(), "game.sgf")

	run(t, "convert", in, out)

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "(;SZ[19]RU[Korean]KM[6.5]DT[2003-04-13]PW[whiteguy]PB[blackguy]RE[W+R];B[oo];W[cc])"
	if string(written) != want {
		t.Errorf("converted = %s\nwant        %s", written, want)
	}
}

func TestInfo(t *testing.T) {
	in := writeFile(t, "game.sgf", "(;SZ[9]PB[Lee]PW[Cho]RE[B+R];B[ee];W[gc])")

	var summaries []game.Game
	if err := yaml.Unmarshal([]byte(run(t, "info", in)), &summaries); err != nil {
		t.Fatalf("info output is not YAML: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries", len(summaries))
	}
	s := summaries[0]
	if s.Filename != "game.sgf" || s.Format != "SGF" || s.PlayerBlack != "Lee" || s.MoveCount != 2 || s.BoardSize != "9" {
		t.Errorf("summary = %+v", s)
	}
}

func TestDyer(t *testing.T) {
	in := writeFile(t, "game.sgf", "(;SZ[19];B[pd];W[dp])")
	missing := filepath.Join(t.TempDir(), "missing.sgf")

	out := run(t, "dyer", in, missing)
	if out != "????????????  "+in+"\n" {
		t.Errorf("dyer output = %q", out)
	}
}
