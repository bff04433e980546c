package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RowanDark/classic/internal/cipher"
	"github.com/RowanDark/classic/internal/rpc"
)

const harbour = "The harbour was quiet in the early morning and the fishing boats rocked gently against the stone wall. " +
	"An old man sat on a wooden bench mending a net with careful hands while the gulls waited for scraps. " +
	"He had worked on the water for most of his life and he knew every rock and current along the coast. " +
	"When the sun rose over the hills the village began to wake and the smell of bread drifted down from the bakery. " +
	"Children ran to school along the narrow streets and their voices echoed between the white houses."

func runWith(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	if code, _, stderr := runWith(t, ""); code != 2 || !strings.Contains(stderr, "Usage") {
		t.Fatalf("expected usage with exit 2, got %d %q", code, stderr)
	}
	if code, _, _ := runWith(t, "", "frobnicate"); code != 2 {
		t.Fatalf("expected exit 2 for unknown command, got %d", code)
	}
	if code, stdout, _ := runWith(t, "", "help"); code != 0 || !strings.Contains(stdout, "analyse") {
		t.Fatalf("expected help on stdout, got %d %q", code, stdout)
	}
}

func TestRunEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"caesar encode", []string{"encode", "-cipher", "caesar", "-key", "D"}, "HELLO\n", "KHOOR\n"},
		{"caesar decode shift", []string{"decode", "-cipher", "caesar", "-key", "3"}, "KHOOR", "HELLO\n"},
		{"scytale encode", []string{"encode", "-cipher", "scytale", "-key", "3"}, "HELLOWORLD\r\n", "HLODEOR LWL \n"},
		{"vigenere encode", []string{"encode", "-cipher", "Vigenere", "-key", "LEMON"}, "ATTACKATDAWN\n", "LXFOPVEFRNHR\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runWith(t, tt.stdin, tt.args...)
			if code != 0 {
				t.Fatalf("expected exit 0, got %d: %s", code, stderr)
			}
			if stdout != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestRunEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing cipher", []string{"encode", "-key", "A"}, 2},
		{"unknown cipher", []string{"encode", "-cipher", "enigma", "-key", "A"}, 2},
		{"missing key", []string{"decode", "-cipher", "caesar"}, 2},
		{"invalid key", []string{"decode", "-cipher", "vigenere", "-key", "L3MON"}, 1},
		{"missing file", []string{"encode", "-cipher", "caesar", "-key", "A", "-in", filepath.Join(t.TempDir(), "missing.txt")}, 1},
		{"bad flag", []string{"encode", "-bogus"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runWith(t, "text", tt.args...); code != tt.code {
				t.Fatalf("expected exit %d, got %d", tt.code, code)
			}
		})
	}
}

func TestRunAnalyseFromFile(t *testing.T) {
	ct, err := cipher.Caesar{}.Encode(harbour, cipher.Letter('K'))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "ct.txt")
	if err := os.WriteFile(path, []byte(ct+"\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	code, stdout, stderr := runWith(t, "", "analyse", "-in", path, "-json")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	var out analysisOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if out.Cipher != cipher.KindCaesar || out.Key != "K" || out.Plaintext != harbour {
		t.Fatalf("unexpected analysis %+v", out)
	}
}

func TestRunAnalyseScytaleText(t *testing.T) {
	ct, _ := cipher.Scytale{}.Encode(harbour, cipher.BlockLength(6))
	code, stdout, stderr := runWith(t, ct, "analyse", "-cipher", "scytale", "-max", "20")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "cipher: scytale\nkey: 6\n") {
		t.Fatalf("unexpected output %q", stdout)
	}
	if !strings.Contains(stdout, harbour) {
		t.Fatalf("plaintext missing from output")
	}
}

func TestRunAnalyseDegenerate(t *testing.T) {
	if code, _, stderr := runWith(t, "12345", "analyse", "-cipher", "caesar"); code != 1 || !strings.Contains(stderr, "degenerate") {
		t.Fatalf("expected degenerate input failure, got %d %q", code, stderr)
	}
}

func TestRunDetect(t *testing.T) {
	ct, _ := cipher.Caesar{}.Encode(harbour, cipher.Shift(10))
	code, stdout, stderr := runWith(t, ct, "detect")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[0], "CIPHER") || !strings.HasPrefix(lines[1], "caesar") {
		t.Fatalf("unexpected detect table %q", stdout)
	}
}

func TestRunKinds(t *testing.T) {
	code, stdout, _ := runWith(t, "", "kinds")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	for _, want := range []string{"caesar\n", "decode:\n  caesar_decode", "scytale_analyse"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in %q", want, stdout)
		}
	}
}

func TestRunRemote(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := rpc.NewGRPCServer(rpc.NewServer())
	go func() {
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)
	addr := lis.Addr().String()

	code, stdout, stderr := runWith(t, "ATTACKATDAWN", "encode", "-remote", addr, "-cipher", "vigenere", "-key", "LEMON")
	if code != 0 || stdout != "LXFOPVEFRNHR\n" {
		t.Fatalf("remote encode: exit %d stdout %q stderr %q", code, stdout, stderr)
	}

	ct, _ := cipher.Caesar{}.Encode(harbour, cipher.Letter('K'))
	code, stdout, stderr = runWith(t, ct, "analyse", "-remote", addr, "-json")
	if code != 0 {
		t.Fatalf("remote analyse: exit %d stderr %q", code, stderr)
	}
	var out analysisOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if out.Cipher != cipher.KindCaesar || out.Key != "K" {
		t.Fatalf("unexpected remote analysis %+v", out)
	}

	code, stdout, _ = runWith(t, ct, "detect", "-remote", addr, "-json")
	if code != 0 || !strings.Contains(stdout, `"kind":"caesar"`) {
		t.Fatalf("remote detect: exit %d stdout %q", code, stdout)
	}
}
