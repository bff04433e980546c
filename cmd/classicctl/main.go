package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	env := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	switch args[0] {
	case "encode":
		return env.runKeyed("encode", args[1:])
	case "decode":
		return env.runKeyed("decode", args[1:])
	case "analyse", "analyze":
		return env.runAnalyse(args[1:])
	case "detect":
		return env.runDetect(args[1:])
	case "kinds":
		return env.runKinds(args[1:])
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: classicctl <command> [flags]

Commands:
  encode   -cipher <kind> -key <key>        encipher text
  decode   -cipher <kind> -key <key>        decipher text
  analyse  [-cipher <kind>|auto] [-max n]   recover plaintext without the key
  detect                                    rank the cipher kinds for a ciphertext
  kinds                                     list ciphers and operations

Text is read from -in or stdin. Pass -remote host:port to use a classicd
server instead of running locally.`)
}
