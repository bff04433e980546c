package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/RowanDark/classic/internal/cipher"
)

func (c *cli) runKeyed(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	kindName := fs.String("cipher", "", "cipher kind: caesar, scytale or vigenere")
	keyText := fs.String("key", "", "cipher key (letter or shift, block length, keyword)")
	flags := addCommon(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	kind, err := cipher.ParseKind(strings.ToLower(strings.TrimSpace(*kindName)))
	if err != nil {
		fmt.Fprintf(c.stderr, "--cipher: %v\n", err)
		return 2
	}
	if strings.TrimSpace(*keyText) == "" {
		fmt.Fprintln(c.stderr, "--key must be provided")
		return 2
	}
	text, err := c.readInput(*flags.in)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	ctx, cancel := withTimeout(*flags.timeout)
	defer cancel()

	var out string
	if remote := strings.TrimSpace(*flags.remote); remote != "" {
		out, err = keyedRemote(ctx, remote, name, kind, *keyText, text)
	} else {
		out, err = keyedLocal(kind, name, *keyText, text)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "%s failed: %v\n", name, err)
		return 1
	}
	fmt.Fprintln(c.stdout, out)
	return 0
}

func keyedLocal(kind cipher.Kind, name, keyText, text string) (string, error) {
	key, err := cipher.ParseKey(kind, keyText)
	if err != nil {
		return "", err
	}
	codec, err := cipher.Lookup(kind)
	if err != nil {
		return "", err
	}
	if name == "encode" {
		return codec.Encode(text, key)
	}
	return codec.Decode(text, key)
}

func keyedRemote(ctx context.Context, addr, name string, kind cipher.Kind, keyText, text string) (string, error) {
	client, closeConn, err := dial(addr)
	if err != nil {
		return "", err
	}
	defer closeConn()
	if name == "encode" {
		return client.Encode(ctx, kind, keyText, text)
	}
	return client.Decode(ctx, kind, keyText, text)
}
