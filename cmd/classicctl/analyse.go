package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/RowanDark/classic/internal/cipher"
)

type analysisOutput struct {
	Cipher    cipher.Kind `json:"cipher"`
	Key       string      `json:"key"`
	Score     float64     `json:"score"`
	Plaintext string      `json:"plaintext"`
}

func (c *cli) runAnalyse(args []string) int {
	fs := flag.NewFlagSet("analyse", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	kindName := fs.String("cipher", "auto", "cipher kind to attack, or auto to detect it")
	lang := fs.String("lang", "", "language profile (BCP 47 tag); defaults to the configured language")
	limit := fs.Int("max", 0, "search bound: block count for scytale, key length for vigenere")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	flags := addCommon(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var kind cipher.Kind
	if name := strings.ToLower(strings.TrimSpace(*kindName)); name != "" && name != "auto" {
		parsed, err := cipher.ParseKind(name)
		if err != nil {
			fmt.Fprintf(c.stderr, "--cipher: %v\n", err)
			return 2
		}
		kind = parsed
	}
	cfg, ok := c.loadConfig(*flags.configPath)
	if !ok {
		return 1
	}
	text, err := c.readInput(*flags.in)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	ctx, cancel := withTimeout(*flags.timeout)
	defer cancel()

	var (
		got cipher.Kind
		res cipher.Result
	)
	if remote := strings.TrimSpace(*flags.remote); remote != "" {
		client, closeConn, err := dial(remote)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
		defer closeConn()
		got, res, err = client.Analyse(ctx, kind, text, *lang, *limit)
		if err != nil {
			fmt.Fprintf(c.stderr, "analyse failed: %v\n", err)
			return 1
		}
	} else {
		opts := cfg.Analysis.AnalyseOptions()
		if strings.TrimSpace(*lang) != "" {
			opts = append(opts, cipher.WithProfile(cipher.ProfileFor(*lang)))
		}
		opts = append(opts, cipher.WithMaxBlockLength(*limit), cipher.WithMaxKeyLength(*limit))
		if kind == "" {
			got, res, err = cipher.AnalyseAny(ctx, text, opts...)
		} else {
			got = kind
			var codec cipher.Codec
			if codec, err = cipher.Lookup(kind); err == nil {
				res, err = codec.Analyse(text, opts...)
			}
		}
		if err != nil {
			fmt.Fprintf(c.stderr, "analyse failed: %v\n", err)
			return 1
		}
	}

	out := analysisOutput{Cipher: got, Key: res.Key.String(), Score: res.Score, Plaintext: res.Plaintext}
	if *asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(c.stderr, "encode result: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(c.stdout, "cipher: %s\nkey: %s\nscore: %.4f\n\n%s\n", out.Cipher, out.Key, out.Score, out.Plaintext)
	return 0
}

func (c *cli) runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	lang := fs.String("lang", "", "language profile (BCP 47 tag)")
	asJSON := fs.Bool("json", false, "print the ranking as JSON")
	flags := addCommon(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	text, err := c.readInput(*flags.in)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}

	ctx, cancel := withTimeout(*flags.timeout)
	defer cancel()

	var detections []cipher.DetectionResult
	if remote := strings.TrimSpace(*flags.remote); remote != "" {
		client, closeConn, err := dial(remote)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
		defer closeConn()
		detections, err = client.Detect(ctx, text, *lang)
		if err != nil {
			fmt.Fprintf(c.stderr, "detect failed: %v\n", err)
			return 1
		}
	} else {
		var profile *cipher.Profile
		if strings.TrimSpace(*lang) != "" {
			profile = cipher.ProfileFor(*lang)
		}
		detections, err = cipher.NewDetector(profile).Detect(ctx, text)
		if err != nil {
			fmt.Fprintf(c.stderr, "detect failed: %v\n", err)
			return 1
		}
	}

	if *asJSON {
		if err := json.NewEncoder(c.stdout).Encode(detections); err != nil {
			fmt.Fprintf(c.stderr, "encode result: %v\n", err)
			return 1
		}
		return 0
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CIPHER\tCONFIDENCE\tREASONING")
	for _, d := range detections {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", d.Kind, d.Confidence, d.Reasoning)
	}
	_ = tw.Flush()
	return 0
}

var operationTypes = []cipher.OperationType{
	cipher.OperationTypeEncode,
	cipher.OperationTypeDecode,
	cipher.OperationTypeAnalyse,
}

func (c *cli) runKinds(args []string) int {
	fs := flag.NewFlagSet("kinds", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	for _, kind := range cipher.Kinds() {
		fmt.Fprintln(c.stdout, kind)
	}
	for _, opType := range operationTypes {
		fmt.Fprintf(c.stdout, "%s:\n", opType)
		for _, op := range cipher.ListOperationsByType(opType) {
			_, reversible := op.Reverse()
			fmt.Fprintf(c.stdout, "  %-18s reversible=%t\n", op.Name(), reversible)
		}
	}
	return 0
}
