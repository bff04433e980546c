package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/RowanDark/classic/internal/config"
	"github.com/RowanDark/classic/internal/rpc"
)

// common holds the flags shared by every text-processing command.
type common struct {
	in         *string
	remote     *string
	configPath *string
	timeout    *time.Duration
}

func addCommon(fs *flag.FlagSet) common {
	return common{
		in:         fs.String("in", "", "read text from this file instead of stdin"),
		remote:     fs.String("remote", "", "classicd address (host:port); empty runs locally"),
		configPath: fs.String("config", "", "configuration file (default ./classic.yml when present)"),
		timeout:    fs.Duration("timeout", 30*time.Second, "deadline for the whole command"),
	}
}

// readInput returns the text to process. A single trailing line break is
// dropped so that piped input does not carry the shell's newline into the
// cipher.
func (c *cli) readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if strings.TrimSpace(path) != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(c.stdin)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

func (c *cli) loadConfig(path string) (config.Config, bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "load config: %v\n", err)
		return config.Config{}, false
	}
	return cfg, true
}

// dial connects to a remote classicd. The returned closer must be called.
func dial(addr string) (*rpc.Client, func(), error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return rpc.NewClient(conn), func() { _ = conn.Close() }, nil
}

func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d)
}
