package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/classic/internal/cipher"
	"github.com/RowanDark/classic/internal/logging"
)

const harbour = "The harbour was quiet in the early morning and the fishing boats rocked gently against the stone wall. " +
	"An old man sat on a wooden bench mending a net with careful hands while the gulls waited for scraps. " +
	"He had worked on the water for most of his life and he knew every rock and current along the coast. " +
	"When the sun rose over the hills the village began to wake and the smell of bread drifted down from the bakery. " +
	"Children ran to school along the narrow streets and their voices echoed between the white houses."

func newTestClient(t *testing.T) (*Client, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	logger, err := logging.NewAuditLogger("rpc-test", logging.WithoutStdout(), logging.WithWriter(buf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(NewServer(WithAuditLogger(logger), WithAnalysis(cipher.WithMaxBlockLength(50))))
	go func() {
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn), buf
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := testContext(t)

	tests := []struct {
		kind cipher.Kind
		key  string
		text string
		want string
	}{
		{cipher.KindCaesar, "D", "HELLO", "KHOOR"},
		{cipher.KindScytale, "3", "HELLOWORLD", "HLODEOR LWL "},
		{cipher.KindVigenere, "LEMON", "ATTACKATDAWN", "LXFOPVEFRNHR"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			ct, err := client.Encode(ctx, tt.kind, tt.key, tt.text)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if ct != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, ct)
			}
			pt, err := client.Decode(ctx, tt.kind, tt.key, ct)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if strings.TrimRight(pt, " ") != tt.text {
				t.Fatalf("expected %q, got %q", tt.text, pt)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := testContext(t)

	_, err := client.Encode(ctx, "enigma", "A", "text")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("unknown cipher: expected InvalidArgument, got %v", err)
	}

	_, err = client.Decode(ctx, cipher.KindVigenere, "L3MON", "text")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("invalid key: expected InvalidArgument, got %v", err)
	}

	_, _, err = client.Analyse(ctx, cipher.KindCaesar, "12345", "", 0)
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("degenerate input: expected FailedPrecondition, got %v", err)
	}

	_, err = client.Detect(ctx, "", "")
	if status.Code(err) != codes.FailedPrecondition {
		t.Errorf("empty detect: expected FailedPrecondition, got %v", err)
	}
}

func TestAnalyse(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := testContext(t)

	caesarCT, _ := cipher.Caesar{}.Encode(harbour, cipher.Letter('K'))
	scytaleCT, _ := cipher.Scytale{}.Encode(harbour, cipher.BlockLength(6))

	tests := []struct {
		name     string
		kind     cipher.Kind
		text     string
		wantKind cipher.Kind
		wantKey  string
	}{
		{"caesar", cipher.KindCaesar, caesarCT, cipher.KindCaesar, "K"},
		{"scytale", cipher.KindScytale, scytaleCT, cipher.KindScytale, "6"},
		{"auto", "", caesarCT, cipher.KindCaesar, "K"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, res, err := client.Analyse(ctx, tt.kind, tt.text, "en", 0)
			if err != nil {
				t.Fatalf("Analyse: %v", err)
			}
			if kind != tt.wantKind || res.Key.String() != tt.wantKey {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantKind, tt.wantKey, kind, res.Key)
			}
			if strings.TrimRight(res.Plaintext, " ") != harbour {
				t.Fatalf("plaintext not recovered: %.60q", res.Plaintext)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := testContext(t)

	ct, _ := cipher.Scytale{}.Encode(harbour, cipher.BlockLength(6))
	detections, err := client.Detect(ctx, ct, "en")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(detections) != 3 {
		t.Fatalf("expected 3 detections, got %d", len(detections))
	}
	if detections[0].Kind != cipher.KindScytale {
		t.Fatalf("expected scytale first, got %+v", detections)
	}
	if detections[0].Reasoning == "" || detections[0].Confidence <= detections[1].Confidence {
		t.Fatalf("unexpected detection details %+v", detections)
	}
}

func TestAuditEventsOmitKeys(t *testing.T) {
	client, buf := newTestClient(t)
	ctx := testContext(t)

	if _, err := client.Encode(ctx, cipher.KindVigenere, "LEMON", "ATTACKATDAWN"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := client.Encode(ctx, cipher.KindCaesar, "PASSWORD", "ATTACKATDAWN"); err == nil {
		t.Fatal("expected invalid caesar key to fail")
	}

	for _, secret := range []string{"LEMON", "PASSWORD", "ATTACKATDAWN"} {
		if strings.Contains(buf.String(), secret) {
			t.Fatalf("audit log leaked %q: %s", secret, buf.String())
		}
	}

	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	var events []logging.AuditEvent
	for dec.More() {
		var event logging.AuditEvent
		if err := dec.Decode(&event); err != nil {
			t.Fatalf("decode audit event: %v", err)
		}
		events = append(events, event)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	if events[0].Outcome != logging.OutcomeSuccess || events[1].Outcome != logging.OutcomeFailure {
		t.Fatalf("unexpected outcomes %+v", events)
	}
	if events[0].Metadata["transport"] != "grpc" {
		t.Fatalf("expected grpc transport metadata, got %+v", events[0].Metadata)
	}
}

func TestSplitMethod(t *testing.T) {
	service, method := splitMethod("/classic.v1.Cipher/Analyse")
	if service != ServiceName || method != "Analyse" {
		t.Fatalf("unexpected split %q %q", service, method)
	}
}

func TestAnalyseRequestCannotRaiseServerBounds(t *testing.T) {
	srv := NewServer(WithAnalysis(cipher.WithMaxBlockLength(5)))
	ct, _ := cipher.Scytale{}.Encode(harbour, cipher.BlockLength(6))
	in, err := structpb.NewStruct(map[string]interface{}{"cipher": "scytale", "text": ct, "max": 3000})
	if err != nil {
		t.Fatal(err)
	}

	out, err := srv.Analyse(testContext(t), in)
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if key := out.GetFields()["key"].GetStringValue(); key == "6" {
		t.Fatal("request max widened the configured block length bound")
	}
}
