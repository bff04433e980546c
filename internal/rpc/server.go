package rpc

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/classic/internal/cipher"
	"github.com/RowanDark/classic/internal/logging"
	"github.com/RowanDark/classic/internal/observability/metrics"
)

// Server implements CipherServer on top of the cipher registry.
type Server struct {
	logger   *logging.AuditLogger
	analysis []cipher.AnalyseOption
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuditLogger records one audit event per call.
func WithAuditLogger(logger *logging.AuditLogger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAnalysis sets the default analyser options.
func WithAnalysis(opts ...cipher.AnalyseOption) ServerOption {
	return func(s *Server) {
		s.analysis = append(s.analysis, opts...)
	}
}

// NewServer constructs the Cipher service.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGRPCServer returns a gRPC server with the Cipher service and the
// metrics interceptor installed.
func NewGRPCServer(srv CipherServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryServerInterceptor())}, opts...)
	gs := grpc.NewServer(opts...)
	RegisterCipherServer(gs, srv)
	return gs
}

// codeFor maps cipher errors onto gRPC status codes.
func codeFor(ctx context.Context, err error) codes.Code {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return codes.Canceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, cipher.ErrUnknownKind), errors.Is(err, cipher.ErrInvalidKey):
		return codes.InvalidArgument
	case errors.Is(err, cipher.ErrDegenerateInput):
		return codes.FailedPrecondition
	}
	return codes.InvalidArgument
}

func (s *Server) audit(event logging.EventType, kind string, text string, start time.Time, err error) {
	ev := logging.AuditEvent{
		RequestID:   logging.NewRequestID(),
		EventType:   event,
		Cipher:      kind,
		InputLength: utf8.RuneCountInString(text),
		Duration:    time.Since(start),
		Outcome:     logging.OutcomeSuccess,
		Metadata:    map[string]any{"transport": "grpc"},
	}
	if err != nil {
		ev.Outcome = logging.OutcomeFailure
		ev.Reason = err.Error()
	}
	_ = s.logger.Emit(ev)
}

func (s *Server) fail(ctx context.Context, err error) error {
	return status.Error(codeFor(ctx, err), err.Error())
}

func stringField(in *structpb.Struct, name string) string {
	if v, ok := in.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

func (s *Server) keyed(ctx context.Context, in *structpb.Struct, event logging.EventType, opType cipher.OperationType) (*structpb.Struct, error) {
	start := time.Now()
	name := strings.ToLower(strings.TrimSpace(stringField(in, "cipher")))
	text := stringField(in, "text")

	out, err := func() (string, error) {
		kind, err := cipher.ParseKind(name)
		if err != nil {
			return "", err
		}
		op, ok := cipher.GetOperation(string(kind) + "_" + string(opType))
		if !ok {
			return "", cipher.ErrUnknownKind
		}
		var key interface{}
		if v, ok := in.GetFields()["key"]; ok {
			key = v.AsInterface()
		}
		res, err := op.Execute(ctx, []byte(text), map[string]interface{}{"key": key})
		return string(res), err
	}()
	s.audit(event, name, text, start, err)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return structpb.NewStruct(map[string]interface{}{"output": out})
}

// Encode enciphers {cipher, key, text} and returns {output}.
func (s *Server) Encode(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.keyed(ctx, in, logging.EventEncode, cipher.OperationTypeEncode)
}

// Decode deciphers {cipher, key, text} and returns {output}.
func (s *Server) Decode(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.keyed(ctx, in, logging.EventDecode, cipher.OperationTypeDecode)
}

// Analyse attacks {cipher, text, language, max} and returns
// {cipher, plaintext, key, score}. An empty cipher or "auto" runs detection
// first.
func (s *Server) Analyse(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	name := strings.ToLower(strings.TrimSpace(stringField(in, "cipher")))
	text := stringField(in, "text")

	var kind cipher.Kind
	res, err := func() (cipher.Result, error) {
		if name != "" && name != "auto" {
			parsed, err := cipher.ParseKind(name)
			if err != nil {
				return cipher.Result{}, err
			}
			kind = parsed
		}
		params := map[string]interface{}{}
		for _, field := range []string{"language", "max"} {
			if v, ok := in.GetFields()[field]; ok {
				params[field] = v.AsInterface()
			}
		}
		extra, err := cipher.AnalyseOptionsFromParams(kind, params)
		if err != nil {
			return cipher.Result{}, err
		}
		opts := cipher.Bounded(s.analysis, extra...)

		done := metrics.TrackAnalysis(string(kind))
		defer done()
		if kind == "" {
			var res cipher.Result
			kind, res, err = cipher.AnalyseAny(ctx, text, opts...)
			return res, err
		}
		codec, err := cipher.Lookup(kind)
		if err != nil {
			return cipher.Result{}, err
		}
		return codec.Analyse(text, opts...)
	}()
	s.audit(logging.EventAnalyse, string(kind), text, start, err)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"cipher":    string(kind),
		"plaintext": res.Plaintext,
		"key":       res.Key.String(),
		"score":     res.Score,
	})
}

// Detect ranks the cipher kinds for {text, language} and returns
// {detections: [{kind, confidence, reasoning}]}.
func (s *Server) Detect(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	text := stringField(in, "text")

	var profile *cipher.Profile
	if lang := stringField(in, "language"); strings.TrimSpace(lang) != "" {
		profile = cipher.ProfileFor(lang)
	}
	detections, err := cipher.NewDetector(profile).Detect(ctx, text)
	top := ""
	if err == nil {
		top = string(detections[0].Kind)
		metrics.RecordDetection(top)
	}
	s.audit(logging.EventDetect, top, text, start, err)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	list := make([]interface{}, 0, len(detections))
	for _, d := range detections {
		list = append(list, map[string]interface{}{
			"kind":       string(d.Kind),
			"confidence": d.Confidence,
			"reasoning":  d.Reasoning,
		})
	}
	return structpb.NewStruct(map[string]interface{}{"detections": list})
}
