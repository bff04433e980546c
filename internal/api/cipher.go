package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RowanDark/classic/internal/cipher"
	"github.com/RowanDark/classic/internal/logging"
	"github.com/RowanDark/classic/internal/observability/metrics"
)

// CipherRequest represents a request to encode or decode text with a known key.
// Key may be a JSON string or number.
type CipherRequest struct {
	Cipher string `json:"cipher"`
	Key    any    `json:"key"`
	Text   string `json:"text"`
}

// CipherResponse represents the result of an encode or decode.
type CipherResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AnalyseRequest represents a ciphertext-only attack. An empty cipher or
// "auto" lets the detector choose.
type AnalyseRequest struct {
	Cipher   string `json:"cipher,omitempty"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Max      int    `json:"max,omitempty"`
}

// AnalyseResponse represents the recovered plaintext and key.
type AnalyseResponse struct {
	Cipher    cipher.Kind `json:"cipher,omitempty"`
	Plaintext string      `json:"plaintext,omitempty"`
	Key       string      `json:"key,omitempty"`
	Score     float64     `json:"score"`
	Error     string      `json:"error,omitempty"`
}

// DetectRequest represents a request to rank the cipher kinds.
type DetectRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// DetectResponse represents the detection result
type DetectResponse struct {
	Detections []cipher.DetectionResult `json:"detections"`
	Error      string                   `json:"error,omitempty"`
}

// PipelineRequest represents a request to execute a chain of operations.
// Reverse runs the inverse chain instead.
type PipelineRequest struct {
	Input      string                   `json:"input"`
	Operations []cipher.OperationConfig `json:"operations"`
	Reverse    bool                     `json:"reverse,omitempty"`
}

// PipelineResponse represents the result of a pipeline execution
type PipelineResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// OperationInfo describes a registered operation.
type OperationInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Reversible  bool   `json:"reversible"`
}

// call tracks one request for metrics and the audit log.
type call struct {
	id        string
	event     logging.EventType
	operation string
	cipher    string
	inputLen  int
	start     time.Time
}

func (s *Server) begin(event logging.EventType, operation string) *call {
	return &call{
		id:        logging.NewRequestID(),
		event:     event,
		operation: operation,
		start:     time.Now(),
	}
}

func (s *Server) finish(c *call, status int, err error) {
	code := strconv.Itoa(status)
	metrics.RecordRequest("http", c.cipher, c.operation)
	metrics.ObserveRequestLatency("http", c.operation, code, time.Since(c.start))

	event := logging.AuditEvent{
		RequestID:   c.id,
		EventType:   c.event,
		Cipher:      c.cipher,
		InputLength: c.inputLen,
		Duration:    time.Since(c.start),
		Outcome:     logging.OutcomeSuccess,
		Metadata:    map[string]any{"transport": "http", "status": status},
	}
	if err != nil {
		metrics.RecordError("http", c.cipher, c.operation, code)
		event.Outcome = logging.OutcomeFailure
		event.Reason = err.Error()
		if status == http.StatusBadRequest {
			event.EventType = logging.EventRejected
		}
	}
	_ = s.logger.Emit(event)
}

// statusFor maps cipher errors onto HTTP status codes.
func statusFor(ctx context.Context, err error) int {
	switch {
	case ctx.Err() == context.Canceled:
		return http.StatusRequestTimeout
	case ctx.Err() == context.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case errors.Is(err, cipher.ErrUnknownKind):
		return http.StatusBadRequest
	}
	// Invalid keys and degenerate input are well-formed requests that cannot be served.
	return http.StatusUnprocessableEntity
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, c *call, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.finish(c, http.StatusBadRequest, err)
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	s.handleKeyed(w, r, logging.EventEncode, cipher.OperationTypeEncode)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	s.handleKeyed(w, r, logging.EventDecode, cipher.OperationTypeDecode)
}

// handleKeyed runs the <cipher>_encode or <cipher>_decode operation.
func (s *Server) handleKeyed(w http.ResponseWriter, r *http.Request, event logging.EventType, opType cipher.OperationType) {
	c := s.begin(event, string(opType))
	var req CipherRequest
	if !s.decode(w, r, c, &req) {
		return
	}
	c.cipher = req.Cipher
	c.inputLen = utf8.RuneCountInString(req.Text)

	kind, err := cipher.ParseKind(strings.ToLower(strings.TrimSpace(req.Cipher)))
	if err != nil {
		s.finish(c, http.StatusBadRequest, err)
		s.writeJSON(w, http.StatusBadRequest, CipherResponse{Error: err.Error()})
		return
	}
	op, exists := cipher.GetOperation(string(kind) + "_" + string(opType))
	if !exists {
		s.finish(c, http.StatusBadRequest, cipher.ErrUnknownKind)
		s.writeJSON(w, http.StatusBadRequest, CipherResponse{Error: "unknown operation for " + string(kind)})
		return
	}

	ctx := r.Context()
	out, err := op.Execute(ctx, []byte(req.Text), map[string]interface{}{"key": req.Key})
	if err != nil {
		status := statusFor(ctx, err)
		s.finish(c, status, err)
		s.writeJSON(w, status, CipherResponse{Error: err.Error()})
		return
	}
	s.finish(c, http.StatusOK, nil)
	s.writeJSON(w, http.StatusOK, CipherResponse{Output: string(out)})
}

func (s *Server) analyseOptions(kind cipher.Kind, language string, limit int) ([]cipher.AnalyseOption, error) {
	params := map[string]interface{}{}
	if strings.TrimSpace(language) != "" {
		params["language"] = language
	}
	if limit > 0 {
		params["max"] = limit
	}
	extra, err := cipher.AnalyseOptionsFromParams(kind, params)
	if err != nil {
		return nil, err
	}
	return cipher.Bounded(s.cfg.Analysis, extra...), nil
}

func (s *Server) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	c := s.begin(logging.EventAnalyse, string(cipher.OperationTypeAnalyse))
	var req AnalyseRequest
	if !s.decode(w, r, c, &req) {
		return
	}
	c.inputLen = utf8.RuneCountInString(req.Text)
	if req.Text == "" {
		s.finish(c, http.StatusBadRequest, errors.New("text field is required"))
		http.Error(w, "text field is required", http.StatusBadRequest)
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Cipher))
	var kind cipher.Kind
	if name != "" && name != "auto" {
		parsed, err := cipher.ParseKind(name)
		if err != nil {
			c.cipher = req.Cipher
			s.finish(c, http.StatusBadRequest, err)
			s.writeJSON(w, http.StatusBadRequest, AnalyseResponse{Error: err.Error()})
			return
		}
		kind = parsed
	}
	c.cipher = string(kind)

	opts, err := s.analyseOptions(kind, req.Language, req.Max)
	if err != nil {
		s.finish(c, http.StatusBadRequest, err)
		s.writeJSON(w, http.StatusBadRequest, AnalyseResponse{Error: err.Error()})
		return
	}

	ctx := r.Context()
	done := metrics.TrackAnalysis(string(kind))
	var res cipher.Result
	if kind == "" {
		kind, res, err = cipher.AnalyseAny(ctx, req.Text, opts...)
	} else {
		var codec cipher.Codec
		if codec, err = cipher.Lookup(kind); err == nil {
			res, err = codec.Analyse(req.Text, opts...)
		}
	}
	done()
	if err != nil {
		status := statusFor(ctx, err)
		s.finish(c, status, err)
		s.writeJSON(w, status, AnalyseResponse{Error: err.Error()})
		return
	}

	c.cipher = string(kind)
	s.finish(c, http.StatusOK, nil)
	s.writeJSON(w, http.StatusOK, AnalyseResponse{
		Cipher:    kind,
		Plaintext: res.Plaintext,
		Key:       res.Key.String(),
		Score:     res.Score,
	})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	c := s.begin(logging.EventDetect, "detect")
	var req DetectRequest
	if !s.decode(w, r, c, &req) {
		return
	}
	c.inputLen = utf8.RuneCountInString(req.Text)
	if req.Text == "" {
		s.finish(c, http.StatusBadRequest, errors.New("text field is required"))
		http.Error(w, "text field is required", http.StatusBadRequest)
		return
	}

	var profile *cipher.Profile
	if strings.TrimSpace(req.Language) != "" {
		profile = cipher.ProfileFor(req.Language)
	}
	ctx := r.Context()
	detections, err := cipher.NewDetector(profile).Detect(ctx, req.Text)
	if err != nil {
		status := statusFor(ctx, err)
		s.finish(c, status, err)
		s.writeJSON(w, status, DetectResponse{Detections: []cipher.DetectionResult{}, Error: err.Error()})
		return
	}

	c.cipher = string(detections[0].Kind)
	metrics.RecordDetection(c.cipher)
	s.finish(c, http.StatusOK, nil)
	s.writeJSON(w, http.StatusOK, DetectResponse{Detections: detections})
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	c := s.begin(logging.EventPipeline, "pipeline")
	var req PipelineRequest
	if !s.decode(w, r, c, &req) {
		return
	}
	c.inputLen = utf8.RuneCountInString(req.Input)
	if len(req.Operations) == 0 {
		s.finish(c, http.StatusBadRequest, errors.New("operations field is required"))
		http.Error(w, "operations field is required and must not be empty", http.StatusBadRequest)
		return
	}

	pipeline := &cipher.Pipeline{Operations: req.Operations, Reversible: req.Reverse}
	if req.Reverse {
		reversed, err := pipeline.Reverse()
		if err != nil {
			s.finish(c, http.StatusBadRequest, err)
			s.writeJSON(w, http.StatusBadRequest, PipelineResponse{Error: err.Error()})
			return
		}
		pipeline = reversed
	}

	// Analyse steps start from the server's language and bounds.
	ctx := cipher.WithAnalyseDefaults(r.Context(), s.cfg.Analysis...)
	out, err := pipeline.Execute(ctx, []byte(req.Input))
	if err != nil {
		status := statusFor(ctx, err)
		if strings.Contains(err.Error(), "unknown operation") {
			status = http.StatusBadRequest
		}
		s.finish(c, status, err)
		s.writeJSON(w, status, PipelineResponse{Error: err.Error()})
		return
	}
	s.finish(c, http.StatusOK, nil)
	s.writeJSON(w, http.StatusOK, PipelineResponse{Output: string(out)})
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ops := cipher.ListOperations()
	infos := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		_, reversible := op.Reverse()
		infos = append(infos, OperationInfo{
			Name:        op.Name(),
			Type:        string(op.Type()),
			Description: op.Description(),
			Reversible:  reversible,
		})
	}

	byType := make(map[cipher.OperationType][]string, 3)
	for _, opType := range []cipher.OperationType{cipher.OperationTypeEncode, cipher.OperationTypeDecode, cipher.OperationTypeAnalyse} {
		for _, op := range cipher.ListOperationsByType(opType) {
			byType[opType] = append(byType[opType], op.Name())
		}
	}

	languages := make([]string, 0, len(cipher.Profiles()))
	for _, p := range cipher.Profiles() {
		languages = append(languages, p.Tag.String())
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"kinds":      cipher.Kinds(),
		"operations": infos,
		"by_type":    byType,
		"languages":  languages,
	})
}
