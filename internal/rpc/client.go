package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/classic/internal/cipher"
)

// Client calls a remote classic.v1.Cipher service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode enciphers text remotely.
func (c *Client) Encode(ctx context.Context, kind cipher.Kind, key, text string) (string, error) {
	out, err := c.invoke(ctx, "Encode", map[string]interface{}{"cipher": string(kind), "key": key, "text": text})
	if err != nil {
		return "", err
	}
	return stringField(out, "output"), nil
}

// Decode deciphers text remotely.
func (c *Client) Decode(ctx context.Context, kind cipher.Kind, key, text string) (string, error) {
	out, err := c.invoke(ctx, "Decode", map[string]interface{}{"cipher": string(kind), "key": key, "text": text})
	if err != nil {
		return "", err
	}
	return stringField(out, "output"), nil
}

// Analyse runs a ciphertext-only attack remotely. An empty kind lets the
// server detect the cipher; a zero limit keeps the server default.
func (c *Client) Analyse(ctx context.Context, kind cipher.Kind, text, language string, limit int) (cipher.Kind, cipher.Result, error) {
	req := map[string]interface{}{"cipher": string(kind), "text": text}
	if language != "" {
		req["language"] = language
	}
	if limit > 0 {
		req["max"] = limit
	}
	out, err := c.invoke(ctx, "Analyse", req)
	if err != nil {
		return "", cipher.Result{}, err
	}
	got := cipher.Kind(stringField(out, "cipher"))
	key, err := cipher.ParseKey(got, stringField(out, "key"))
	if err != nil {
		return "", cipher.Result{}, fmt.Errorf("server returned unusable key: %w", err)
	}
	return got, cipher.Result{
		Plaintext: stringField(out, "plaintext"),
		Key:       key,
		Score:     out.GetFields()["score"].GetNumberValue(),
	}, nil
}

// Detect ranks the cipher kinds remotely.
func (c *Client) Detect(ctx context.Context, text, language string) ([]cipher.DetectionResult, error) {
	req := map[string]interface{}{"text": text}
	if language != "" {
		req["language"] = language
	}
	out, err := c.invoke(ctx, "Detect", req)
	if err != nil {
		return nil, err
	}
	values := out.GetFields()["detections"].GetListValue().GetValues()
	results := make([]cipher.DetectionResult, 0, len(values))
	for _, v := range values {
		fields := v.GetStructValue()
		results = append(results, cipher.DetectionResult{
			Kind:       cipher.Kind(stringField(fields, "kind")),
			Confidence: fields.GetFields()["confidence"].GetNumberValue(),
			Reasoning:  stringField(fields, "reasoning"),
		})
	}
	return results, nil
}
