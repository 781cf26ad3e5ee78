package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/message"
)

// Client calls babelbot.v1.Translator over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Translate runs msg through the remote pipeline.
func (c *Client) Translate(ctx context.Context, msg *message.Message, opts ...grpc.CallOption) (*message.Result, error) {
	out := new(message.Result)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, translateMethod, msg, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Detect runs remote language arbitration.
func (c *Client) Detect(ctx context.Context, text, hint string, opts ...grpc.CallOption) (*langdetect.Decision, error) {
	out := new(langdetect.Decision)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, detectMethod, &DetectRequest{Text: text, Hint: hint}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
