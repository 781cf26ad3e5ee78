package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/language"
	"github.com/nadzzz/babelbot/internal/message"
)

type fakeService struct {
	got *message.Message
	err error
}

func (f *fakeService) Handle(_ context.Context, msg *message.Message) (*message.Result, error) {
	f.got = msg
	if f.err != nil {
		return nil, f.err
	}
	return &message.Result{MessageID: msg.ID, SourceLanguage: "ru", TargetLanguage: msg.TargetLanguage, Translation: "Good morning"}, nil
}

func (f *fakeService) Detect(_ context.Context, text, hint string) langdetect.Decision {
	if text == "" {
		return langdetect.Decision{Rule: langdetect.RuleTooShort}
	}
	return langdetect.Decision{Language: "ru", OK: true, Rule: langdetect.RuleAgreement, Primary: "ru", Secondary: "ru"}
}

func (f *fakeService) Supported() *language.Set                       { return language.NewSet("ru", "en") }
func (f *fakeService) Target(context.Context, *message.Message) string { return "en" }
func (f *fakeService) CanSpeak(string) bool                            { return false }
func (f *fakeService) SetTarget(context.Context, int64, string) error  { return nil }

func startServer(t *testing.T, svc *fakeService) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())

	tr := New(0)
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, svc) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dialing bufconn: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})
	return NewClient(conn)
}

func TestTranslate(t *testing.T) {
	svc := &fakeService{}
	client := startServer(t, svc)

	res, err := client.Translate(context.Background(), &message.Message{
		ID:             "m-1",
		Text:           "Доброе утро",
		TargetLanguage: "en",
		UserID:         99,
	})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if res.MessageID != "m-1" || res.Translation != "Good morning" || res.TargetLanguage != "en" {
		t.Fatalf("result = %+v", res)
	}
	if svc.got.Source != "grpc" || svc.got.UserID != 99 || svc.got.Text != "Доброе утро" {
		t.Fatalf("message = %+v", svc.got)
	}
}

func TestTranslateAudioSurvivesCodec(t *testing.T) {
	svc := &fakeService{}
	client := startServer(t, svc)

	audio := []byte{0x4f, 0x67, 0x67, 0x53, 0x00, 0xff}
	if _, err := client.Translate(context.Background(), &message.Message{Audio: audio, ContentType: "audio/ogg", Source: "robot"}); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if string(svc.got.Audio) != string(audio) || svc.got.Source != "robot" {
		t.Fatalf("message = %+v", svc.got)
	}
}

func TestTranslateError(t *testing.T) {
	client := startServer(t, &fakeService{err: errors.New("boom")})

	_, err := client.Translate(context.Background(), &message.Message{Text: "hello"})
	if status.Code(err) != codes.Internal {
		t.Fatalf("err = %v, want Internal", err)
	}
}

func TestDetect(t *testing.T) {
	client := startServer(t, &fakeService{})

	d, err := client.Detect(context.Background(), "Привет, как дела?", "")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if !d.OK || d.Language != "ru" || d.Rule != langdetect.RuleAgreement {
		t.Fatalf("decision = %+v", d)
	}

	d, err = client.Detect(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.OK || d.Rule != langdetect.RuleTooShort {
		t.Fatalf("decision = %+v", d)
	}
}
