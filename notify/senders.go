package notify

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	gomail "github.com/go-mail/mail/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Log.Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.String("to", msg.To.Address),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	SkipTLSVerify bool
}

type SMTPSender struct {
	from   mail.Address
	dialer *gomail.Dialer
}

func NewSMTPSender(conf SMTPConfig, from mail.Address) *SMTPSender {
	d := gomail.NewDialer(conf.Host, conf.Port, conf.User, conf.Password)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         conf.Host,
		InsecureSkipVerify: conf.SkipTLSVerify,
	}
	return &SMTPSender{from: from, dialer: d}
}

func (s *SMTPSender) message(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from.Address, s.from.Name)
	m.SetAddressHeader("To", msg.To.Address, msg.To.Name)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)
	return m
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := s.dialer.DialAndSend(s.message(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendGridSender struct {
	key  string
	from *sgmail.Email
}

func NewSendGridSender(apiKey string, from mail.Address) *SendGridSender {
	return &SendGridSender{
		key:  apiKey,
		from: sgmail.NewEmail(from.Name, from.Address),
	}
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	return m
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to call sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// SQSSender hands messages to a mail worker through a queue. Bodies are
// JSON, zstd-compressed and base64-encoded.
type SQSSender struct {
	client   *sqs.Client
	queueUrl string
}

func NewSQSSender(client *sqs.Client, queueUrl string) *SQSSender {
	return &SQSSender{client: client, queueUrl: queueUrl}
}

func encodeSqsBody(msg Message) (string, error) {
	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal notification: %w", err)
	}

	zstdEncoder, err := zstd.NewWriter(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer zstdEncoder.Close()

	compressed := zstdEncoder.EncodeAll(jsonMsg, make([]byte, 0, len(jsonMsg)))
	return base64.StdEncoding.EncodeToString(compressed), nil
}

func (s *SQSSender) Send(ctx context.Context, msg Message) error {
	encoded, err := encodeSqsBody(msg)
	if err != nil {
		return err
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueUrl),
		MessageBody: aws.String(encoded),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to notification queue: %w", err)
	}
	return nil
}
