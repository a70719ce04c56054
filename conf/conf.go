package conf

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coachhub/backend/subm/submdomain"
	"github.com/pelletier/go-toml/v2"
)

// ConfigPathEnv names the environment variable holding the optional TOML config file path.
const ConfigPathEnv = "COACHHUB_CONFIG"

type Config struct {
	Http   HttpConfig   `toml:"http"`
	Store  StoreConfig  `toml:"store"`
	Policy PolicyConfig `toml:"policy"`
	Notify NotifyConfig `toml:"notify"`
	S3     S3Config     `toml:"s3"`
}

type HttpConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	JwtKey         string   `toml:"jwt_key"`
}

const (
	StorePostgres = "postgres"
	StoreDynamoDb = "dynamodb"
	StoreMemory   = "memory"
)

type StoreConfig struct {
	Backend string `toml:"backend"`
	// TablePrefix is prepended to the DynamoDB table names.
	TablePrefix string `toml:"table_prefix"`
	Region      string `toml:"region"`
	// Endpoint overrides the DynamoDB endpoint, e.g. for dynamodb-local.
	Endpoint string `toml:"endpoint"`
}

type PolicyConfig struct {
	SlaHours              int `toml:"sla_hours"`
	FollowupWindowDays    int `toml:"followup_window_days"`
	FollowupResponseHours int `toml:"followup_response_hours"`
	DraftMaxAgeHours      int `toml:"draft_max_age_hours"`
}

const (
	NotifyLog      = "log"
	NotifySmtp     = "smtp"
	NotifySendGrid = "sendgrid"
	NotifySqs      = "sqs"
)

type NotifyConfig struct {
	Backend string `toml:"backend"`
	From    string `toml:"from"`
	// Inbox receives new submissions that have no intended coach.
	Inbox string `toml:"inbox"`

	SmtpHost          string `toml:"smtp_host"`
	SmtpPort          int    `toml:"smtp_port"`
	SmtpUser          string `toml:"smtp_user"`
	SmtpPassword      string `toml:"smtp_password"`
	SmtpSkipTLSVerify bool   `toml:"smtp_skip_tls_verify"`

	SendGridApiKey string `toml:"sendgrid_api_key"`

	SqsQueueUrl string `toml:"sqs_queue_url"`
	SqsRegion   string `toml:"sqs_region"`
}

type S3Config struct {
	Bucket            string `toml:"bucket"`
	Region            string `toml:"region"`
	PresignTTLMinutes int    `toml:"presign_ttl_minutes"`
}

func Default() Config {
	p := submdomain.DefaultPolicy()
	return Config{
		Http: HttpConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Store: StoreConfig{
			Backend: StorePostgres,
			Region:  "eu-central-1",
		},
		Policy: PolicyConfig{
			SlaHours:              int(p.SlaWindow / time.Hour),
			FollowupWindowDays:    int(p.FollowupWindow / (24 * time.Hour)),
			FollowupResponseHours: int(p.FollowupResponseWindow / time.Hour),
			DraftMaxAgeHours:      int(p.DraftMaxAge / time.Hour),
		},
		Notify: NotifyConfig{
			Backend:  NotifyLog,
			From:     "CoachHub <no-reply@coachhub.local>",
			SmtpPort: 587,
		},
		S3: S3Config{
			Region:            "eu-central-1",
			PresignTTLMinutes: 12 * 60,
		},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// COACHHUB_CONFIG if set, then environment variables.
func Load() (Config, error) {
	c := Default()
	if path := os.Getenv(ConfigPathEnv); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(content, &c); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("HTTP_ADDR", &c.Http.Addr)
	str("JWT_KEY", &c.Http.JwtKey)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		c.Http.AllowedOrigins = strings.Split(v, ",")
	}

	str("STORE_BACKEND", &c.Store.Backend)
	str("DYNAMODB_TABLE_PREFIX", &c.Store.TablePrefix)
	str("AWS_REGION", &c.Store.Region)
	str("DYNAMODB_ENDPOINT", &c.Store.Endpoint)

	str("NOTIFY_BACKEND", &c.Notify.Backend)
	str("NOTIFY_FROM", &c.Notify.From)
	str("NOTIFY_INBOX", &c.Notify.Inbox)
	str("SMTP_HOST", &c.Notify.SmtpHost)
	str("SMTP_USER", &c.Notify.SmtpUser)
	str("SMTP_PASSWORD", &c.Notify.SmtpPassword)
	str("SENDGRID_API_KEY", &c.Notify.SendGridApiKey)
	str("NOTIFY_SQS_QUEUE_URL", &c.Notify.SqsQueueUrl)
	str("NOTIFY_SQS_REGION", &c.Notify.SqsRegion)
	if v, ok := lookup("SMTP_SKIP_TLS_VERIFY"); ok && v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SMTP_SKIP_TLS_VERIFY must be a boolean: %w", err)
		}
		c.Notify.SmtpSkipTLSVerify = skip
	}

	str("S3_BUCKET", &c.S3.Bucket)
	str("S3_REGION", &c.S3.Region)

	return errors.Join(
		num("SMTP_PORT", &c.Notify.SmtpPort),
		num("S3_PRESIGN_TTL_MINUTES", &c.S3.PresignTTLMinutes),
		num("POLICY_SLA_HOURS", &c.Policy.SlaHours),
		num("POLICY_FOLLOWUP_WINDOW_DAYS", &c.Policy.FollowupWindowDays),
		num("POLICY_FOLLOWUP_RESPONSE_HOURS", &c.Policy.FollowupResponseHours),
		num("POLICY_DRAFT_MAX_AGE_HOURS", &c.Policy.DraftMaxAgeHours),
	)
}

func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case StorePostgres, StoreDynamoDb, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	switch c.Notify.Backend {
	case NotifyLog:
	case NotifySmtp:
		if c.Notify.SmtpHost == "" {
			errs = append(errs, errors.New("smtp notifications need smtp_host"))
		}
	case NotifySendGrid:
		if c.Notify.SendGridApiKey == "" {
			errs = append(errs, errors.New("sendgrid notifications need sendgrid_api_key"))
		}
	case NotifySqs:
		if c.Notify.SqsQueueUrl == "" {
			errs = append(errs, errors.New("sqs notifications need sqs_queue_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown notify backend %q", c.Notify.Backend))
	}
	if _, err := mail.ParseAddress(c.Notify.From); err != nil {
		errs = append(errs, fmt.Errorf("invalid notify from address: %w", err))
	}
	if c.Notify.Inbox != "" {
		if _, err := mail.ParseAddress(c.Notify.Inbox); err != nil {
			errs = append(errs, fmt.Errorf("invalid notify inbox address: %w", err))
		}
	}

	p := c.Policy
	if p.SlaHours <= 0 || p.FollowupWindowDays <= 0 || p.FollowupResponseHours <= 0 || p.DraftMaxAgeHours <= 0 {
		errs = append(errs, errors.New("policy durations must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) SubmPolicy() submdomain.Policy {
	return submdomain.Policy{
		SlaWindow:              time.Duration(c.Policy.SlaHours) * time.Hour,
		FollowupWindow:         time.Duration(c.Policy.FollowupWindowDays) * 24 * time.Hour,
		FollowupResponseWindow: time.Duration(c.Policy.FollowupResponseHours) * time.Hour,
		DraftMaxAge:            time.Duration(c.Policy.DraftMaxAgeHours) * time.Hour,
	}
}

func (c Config) PresignTTL() time.Duration {
	return time.Duration(c.S3.PresignTTLMinutes) * time.Minute
}

// FromAddress and InboxAddress assume Validate has passed.
func (c Config) FromAddress() mail.Address {
	a, _ := mail.ParseAddress(c.Notify.From)
	return *a
}

func (c Config) InboxAddress() *mail.Address {
	if c.Notify.Inbox == "" {
		return nil
	}
	a, _ := mail.ParseAddress(c.Notify.Inbox)
	return a
}
