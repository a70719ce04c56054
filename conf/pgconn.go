package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetPgConnStrFromEnv builds the Postgres connection url. Outside localhost
// the password is read from the AWS Secrets Manager secret named by
// POSTGRES_PASSWORD_SECRET_NAME.
func GetPgConnStrFromEnv(ctx context.Context) (string, error) {
	host := os.Getenv("POSTGRES_HOST")
	var pw string
	if host == "localhost" || host == "" {
		pw = os.Getenv("POSTGRES_PW")
	} else {
		secretName := os.Getenv("POSTGRES_PASSWORD_SECRET_NAME")
		secretValue, err := getSecretFromAWS(ctx, secretName)
		if err != nil {
			return "", fmt.Errorf("failed to get postgres password from AWS: %w", err)
		}
		pw, err = parsePasswordSecret(secretValue)
		if err != nil {
			return "", err
		}
	}
	user := os.Getenv("POSTGRES_USER")
	port := os.Getenv("POSTGRES_PORT")
	db := os.Getenv("POSTGRES_DB")
	ssl := os.Getenv("POSTGRES_SSLMODE")

	return pgUrl(host, port, user, pw, db, ssl), nil
}

// pgUrl renders a postgres:// url, which both pgxpool and the migrator accept.
func pgUrl(host, port, user, pw, db, sslmode string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, pw),
		Host:   host,
		Path:   "/" + db,
	}
	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	}
	if sslmode != "" {
		u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()
	}
	return u.String()
}

func parsePasswordSecret(secretValue string) (string, error) {
	var secret struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
		return "", fmt.Errorf("failed to parse postgres password secret: %w", err)
	}
	return secret.Password, nil
}

func getSecretFromAWS(ctx context.Context, secretName string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	svc := secretsmanager.NewFromConfig(cfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(result.SecretString), nil
}
