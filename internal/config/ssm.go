package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ParameterGetter is the subset of the SSM client used to read secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ ParameterGetter = (*ssm.Client)(nil)

// NewSSMClient builds an SSM client from the default AWS credential chain.
func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(awsCfg), nil
}

// ApplySSM overwrites secrets with SecureString parameters under SSMPrefix.
// Parameters that do not exist leave the current value in place.
// PRE: c.SSMPrefix is set
func (c *Config) ApplySSM(ctx context.Context, client ParameterGetter) error {
	secrets := []struct {
		name string
		dst  *string
	}{
		{"admin_password_hash", &c.Admin.PasswordHash},
		{"resend_api_key", &c.Email.ResendAPIKey},
		{"csrf_key", &c.Security.CSRFKey},
	}
	for _, s := range secrets {
		name := c.SSMPrefix + "/" + s.name
		value, err := getParameter(ctx, client, name)
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			slog.Warn("ssm_parameter_missing", "name", name)
			continue
		}
		if err != nil {
			return err
		}
		*s.dst = value
	}
	return nil
}

func getParameter(ctx context.Context, client ParameterGetter, name string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s is empty", name)
	}
	return *out.Parameter.Value, nil
}
