package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// DefaultCacheTTL is how long a fetched secret is reused.
const DefaultCacheTTL = 5 * time.Minute

// ErrSecretNotFound indicates the configured secret does not exist.
var ErrSecretNotFound = errors.New("secrets: secret not found")

// ManagerAPI is the subset of the Secrets Manager client used here.
type ManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// NewManagerClient builds a client from the default AWS config chain.
// An empty region keeps the region from the environment or profile.
func NewManagerClient(ctx context.Context, region string) (*secretsmanager.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// AWSSecret looks values up in one JSON secret.
// The secret is fetched on first use and cached for the TTL.
type AWSSecret struct {
	client   ManagerAPI
	secretID string
	ttl      time.Duration
	now      func() time.Time

	mu        sync.Mutex
	values    map[string]string
	fetchedAt time.Time
}

// Ensure AWSSecret implements the interface.
var _ driven.SecretLookup = (*AWSSecret)(nil)

// NewAWSSecret creates a lookup over secretID. A zero ttl uses DefaultCacheTTL.
func NewAWSSecret(client ManagerAPI, secretID string, ttl time.Duration) *AWSSecret {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &AWSSecret{client: client, secretID: secretID, ttl: ttl, now: time.Now}
}

// Lookup returns the named value from the secret. Empty counts as unset.
func (s *AWSSecret) Lookup(ctx context.Context, name string) (string, bool, error) {
	values, err := s.load(ctx)
	if err != nil {
		return "", false, err
	}
	v := values[name]
	return v, v != "", nil
}

// load returns the cached values, fetching them when stale.
func (s *AWSSecret) load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.values, nil
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, s.secretID)
		}
		return nil, fmt.Errorf("get secret %s: %w", s.secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", s.secretID)
	}

	values, err := decodeSecret(*out.SecretString)
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w", s.secretID, err)
	}

	s.values = values
	s.fetchedAt = s.now()
	return values, nil
}

// decodeSecret parses a JSON object, keeping string values and the JSON
// text of any other scalar.
func decodeSecret(raw string) (map[string]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}

	values := make(map[string]string, len(obj))
	for k, v := range obj {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			values[k] = s
			continue
		}
		if string(v) == "null" {
			continue
		}
		values[k] = string(v)
	}
	return values, nil
}
