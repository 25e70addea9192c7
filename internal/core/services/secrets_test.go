package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/tablesync/internal/logger"
)

func TestSecretsProbe_Probe(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	secrets := &mockSecrets{values: map[string]string{
		"SUPABASE_URL":   "https://db.example",
		"AIRTABLE_TOKEN": "tok",
	}}

	got := NewSecretsProbe(secrets, nil).Probe(context.Background())

	assert.Equal(t, map[string]bool{
		"SUPABASE_SERVICE_ROLE_KEY": false,
		"SUPABASE_URL":              true,
		"AIRTABLE_BASE_ID":          false,
		"AIRTABLE_TOKEN":            true,
	}, got)
	assert.Contains(t, buf.String(), "Missing secret: SUPABASE_SERVICE_ROLE_KEY")
	assert.Contains(t, buf.String(), "Missing secret: AIRTABLE_BASE_ID")
	assert.NotContains(t, buf.String(), "tok", "values are never logged")
}

func TestSecretsProbe_CustomNames(t *testing.T) {
	secrets := &mockSecrets{values: map[string]string{"DATABASE_URL": "postgres://"}}

	got := NewSecretsProbe(secrets, []string{"DATABASE_URL"}).Probe(context.Background())

	assert.Equal(t, map[string]bool{"DATABASE_URL": true}, got)
}

func TestSecretsProbe_LookupErrorCountsAsMissing(t *testing.T) {
	secrets := &mockSecrets{err: errors.New("access denied")}

	got := NewSecretsProbe(secrets, []string{"AIRTABLE_TOKEN"}).Probe(context.Background())

	assert.Equal(t, map[string]bool{"AIRTABLE_TOKEN": false}, got)
}
