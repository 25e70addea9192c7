package file

import (
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// Defaults used when the config file leaves a value unset.
const (
	DefaultAddr              = ":8080"
	DefaultSyncTimeout       = 5 * time.Minute
	DefaultSinkDriver        = "postgrest"
	DefaultRequestsPerSecond = 5.0
	DefaultRequestTimeout    = 30 * time.Second
	DefaultEnvFile           = ".env"
)

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        DefaultAddr,
			SyncTimeout: Duration(DefaultSyncTimeout),
		},
		Source: SourceConfig{
			RequestsPerSecond: DefaultRequestsPerSecond,
			RequestTimeout:    Duration(DefaultRequestTimeout),
		},
		Sink: SinkConfig{
			Driver: DefaultSinkDriver,
		},
		Secrets: SecretsConfig{
			EnvFile: DefaultEnvFile,
		},
		Tables: BuiltinMappings(),
	}
}

// BuiltinMappings returns the two deployed sync variants.
func BuiltinMappings() []domain.TableMapping {
	return []domain.TableMapping{phase1Mapping(), phase2Mapping()}
}

// phase1Mapping syncs applicant records keyed by airtable_record_id.
func phase1Mapping() domain.TableMapping {
	return domain.TableMapping{
		Name:             "phase-1",
		BaseID:           "apptHDacZ3rtgaFur",
		SourceTable:      "Phase 1, Table 1",
		SinkTable:        "phase_1_table_1",
		ConflictKey:      "airtable_record_id",
		TimestampColumn:  "updated_at",
		IgnoreDuplicates: false,
		Columns: []domain.ColumnMapping{
			{Column: "full_name", Field: "Full Name", Default: ""},
			{Column: "email_address", Field: "Email Address", Default: ""},
			{Column: "linkedin_profile", Field: "LinkedIn Profile"},
			{Column: "role", Field: "Role"},
			{Column: "experience", Field: "Experience"},
			{Column: "location_preference", Field: "Location Preference"},
			{Column: "cover_letter", Field: "Cover Letter"},
			{Column: "technical_skills", Field: "Technical Skills"},
			{Column: "challenging_technical_project", Field: "Challenging Technical Project"},
			{Column: "status", Field: "Status", Default: "pending"},
		},
	}
}

// phase2Mapping syncs interview scheduling records keyed by airtable_id.
func phase2Mapping() domain.TableMapping {
	return domain.TableMapping{
		Name:        "phase-2",
		BaseIDKey:   "AIRTABLE_BASE_ID",
		SourceTable: "Phase 2, Table 2",
		SinkTable:   "phase_2_table_2",
		ConflictKey: "airtable_id",
		Columns: []domain.ColumnMapping{
			{Column: "first_name", Field: "first name"},
			{Column: "last_name", Field: "last name"},
			{Column: "phone_number", Field: "phone number"},
			{Column: "email_address", Field: "email address"},
			{Column: "time_requested_for_interview", Field: "time requested for the interview"},
			{Column: "interview_summary", Field: "interview summary"},
		},
	}
}
