// Package secrets resolves named configuration values for sync invocations.
//
// Lookups are chained: the process environment (optionally seeded from a
// .env file with godotenv) is consulted first, then an optional AWS Secrets
// Manager secret holding a JSON object of name/value pairs. Values are never
// logged.
package secrets
