// Package postgrest implements the "postgrest" sink driver, writing to a
// Supabase-style PostgREST endpoint.
//
// An upsert request becomes one call:
//
//	POST {SUPABASE_URL}/rest/v1/{table}?on_conflict={key}
//	Prefer: resolution=merge-duplicates
//
// authenticated with the service-role key both as the apikey header and
// as a bearer token. With IgnoreDuplicates the Prefer header asks for
// resolution=ignore-duplicates instead.
package postgrest
