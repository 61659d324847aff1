package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient exposes the service-role PostgREST client.
type SupabaseClient interface {
	Initialize() error
	Configured() bool
	DB() *supabase.Client
}
