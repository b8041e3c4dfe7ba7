package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// tables describes the database for ent's migrator. Timestamps are unix
// milliseconds. A fresh set is built per Open because the migrator links
// columns to their indexes in place.
func tables() []*schema.Table {
	kvColumns := []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	kv := &schema.Table{
		Name:       tableKV,
		Columns:    kvColumns,
		PrimaryKey: []*schema.Column{kvColumns[0], kvColumns[1]},
	}

	userColumns := []*schema.Column{
		{Name: "username", Type: field.TypeString},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeInt64},
	}
	users := &schema.Table{
		Name:       tableUsers,
		Columns:    userColumns,
		PrimaryKey: []*schema.Column{userColumns[0]},
	}

	backupColumns := []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "data", Type: field.TypeBytes},
	}
	backups := &schema.Table{
		Name:       tableBackups,
		Columns:    backupColumns,
		PrimaryKey: []*schema.Column{backupColumns[0]},
		Indexes: []*schema.Index{{
			Name:    "backups_user_name",
			Columns: []*schema.Column{backupColumns[1], backupColumns[2], backupColumns[3]},
		}},
	}

	eventColumns := []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt64, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt64, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool, Default: false},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Default: ""},
		{Name: "response_body", Type: field.TypeString, Default: ""},
	}
	events := &schema.Table{
		Name:       tableLLMEvents,
		Columns:    eventColumns,
		PrimaryKey: []*schema.Column{eventColumns[0]},
		Indexes: []*schema.Index{{
			Name:    "llm_request_events_sequence",
			Columns: []*schema.Column{eventColumns[1]},
		}},
	}

	return []*schema.Table{kv, users, backups, events}
}
