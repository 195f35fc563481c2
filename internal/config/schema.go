package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema rejects structurally bad files (wrong value kinds, negative
// limits) before unmarshalling coerces anything. Unknown sections pass
// through untouched.
const configSchema = `{
  "type": "object",
  "properties": {
    "app": {
      "type": "object",
      "properties": {
        "env": {"type": "string"},
        "log_level": {"type": "string"},
        "http_addr": {"type": "string"},
        "log_path": {"type": "string"}
      }
    },
    "trading": {
      "type": "object",
      "properties": {
        "enabled": {"type": "boolean"},
        "risk_fraction": {"type": "number", "exclusiveMinimum": 0, "maximum": 1},
        "daily_loss_limit_r": {"type": "number", "exclusiveMinimum": 0},
        "max_trades_per_day": {"type": "integer", "minimum": 1},
        "fallback_symbol": {"type": "string"}
      }
    },
    "broker": {
      "type": "object",
      "properties": {
        "api_key": {"type": "string"},
        "api_secret": {"type": "string"},
        "base_url": {"type": "string"},
        "timeout_seconds": {"type": "integer", "minimum": 0}
      }
    },
    "notify": {
      "type": "object",
      "properties": {
        "discord": {
          "type": "object",
          "properties": {
            "enabled": {"type": "boolean"},
            "webhook_url": {"type": "string"}
          }
        },
        "telegram": {
          "type": "object",
          "properties": {
            "enabled": {"type": "boolean"},
            "bot_token": {"type": "string"},
            "chat_id": {"type": "string"}
          }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", bytes.NewReader([]byte(configSchema))); err != nil {
		panic(fmt.Sprintf("config schema resource: %v", err))
	}
	return c.MustCompile("config.schema.json")
}

// validateSchema checks the raw settings map against the embedded schema. The
// map goes through a JSON round-trip so yaml-specific types normalize to what
// the validator expects.
func validateSchema(settings map[string]any) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("settings not representable as json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return compiledSchema.Validate(doc)
}
