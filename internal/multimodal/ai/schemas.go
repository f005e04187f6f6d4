package ai

import "github.com/voyago/travel-planner-backend/internal/pkg/llmjson"

// Model output is free-form; every response is validated against one of
// these schemas before use. On validation failure the caller substitutes
// the documented fallback instead of surfacing a parse error.

var imageAnalysisSchema = llmjson.MustCompileSchema("image_analysis.json", `{
	"type": "object",
	"required": ["scene", "environment"],
	"properties": {
		"scene": {"type": "string"},
		"landmarks": {"type": "array", "items": {"type": "string"}},
		"environment": {"type": "string"},
		"season": {"type": "string"},
		"activities": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`)

var destinationMatchesSchema = llmjson.MustCompileSchema("destination_matches.json", `{
	"type": "object",
	"required": ["destinations"],
	"properties": {
		"destinations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"},
					"country": {"type": "string"},
					"score": {"type": "number", "minimum": 0, "maximum": 1},
					"reason": {"type": "string"}
				}
			}
		}
	}
}`)

var tripPlanSchema = llmjson.MustCompileSchema("trip_plan.json", `{
	"type": "object",
	"required": ["destination", "summary"],
	"properties": {
		"destination": {"type": "string"},
		"summary": {"type": "string"},
		"days": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["day", "title"],
				"properties": {
					"day": {"type": "integer", "minimum": 1},
					"title": {"type": "string"},
					"activities": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"estimated_budget": {"type": "string"}
	}
}`)

var tripSuggestionSchema = llmjson.MustCompileSchema("trip_suggestion.json", `{
	"type": "object",
	"required": ["destination", "summary"],
	"properties": {
		"destination": {"type": "string"},
		"summary": {"type": "string"},
		"highlights": {"type": "array", "items": {"type": "string"}}
	}
}`)

var synthesizedPlanSchema = llmjson.MustCompileSchema("synthesized_plan.json", `{
	"type": "object",
	"required": ["summary", "destinations"],
	"properties": {
		"summary": {"type": "string"},
		"destinations": {"type": "array", "items": {"type": "string"}},
		"plan": {
			"type": "object",
			"required": ["destination", "summary"],
			"properties": {
				"destination": {"type": "string"},
				"summary": {"type": "string"}
			}
		}
	}
}`)
