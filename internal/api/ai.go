package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// AI-assisted tools. These are opaque request/response calls: the backend
// owns the pipeline, the client only relays text.

type GrammarFix struct {
	Corrected    string   `json:"corrected"`
	Explanations []string `json:"explanations"`
}

type Translation struct {
	Translated string `json:"translated"`
	TargetLang string `json:"target_lang"`
}

type VocabSuggestion struct {
	Word       string `json:"word"`
	Meaning    string `json:"meaning"`
	Example    string `json:"example"`
	Difficulty string `json:"difficulty"`
}

// ExerciseType enumerates the generator's supported exercise formats.
type ExerciseType string

const (
	ExerciseVocabMCQ   ExerciseType = "vocab_mcq"
	ExerciseGrammarMCQ ExerciseType = "grammar_mcq"
	ExerciseCloze      ExerciseType = "cloze"
	ExerciseReorder    ExerciseType = "reorder"
)

type ExerciseParams struct {
	Topic string         `json:"topic,omitempty"`
	Level string         `json:"level,omitempty"` // A1..C1
	Types []ExerciseType `json:"types,omitempty"`
	Count int            `json:"n,omitempty"`
}

type Exercise struct {
	Type     ExerciseType `json:"type"`
	Question string       `json:"question"`
	Options  []string     `json:"options,omitempty"`
	Answer   string       `json:"answer"`
}

func (c *Client) FixGrammar(ctx context.Context, text string) (GrammarFix, error) {
	var result GrammarFix
	err := c.doAI(ctx, "/ai/grammar", map[string]any{"text": text}, &result)
	return result, err
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	body := map[string]any{"text": text}
	if targetLang != "" {
		body["target_lang"] = targetLang
	}
	var result Translation
	err := c.doAI(ctx, "/ai/translate", body, &result)
	return result, err
}

func (c *Client) VocabAssist(ctx context.Context, text string, limit int) ([]VocabSuggestion, error) {
	if limit <= 0 {
		limit = 6
	}
	var result []VocabSuggestion
	err := c.doAI(ctx, "/ai/vocab", map[string]any{"text": text, "limit": limit}, &result)
	return result, err
}

func (c *Client) GenerateExercises(ctx context.Context, params ExerciseParams) ([]Exercise, error) {
	var result []Exercise
	err := c.doAI(ctx, "/ai/exercise", params, &result)
	return result, err
}

// doAI posts to an AI endpoint, unwrapping the optional {data} envelope.
func (c *Client) doAI(ctx context.Context, path string, body, target any) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, body, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(raw, &envelope)
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &Error{Kind: KindServer, Message: "malformed response: " + err.Error()}
	}
	return nil
}
