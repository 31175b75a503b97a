package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"scholarscout/internal/candidate"
	"scholarscout/internal/workflow"
)

// modelOptions selects the provider for one request. Unset fields fall back
// to the server's configured defaults.
type modelOptions struct {
	Provider string `json:"provider" validate:"omitempty,oneof=openai anthropic gemini"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
}

// uploadRequest is the JSON alternative to a multipart file upload.
type uploadRequest struct {
	Text string `json:"text"`
	Demo bool   `json:"demo"`
}

type parseRequest struct {
	Candidate string       `json:"candidate" validate:"required"`
	UseLLM    *bool        `json:"use_llm"`
	Model     modelOptions `json:"model"`
}

// Validate checks the request against its field constraints.
func (r *parseRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type matchRequest struct {
	Candidate string       `json:"candidate" validate:"required"`
	Direction string       `json:"direction" validate:"required"`
	UseLLM    *bool        `json:"use_llm"`
	Model     modelOptions `json:"model"`
}

// Validate checks the request against its field constraints.
func (r *matchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// outreachRequest drafts an email from a candidate's stored match report,
// so a match must have been run first. Language accepts the aliases
// ParseLanguage does.
type outreachRequest struct {
	Candidate string `json:"candidate" validate:"required"`
	Language  string `json:"language"`
	// InstituteValue replaces the configured value proposition for this
	// draft only.
	InstituteValue string       `json:"institute_value"`
	UseLLM         *bool        `json:"use_llm"`
	Model          modelOptions `json:"model"`
}

// Validate checks the request against its field constraints.
func (r *outreachRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// recordResponse is the stored-resume view returned by upload and parse.
// Candidate repeats the key the record is filed under because a model parse
// can change the extracted name.
type recordResponse struct {
	Candidate string             `json:"candidate"`
	Profile   *candidate.Profile `json:"profile"`
	Path      workflow.Path      `json:"path"`
	Model     string             `json:"model,omitempty"`
}

func newRecordResponse(name string, record *workflow.ResumeRecord) recordResponse {
	return recordResponse{
		Candidate: name,
		Profile:   record.Profile,
		Path:      record.Path,
		Model:     record.Model,
	}
}

// candidateRow is one line of the overview table. Score is present only
// after a match has been run for the candidate.
type candidateRow struct {
	candidate.Row
	Score *int          `json:"suitability_score,omitempty"`
	Path  workflow.Path `json:"path"`
}

type candidatesResponse struct {
	Candidates []candidateRow `json:"candidates"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorResponse{Message: message})
}
