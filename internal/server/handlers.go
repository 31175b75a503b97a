package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"scholarscout/internal/ai"
	"scholarscout/internal/candidate"
	"scholarscout/internal/document"
	"scholarscout/internal/session"
	"scholarscout/internal/workflow"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) createSession(c *fiber.Ctx) error {
	sess := s.sessions.Create()

	return c.Status(fiber.StatusCreated).JSON(sessionResponse{SessionID: sess.ID})
}

// uploadResume accepts a resume as a multipart file, as JSON text, or as a
// demo flag that loads the canned sample profile. Parsing on upload is
// heuristic only; the parse endpoint upgrades a candidate with a model pass.
func (s *Server) uploadResume(c *fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "session not found or expired")
	}

	if fh, err := c.FormFile("file"); err == nil {
		return s.storeUploadedFile(c, sess, fh)
	}

	var req uploadRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "send a multipart file field, a json text field or demo=true")
	}

	if req.Demo {
		record := &workflow.ResumeRecord{Profile: candidate.DemoProfile(), Path: workflow.PathHeuristic}
		name := sess.PutRecord(record)

		return c.Status(fiber.StatusCreated).JSON(newRecordResponse(name, record))
	}

	if strings.TrimSpace(req.Text) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "resume text is empty")
	}

	record := s.flow.ParseResume(c.Context(), req.Text, false, ai.ModelConfig{})
	name := sess.PutRecord(record)

	return c.Status(fiber.StatusCreated).JSON(newRecordResponse(name, record))
}

func (s *Server) storeUploadedFile(c *fiber.Ctx, sess *session.Session, fh *multipart.FileHeader) error {
	if fh.Size > s.opts.MaxUpload {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.opts.MaxUpload))
	}

	file, err := fh.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "open uploaded file: "+err.Error())
	}
	defer file.Close()

	data, err := readAtMost(file, s.opts.MaxUpload)
	if err != nil {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}

	text, err := document.ExtractText(fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		if errors.Is(err, document.ErrUnsupportedFormat) {
			return errorJSON(c, fiber.StatusUnsupportedMediaType, err.Error())
		}

		return errorJSON(c, fiber.StatusBadRequest, "extract text: "+err.Error())
	}

	if strings.TrimSpace(text) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "no text found in "+fh.Filename)
	}

	record := s.flow.ParseResume(c.Context(), text, false, ai.ModelConfig{})
	name := sess.PutRecord(record)

	return c.Status(fiber.StatusCreated).JSON(newRecordResponse(name, record))
}

// parseCandidate re-parses a stored resume, usually to upgrade the heuristic
// profile with a model pass. The response carries the key the record is now
// filed under; a model parse may have extracted a different name.
func (s *Server) parseCandidate(c *fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "session not found or expired")
	}

	var req parseRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "malformed request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	record, ok := sess.Record(req.Candidate)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "unknown candidate: "+req.Candidate)
	}
	if strings.TrimSpace(record.RawText) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "no stored resume text for "+req.Candidate)
	}

	fresh := s.flow.ParseResume(c.Context(), record.RawText, s.useLLM(req.UseLLM), s.modelConfig(req.Model))
	name := sess.ReplaceRecord(req.Candidate, fresh)

	return c.JSON(newRecordResponse(name, fresh))
}

func (s *Server) matchCandidate(c *fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "session not found or expired")
	}

	var req matchRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "malformed request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	record, ok := sess.Record(req.Candidate)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "unknown candidate: "+req.Candidate)
	}

	report, err := s.flow.Match(c.Context(), record.Profile, req.Direction, s.useLLM(req.UseLLM), s.modelConfig(req.Model))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	sess.PutReport(report)

	return c.JSON(report)
}

// draftOutreach writes an outreach email from a candidate's stored match
// report, so the candidate must have been matched first.
func (s *Server) draftOutreach(c *fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "session not found or expired")
	}

	var req outreachRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "malformed request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	lang, err := workflow.ParseLanguage(req.Language)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	record, ok := sess.Record(req.Candidate)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "unknown candidate: "+req.Candidate)
	}

	report, ok := sess.Report(req.Candidate)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "no match report for "+req.Candidate+": run match first")
	}

	flow := s.flow
	if pitch := strings.TrimSpace(req.InstituteValue); pitch != "" {
		institute := flow.Institute()
		institute.Pitch = pitch
		flow = flow.WithInstitute(institute)
	}

	draft, err := flow.Outreach(c.Context(), report, record.Profile, lang, s.useLLM(req.UseLLM), s.modelConfig(req.Model))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	sess.PutDraft(draft)

	return c.JSON(draft)
}

func (s *Server) listCandidates(c *fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "session not found or expired")
	}

	records := sess.Records()
	rows := make([]candidateRow, 0, len(records))

	for _, record := range records {
		row := candidateRow{Row: record.Profile.Summary(), Path: record.Path}
		if report, found := sess.Report(record.Profile.Name); found {
			score := report.Score
			row.Score = &score
		}

		rows = append(rows, row)
	}

	return c.JSON(candidatesResponse{Candidates: rows})
}

// useLLM resolves a request's tri-state flag against the server default.
func (s *Server) useLLM(flag *bool) bool {
	if flag != nil {
		return *flag
	}

	return s.opts.UseLLM
}

// modelConfig merges per-request overrides onto the configured defaults.
// Switching provider discards the default model id and credential; the
// credential then comes from the request or the provider's usual
// environment variable.
func (s *Server) modelConfig(opts modelOptions) ai.ModelConfig {
	cfg := s.opts.Model

	provider := ai.Provider(strings.ToLower(strings.TrimSpace(opts.Provider)))
	if provider != "" && provider != cfg.Provider {
		cfg.Provider = provider
		cfg.Model = ""
		cfg.APIKey = ""
	}

	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(ai.KeyEnvVar(cfg.Provider))
	}

	return cfg
}

// readAtMost reads up to max bytes and errors when the payload is larger.
func readAtMost(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > max {
		return nil, fmt.Errorf("payload exceeds the %d byte limit", max)
	}

	return data, nil
}
