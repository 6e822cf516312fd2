package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/assessment"
	"github.com/carelink-ai/carelink/internal/conversation"
	"github.com/carelink-ai/carelink/internal/records"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleSetContext(c *fiber.Ctx) error {
	var ctx assessment.HealthContext
	if err := c.BodyParser(&ctx); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	s.assistant.SetContext(ctx)
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) assessmentResponse(c *fiber.Ctx, result *assessment.HealthAssessment, seq uint64) error {
	return c.JSON(AssessmentResponse{
		Assessment: result,
		Fallback:   result.Fallback,
		Seq:        seq,
	})
}

func (s *Server) handleAssessConcern(c *fiber.Ctx) error {
	var req ConcernRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	// Seq is taken before the model call so it reflects submission order
	seq := s.seq.Add(1)
	result := s.assistant.AssessConcern(c.Context(), req.Text)
	return s.assessmentResponse(c, result, seq)
}

func (s *Server) handleAssessSketch(c *fiber.Ctx) error {
	var req SketchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	sketch := assessment.PainSketch{
		BodyPart: req.BodyPart,
		Notes:    req.Notes,
	}
	for _, loc := range req.PainLocations {
		sketch.PainLocations = append(sketch.PainLocations, assessment.PainLocation{
			X: loc.X, Y: loc.Y, Type: loc.Type, Intensity: loc.Intensity,
		})
	}

	seq := s.seq.Add(1)
	result := s.assistant.AssessPainSketch(c.Context(), sketch)
	return s.assessmentResponse(c, result, seq)
}

func (s *Server) handleAssessVisual(c *fiber.Ctx) error {
	var req VisualRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	seq := s.seq.Add(1)
	result := s.assistant.AssessVisualObservation(c.Context(), assessment.VisualObservation{
		Description:   req.Description,
		AgeGroup:      req.AgeGroup,
		Consciousness: req.Consciousness,
	})
	return s.assessmentResponse(c, result, seq)
}

func (s *Server) handleAssessVitals(c *fiber.Ctx) error {
	var req VitalsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	vitals := assessment.VitalSigns{
		HeartRate:       req.HeartRate,
		Systolic:        req.Systolic,
		Diastolic:       req.Diastolic,
		OxygenSat:       req.OxygenSat,
		Temperature:     req.Temperature,
		RespiratoryRate: req.RespiratoryRate,
	}

	seq := s.seq.Add(1)
	result := s.assistant.AssessVitals(c.Context(), assessment.VitalsReading{
		Vitals: vitals,
		Notes:  req.Notes,
	})

	rec := records.HealthRecord{
		Vitals: vitals,
		Notes:  req.Notes,
		Assessment: &records.RecordAssessment{
			Response:        result.Response,
			Severity:        result.Severity,
			Recommendations: result.Recommendations,
			Emergency:       result.Emergency,
		},
	}
	if err := s.records.Add(rec); err != nil {
		s.logger.Error("Failed to persist health record", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to store record"})
	}

	return c.JSON(fiber.Map{
		"record":     s.records.Latest(),
		"assessment": result,
		"fallback":   result.Fallback,
		"seq":        seq,
	})
}

func (s *Server) handleListRecords(c *fiber.Ctx) error {
	return c.JSON(s.records.All())
}

func (s *Server) handleLatestRecord(c *fiber.Ctx) error {
	latest := s.records.Latest()
	if latest == nil {
		return c.Status(404).JSON(fiber.Map{"error": "no health records"})
	}
	return c.JSON(latest)
}

func (s *Server) handleGetChat(c *fiber.Ctx) error {
	return c.JSON(s.chat.Messages(requestIdentity(c)))
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ConcernRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	// The identity is resolved once and pinned for both appends, so a
	// concurrent request from another identity cannot redirect the writes.
	id := requestIdentity(c)

	if err := s.chat.Append(id, conversation.UserMessage(req.Text)); err != nil {
		s.logger.Error("Failed to persist user message", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to store message"})
	}

	seq := s.seq.Add(1)
	result := s.assistant.AssessConcern(c.Context(), req.Text)
	reply := conversation.AssistantMessage(result)

	if err := s.chat.Append(id, reply); err != nil {
		s.logger.Error("Failed to persist assistant message", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to store message"})
	}

	return c.JSON(fiber.Map{
		"message":  reply,
		"fallback": result.Fallback,
		"seq":      seq,
	})
}

func (s *Server) handleClearChat(c *fiber.Ctx) error {
	id := requestIdentity(c)
	if err := s.chat.Clear(id); err != nil {
		s.logger.Error("Failed to clear conversation", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to clear conversation"})
	}
	return c.JSON(s.chat.Messages(id))
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	latest := s.records.Latest()
	if latest == nil {
		return c.Status(404).JSON(fiber.Map{"error": "no health records"})
	}

	data, err := s.reports.Generate(latest)
	if err != nil {
		s.logger.Error("Failed to generate report", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate report"})
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="carelink-report.pdf"`)
	return c.Send(data)
}

// handleChatSocket runs the chat pipeline over a websocket: each text frame
// is a user message, each reply frame is the assistant message as JSON. The
// identity resolved during the upgrade is pinned for the connection's life.
func (s *Server) handleChatSocket(conn *websocket.Conn) {
	defer conn.Close()

	id := socketIdentity(conn)

	for {
		var req ConcernRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if err := s.validate.Struct(req); err != nil {
			conn.WriteJSON(fiber.Map{"error": err.Error()})
			continue
		}

		if err := s.chat.Append(id, conversation.UserMessage(req.Text)); err != nil {
			s.logger.Error("Failed to persist user message", zap.Error(err))
			conn.WriteJSON(fiber.Map{"error": "failed to store message"})
			continue
		}

		result := s.assistant.AssessConcern(context.Background(), req.Text)
		reply := conversation.AssistantMessage(result)

		if err := s.chat.Append(id, reply); err != nil {
			s.logger.Error("Failed to persist assistant message", zap.Error(err))
			conn.WriteJSON(fiber.Map{"error": "failed to store message"})
			continue
		}

		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}
