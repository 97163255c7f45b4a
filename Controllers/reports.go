package Controllers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"

	"FleetGuard/AI"
	"FleetGuard/Models"
	"FleetGuard/Notifications"
	"FleetGuard/Storage"
	"FleetGuard/Workflow"
	"FleetGuard/email"
)

// Damage photos wider than this get downscaled before being embedded, so a
// handful of phone pictures does not balloon the cache and export files.
const maxImageWidth = 1280

// ReportController serves the damage-report endpoints.
type ReportController struct {
	Store    *Storage.Gateway
	Engine   *Workflow.Engine
	Analyzer *AI.Client
	Notifier *Notifications.Notifier
}

func NewReportController(store *Storage.Gateway, engine *Workflow.Engine, analyzer *AI.Client, notifier *Notifications.Notifier) *ReportController {
	return &ReportController{Store: store, Engine: engine, Analyzer: analyzer, Notifier: notifier}
}

// GetReports returns all reports, most recent first.
func (r *ReportController) GetReports(ctx *fiber.Ctx) error {
	return ctx.JSON(r.Store.FetchReports())
}

// CreateReport files a new damage report. Attached images are downscaled,
// and when the AI service is configured the first image is analyzed to fill
// in the summary, suggested parts and (if the caller left it blank) the
// priority. AI trouble never blocks the filing.
func (r *ReportController) CreateReport(ctx *fiber.Ctx) error {
	var draft Models.ReportDraft
	if err := ctx.BodyParser(&draft); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(draft); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	user, _ := ctx.Locals("user").(Models.User)

	for i, img := range draft.Images {
		draft.Images[i] = downscaleImage(img)
	}

	if r.Analyzer.Configured() && len(draft.Images) > 0 && draft.AIAnalysis == "" {
		unitContext := "fleet vehicle"
		if unit, ok := r.Store.UnitByID(draft.UnitID); ok {
			unitContext = fmt.Sprintf("%s (%s)", unit.Model, unit.Type)
		}
		result, err := r.Analyzer.AnalyzeDamageImage(draft.Images[0], draft.Description, unitContext)
		if err != nil {
			log.Printf("AI analysis failed, filing report without it: %v", err)
		} else {
			draft.AIAnalysis = result.DamageSummary
			if len(draft.SuggestedParts) == 0 {
				draft.SuggestedParts = result.SuggestedActions
			}
			if draft.Priority == "" {
				draft.Priority = result.EstimatedPriority
			}
		}
	}

	report, outcome, err := r.Engine.Submit(draft, user)
	if err != nil {
		if errors.Is(err, Workflow.ErrUnknownUnit) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if unit, ok := r.Store.UnitByID(report.UnitID); ok {
		go r.Notifier.NotifyNewReport(report, unit)
		if report.Status == Models.StatusPendingApproval {
			go notifyManagersByEmail(report, unit)
		}
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report, "outcome": outcome})
}

// ApproveReport moves a pending report to OPEN. Manager only.
func (r *ReportController) ApproveReport(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	report, err := r.Engine.Approve(ctx.Params("id"), user)
	if err != nil {
		return workflowError(ctx, err)
	}
	return ctx.JSON(report)
}

// ResolveReport terminally closes a report. Manager only.
func (r *ReportController) ResolveReport(ctx *fiber.Ctx) error {
	user, _ := ctx.Locals("user").(Models.User)
	report, err := r.Engine.Resolve(ctx.Params("id"), user)
	if err != nil {
		return workflowError(ctx, err)
	}
	return ctx.JSON(report)
}

// SummarizeReports asks the AI service for a maintenance-plan digest over
// all non-resolved reports.
func (r *ReportController) SummarizeReports(ctx *fiber.Ctx) error {
	var summaries []string
	for _, report := range r.Store.FetchReports() {
		if report.Status == Models.StatusResolved {
			continue
		}
		summaries = append(summaries, fmt.Sprintf("[%s] %s: %s", report.Priority, report.UnitID, report.Description))
	}
	digest, err := r.Analyzer.SummarizeReports(summaries)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Summary service unavailable"})
	}
	return ctx.JSON(fiber.Map{"digest": digest, "reportCount": len(summaries)})
}

func workflowError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, Workflow.ErrNotAllowed):
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, Workflow.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	case errors.Is(err, Storage.ErrUnsupportedUpdate):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
}

// downscaleImage re-encodes a base64 damage photo as a bounded-width JPEG.
// Anything that fails to decode is kept as submitted.
func downscaleImage(encoded string) string {
	data := encoded
	prefix := ""
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		prefix = "data:image/jpeg;base64,"
		data = encoded[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return encoded
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return encoded
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return encoded
	}
	return prefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// notifyManagersByEmail mails the configured manager address about a report
// waiting for approval. Best effort.
func notifyManagersByEmail(report Models.DamageReport, unit Models.Unit) {
	config, ok := email.FromEnv()
	if !ok {
		return
	}
	to := os.Getenv("MANAGER_EMAIL")
	if to == "" {
		return
	}
	message := email.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Damage report pending approval: %s", unit.Name),
		Body: fmt.Sprintf("Report %s (%s priority) was filed by %s against %s:\r\n\r\n%s",
			report.ID, report.Priority, report.ReportedBy, unit.Name, report.Description),
	}
	if err := email.SendEmail(config, message); err != nil {
		log.Printf("Failed to send approval email: %v", err)
	}
}
