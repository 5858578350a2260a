package v1

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shenikar/hazard_alert_relay/internal/config"
	"github.com/shenikar/hazard_alert_relay/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	alertService service.AlertService
	logger       *logrus.Logger
	validate     *validator.Validate
	cfg          *config.Config
}

func NewHandler(alertService service.AlertService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		alertService: alertService,
		logger:       logger,
		validate:     validator.New(),
		cfg:          cfg,
	}
}

// @Summary Report a hazard
// @Description Apply a sensor hazard report. type=normal closes the current event. An unreadable body is applied as an unknown report. Requires the shared secret when one is configured.
// @Tags Alert
// @Accept json
// @Produce json
// @Security SensorSecret
// @Param report body HazardReportRequest true "Hazard report"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alert [post]
func (h *Handler) reportHazard(c *gin.Context) {
	var input HazardReportRequest
	log := h.logger.WithField("method", "reportHazard")

	// Sensors are dumb and flaky: an unreadable body still counts as a
	// report, just one with nothing in it.
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Unreadable report body, applying as unknown")
		input = HazardReportRequest{}
	} else if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.alertService.ReportHazard(c.Request.Context(), DTOToHazardReport(input))
	if err != nil {
		log.WithError(err).Error("Failed to apply hazard report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ViewToEventResponse(view))
}

// @Summary Get the current event
// @Description Get a snapshot of the current hazard event with its danger radius. Polled by sensors.
// @Tags Alert
// @Produce json
// @Success 200 {object} EventResponse
// @Router /alert [get]
func (h *Handler) getEvent(c *gin.Context) {
	c.JSON(http.StatusOK, ViewToEventResponse(h.alertService.EventSnapshot(c.Request.Context())))
}

// @Summary Telegram webhook
// @Description Receive a bot API update. Always answers 200 so the chat platform never retries; ok reports whether the update was applied.
// @Tags Telegram
// @Accept json
// @Produce json
// @Param update body object true "Bot API update"
// @Success 200 {object} WebhookResponse
// @Router /telegram/webhook [post]
func (h *Handler) telegramWebhook(c *gin.Context) {
	log := h.logger.WithField("method", "telegramWebhook")

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		log.WithError(err).Warn("Failed to decode webhook update")
		c.JSON(http.StatusOK, WebhookResponse{OK: false})
		return
	}

	msg := UpdateToChatMessage(&update)
	if msg == nil {
		c.JSON(http.StatusOK, WebhookResponse{OK: true})
		return
	}

	if err := h.alertService.HandleChatMessage(c.Request.Context(), msg); err != nil {
		log.WithError(err).Error("Failed to handle chat message")
		c.JSON(http.StatusOK, WebhookResponse{OK: false})
		return
	}
	c.JSON(http.StatusOK, WebhookResponse{OK: true})
}

// @Summary Get the classification report
// @Description Classify every registered user against the current event.
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /status [get]
func (h *Handler) getStatus(c *gin.Context) {
	log := h.logger.WithField("method", "getStatus")

	view, err := h.alertService.Status(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to build status report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ViewToStatusResponse(view))
}

// @Summary Get location check statistics
// @Description Get the count of distinct users with a location check inside the configured time window.
// @Tags Status
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /status/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	userCount, err := h.alertService.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, StatsResponse{UserCount: userCount})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

var statusPageTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="10">
<title>Hazard Alert Relay</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: left; }
.danger { background: #fdd; }
.pending { background: #ffd; }
.safe { background: #dfd; }
</style>
</head>
<body>
<h1>{{.Event.Label}}</h1>
{{if .Event.Active}}<p>Danger radius: {{printf "%.1f" .Event.RadiusKm}} km</p>{{end}}
{{range $bucket := .Buckets}}
<h2>{{$bucket.Title}} ({{len $bucket.Rows}})</h2>
{{if $bucket.Rows}}<table>
<tr><th>User</th><th>Distance</th><th>Located at</th></tr>
{{range $bucket.Rows}}<tr class="{{.Status}}">
<td>{{.Name}}</td>
<td>{{.Distance}}</td>
<td>{{.LocatedAt}}</td>
</tr>{{end}}
</table>{{else}}<p>Nobody here.</p>{{end}}
{{end}}
</body>
</html>
`))

type statusPageRow struct {
	Name      string
	Status    string
	Distance  string
	LocatedAt string
}

type statusPageBucket struct {
	Title string
	Rows  []statusPageRow
}

type statusPageData struct {
	Event   EventResponse
	Buckets []statusPageBucket
}

func pageRows(entries []UserStatusResponse) []statusPageRow {
	rows := make([]statusPageRow, len(entries))
	for i, e := range entries {
		row := statusPageRow{Name: e.Name, Status: e.Status, Distance: "-", LocatedAt: "-"}
		if e.DistanceKm != nil {
			row.Distance = fmt.Sprintf("%.1f km", *e.DistanceKm)
		}
		if e.LocatedAt != nil {
			row.LocatedAt = e.LocatedAt.Format("15:04:05")
		}
		rows[i] = row
	}
	return rows
}

// StatusPage renders the human-readable dashboard. Served at the site
// root, outside the API group, and auto-refreshes every 10 seconds.
func (h *Handler) StatusPage(c *gin.Context) {
	log := h.logger.WithField("method", "StatusPage")

	view, err := h.alertService.Status(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to build status report")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ViewToStatusResponse(view)
	data := statusPageData{
		Event: resp.Event,
		Buckets: []statusPageBucket{
			{Title: "In danger", Rows: pageRows(resp.Danger)},
			{Title: "Pending", Rows: pageRows(resp.Pending)},
			{Title: "Safe", Rows: pageRows(resp.Safe)},
		},
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := statusPageTmpl.Execute(c.Writer, data); err != nil {
		log.WithError(err).Error("Failed to render status page")
	}
}
