package v1

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shenikar/hazard_alert_relay/internal/classifier"
	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/shenikar/hazard_alert_relay/internal/service"
)

// DTOToHazardReport converts the sensor payload into the domain
// report, falling back to the legacy field names where the canonical
// ones are absent.
func DTOToHazardReport(dto HazardReportRequest) *models.HazardReport {
	eventType := dto.Type
	if eventType == "" {
		eventType = dto.Status
	}
	description := dto.Description
	if description == "" {
		description = dto.Message
	}

	return &models.HazardReport{
		Type:        models.EventType(eventType),
		Severity:    models.Severity(dto.Level),
		Latitude:    dto.EventLat,
		Longitude:   dto.EventLon,
		DeviceID:    dto.DeviceID,
		Description: description,
	}
}

// ViewToEventResponse converts the service event view into the response DTO.
func ViewToEventResponse(view service.EventView) EventResponse {
	resp := EventResponse{
		Active:      view.Event.Active,
		Type:        string(view.Event.Type),
		Level:       string(view.Event.Severity),
		Latitude:    view.Event.Latitude,
		Longitude:   view.Event.Longitude,
		Reporter:    view.Event.ReporterName,
		Description: view.Event.Description,
		RadiusKm:    view.RadiusKm,
		Label:       view.Label,
	}
	if view.Event.Active {
		id := view.Event.ID
		resp.ID = &id
		openedAt := view.Event.OpenedAt
		resp.OpenedAt = &openedAt
	}
	return resp
}

// ViewToStatusResponse converts the full classification report.
func ViewToStatusResponse(view *service.StatusView) StatusResponse {
	return StatusResponse{
		Event: ViewToEventResponse(service.EventView{
			Event:    view.Event,
			RadiusKm: view.RadiusKm,
			Label:    view.Label,
		}),
		Danger:  resultsToResponses(view.Danger),
		Safe:    resultsToResponses(view.Safe),
		Pending: resultsToResponses(view.Pending),
	}
}

func resultsToResponses(results []classifier.Result) []UserStatusResponse {
	responses := make([]UserStatusResponse, len(results))
	for i, res := range results {
		responses[i] = UserStatusResponse{
			UserID:     res.User.ID,
			Name:       res.User.DisplayName(),
			Status:     string(res.Status),
			DistanceKm: res.DistanceKm,
			LocatedAt:  res.User.LocatedAt,
		}
	}
	return responses
}

// UpdateToChatMessage extracts the chat message from a bot API update.
// Returns nil for updates that carry no message (edits, callbacks and
// other update kinds the relay ignores).
func UpdateToChatMessage(update *tgbotapi.Update) *models.ChatMessage {
	if update.Message == nil || update.Message.Chat == nil {
		return nil
	}

	msg := &models.ChatMessage{
		ChatID: update.Message.Chat.ID,
		Text:   update.Message.Text,
	}
	if update.Message.From != nil {
		msg.FirstName = update.Message.From.FirstName
		msg.LastName = update.Message.From.LastName
	}
	if update.Message.Location != nil {
		msg.Location = &models.Coordinates{
			Latitude:  update.Message.Location.Latitude,
			Longitude: update.Message.Location.Longitude,
		}
	}
	return msg
}
