package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"health-portal/internal/api"
	"health-portal/internal/models"
	"health-portal/internal/utils"
)

// MessageHandler handles messaging related requests.
type MessageHandler struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db, Now: time.Now}
}

// ConversationPreview summarises the exchange with one counterpart.
type ConversationPreview struct {
	Partner     models.UserSanitized `json:"partner"`
	LastMessage models.Message       `json:"lastMessage"`
	UnreadCount int                  `json:"unreadCount"`
}

// canMessage is the directory rule: patients and providers write to each
// other, admins to and from anyone.
func canMessage(from, to models.Role) bool {
	if from == models.RoleAdmin || to == models.RoleAdmin {
		return true
	}
	return (from == models.RolePatient && to == models.RoleProvider) ||
		(from == models.RoleProvider && to == models.RolePatient)
}

// SendMessage sends a new message from the caller.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	var req api.SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.RecipientID == a.ID {
		utils.BadRequest(c, "Cannot send a message to yourself.")
		return
	}

	var sender, recipient models.User
	if !findByID(c, h.DB, &sender, a.ID, "Sender") {
		return
	}
	if !findByID(c, h.DB, &recipient, req.RecipientID, "Recipient") {
		return
	}
	if !canMessage(sender.Role, recipient.Role) {
		utils.Forbidden(c, "You are not authorized to send a message to this user.")
		return
	}

	message := models.Message{
		SenderID:      sender.ID,
		SenderName:    sender.Name,
		RecipientID:   recipient.ID,
		RecipientName: recipient.Name,
		Timestamp:     h.Now().UTC(),
		Subject:       req.Subject,
		Content:       req.Content,
		Urgent:        req.Urgent,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to send message: "+err.Error())
		return
	}
	utils.Created(c, message)
}

// GetMessagesForUser lists messages the caller sent or received, newest
// first. ?with narrows to one counterpart; ?since (RFC 3339) to newer messages.
func (h *MessageHandler) GetMessagesForUser(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}

	q := h.DB.Order("timestamp desc")
	if other := c.Query("with"); other != "" {
		q = q.Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a.ID, other, other, a.ID)
	} else {
		q = q.Where("sender_id = ? OR recipient_id = ?", a.ID, a.ID)
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			utils.BadRequest(c, "Invalid timestamp format. Use RFC3339 format (e.g., 2006-01-02T15:04:05Z07:00)")
			return
		}
		q = q.Where("timestamp > ?", t.UTC())
	}

	messages := []models.Message{}
	if err := q.Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}
	utils.Success(c, messages)
}

func (h *MessageHandler) load(c *gin.Context, a actor) (*models.Message, bool) {
	var m models.Message
	if !findByID(c, h.DB, &m, c.Param("id"), "Message") {
		return nil, false
	}
	if !m.Involves(a.ID) {
		utils.NotFound(c, "Message not found")
		return nil, false
	}
	return &m, true
}

// GetMessageByID returns one message the caller sent or received.
func (h *MessageHandler) GetMessageByID(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	m, ok := h.load(c, a)
	if !ok {
		return
	}
	utils.Success(c, m)
}

// MarkMessageAsRead marks a received message read. Repeating it is harmless.
func (h *MessageHandler) MarkMessageAsRead(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}
	m, ok := h.load(c, a)
	if !ok {
		return
	}
	if m.RecipientID != a.ID {
		utils.Forbidden(c, "You are not authorized to mark this message as read.")
		return
	}
	if m.Read {
		utils.Success(c, m)
		return
	}

	m.Read = true
	if err := h.DB.Model(m).Update("read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to update message status: "+err.Error())
		return
	}
	utils.Success(c, m)
}

// GetConversations lists one preview per counterpart, most recent first.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	a, ok := currentActor(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := h.DB.Where("sender_id = ? OR recipient_id = ?", a.ID, a.ID).Order("timestamp desc").Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	byPartner := map[string]*ConversationPreview{}
	var order []string
	for _, m := range messages {
		partnerID, partnerName := m.RecipientID, m.RecipientName
		if m.RecipientID == a.ID {
			partnerID, partnerName = m.SenderID, m.SenderName
		}
		p, seen := byPartner[partnerID]
		if !seen {
			p = &ConversationPreview{
				Partner:     models.UserSanitized{ID: partnerID, Name: partnerName},
				LastMessage: m,
			}
			byPartner[partnerID] = p
			order = append(order, partnerID)
		}
		if m.RecipientID == a.ID && !m.Read {
			p.UnreadCount++
		}
	}

	if len(order) > 0 {
		var partners []models.User
		if err := h.DB.Where("id IN ?", order).Find(&partners).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch conversation partners: "+err.Error())
			return
		}
		for i := range partners {
			if p, ok := byPartner[partners[i].ID]; ok {
				p.Partner = partners[i].Sanitize()
			}
		}
	}

	previews := make([]ConversationPreview, 0, len(order))
	for _, id := range order {
		previews = append(previews, *byPartner[id])
	}
	utils.Success(c, previews)
}
