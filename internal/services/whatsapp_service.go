package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/dotaevolution/presence-api/internal/metrics"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/dotaevolution/presence-api/internal/repository"
	"github.com/dotaevolution/presence-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUnknownMessageFormat = errors.New("invalid message format, use Nickname/P1, Nickname/cancel or status")
	ErrSenderNotFound       = errors.New("user not found or inactive")
	ErrDoesNotPlayPosition  = errors.New("user does not play this position")
)

var (
	presencePattern = regexp.MustCompile(`(?i)^(\w+)/(P[1-5])$`)
	cancelPattern   = regexp.MustCompile(`(?i)^(\w+)/cancel$`)
	statusPattern   = regexp.MustCompile(`(?i)^(status|lista)$`)
)

// Sender delivers a single WhatsApp message. The default implementation
// only logs; a provider client can be plugged in without touching the
// service.
type Sender interface {
	Send(phone, content string) error
}

// LogSender is the development sender: it logs instead of delivering.
type LogSender struct{}

func (LogSender) Send(phone, content string) error {
	log.Printf("SIMULATED WhatsApp send to %s: %s", phone, content)
	return nil
}

// WhatsAppService is the notification gateway: it parses inbound webhook
// messages into engine operations and formats outbound broadcasts. The
// engine itself never waits on delivery.
type WhatsAppService struct {
	db              *gorm.DB
	userRepo        repository.UserRepository
	presenceService *PresenceService
	listService     *ListService
	sender          Sender
}

// NewWhatsAppService creates a new WhatsAppService
func NewWhatsAppService(db *gorm.DB, userRepo repository.UserRepository, presenceService *PresenceService, listService *ListService, sender Sender) *WhatsAppService {
	if sender == nil {
		sender = LogSender{}
	}
	return &WhatsAppService{
		db:              db,
		userRepo:        userRepo,
		presenceService: presenceService,
		listService:     listService,
		sender:          sender,
	}
}

// HandleIncoming records and processes one webhook message, returning the
// reply text for the sender. WhatsApp confirmations always target the
// family matching the user's own category.
func (s *WhatsAppService) HandleIncoming(phone, content string) (string, error) {
	content = strings.TrimSpace(content)
	now := time.Now()

	message := &models.WhatsAppMessage{
		Phone:      utils.FormatPhone(phone),
		Content:    content,
		Status:     models.MessagePending,
		ReceivedAt: &now,
	}
	if err := s.db.Create(message).Error; err != nil {
		return "", fmt.Errorf("failed to record message: %w", err)
	}

	reply, err := s.dispatch(message, content)
	if err != nil {
		message.Status = models.MessageError
		message.ErrorMessage = err.Error()
		s.db.Save(message)
		metrics.WhatsAppMessagesTotal.WithLabelValues("inbound", "error").Inc()
		return "", err
	}

	message.Status = models.MessageProcessed
	s.db.Save(message)
	metrics.WhatsAppMessagesTotal.WithLabelValues("inbound", "processed").Inc()
	return reply, nil
}

func (s *WhatsAppService) dispatch(message *models.WhatsAppMessage, content string) (string, error) {
	if m := presencePattern.FindStringSubmatch(content); m != nil {
		return s.handleConfirm(message, m[1], models.Position(strings.ToUpper(m[2])))
	}
	if m := cancelPattern.FindStringSubmatch(content); m != nil {
		return s.handleCancel(message, m[1])
	}
	if statusPattern.MatchString(content) {
		return s.handleStatus()
	}
	return "", ErrUnknownMessageFormat
}

func (s *WhatsAppService) handleConfirm(message *models.WhatsAppMessage, nickname string, position models.Position) (string, error) {
	user, err := s.findUser(nickname)
	if err != nil {
		return "", err
	}
	message.UserID = &user.ID

	if !user.PlaysPosition(position) {
		return "", fmt.Errorf("%w: %s does not play %s", ErrDoesNotPlayPosition, user.Nickname, position)
	}

	result, err := s.presenceService.Confirm(ConfirmInput{
		User:     user,
		Position: position,
		ListType: user.Category,
		Source:   models.SourceWhatsApp,
	})
	if err != nil {
		return "", err
	}
	message.PresenceID = &result.Presence.ID

	reply := fmt.Sprintf("%s confirmed for %s on %s", user.Nickname, position, result.List.DisplayName())
	if result.ListAdvanced {
		reply += fmt.Sprintf(". List is full, %s is now open", result.NextList.DisplayName())
	}
	return reply, nil
}

func (s *WhatsAppService) handleCancel(message *models.WhatsAppMessage, nickname string) (string, error) {
	user, err := s.findUser(nickname)
	if err != nil {
		return "", err
	}
	message.UserID = &user.ID

	result, err := s.presenceService.Cancel(CancelInput{
		User:     user,
		ListType: user.Category,
		Reason:   "Cancelled via WhatsApp",
	})
	if err != nil {
		return "", err
	}
	message.PresenceID = &result.Presence.ID

	reply := fmt.Sprintf("%s presence cancelled on %s", user.Nickname, result.List.DisplayName())
	if result.Reopened {
		reply += " (list reopened)"
	}
	return reply, nil
}

func (s *WhatsAppService) handleStatus() (string, error) {
	dashboard, err := s.listService.Dashboard(nil, time.Now())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, listType := range models.ListTypes {
		current := dashboard.CurrentLists[listType]
		fmt.Fprintf(&b, "%s (%s): %d/%d confirmed",
			current.List.DisplayName(), current.List.Status,
			len(current.Occupancy), current.List.MaxPlayers)
		for _, p := range current.Occupancy {
			fmt.Fprintf(&b, "\n  %s: %s", p.Position, p.User.Nickname)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (s *WhatsAppService) findUser(nickname string) (*models.User, error) {
	user, err := s.userRepo.FindActiveByNickname(nickname)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSenderNotFound, nickname)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// BroadcastResult summarizes one list broadcast.
type BroadcastResult struct {
	Total      int
	Successful int
	Failed     int
}

// BroadcastList sends a list's current state to every active user with a
// phone number, recording one message row per recipient. Delivery failures
// are recorded and counted but never abort the broadcast.
func (s *WhatsAppService) BroadcastList(listID uint64) (*BroadcastResult, error) {
	list, occupancy, err := s.listService.GetList(listID)
	if err != nil {
		return nil, err
	}

	content := s.formatListMessage(list, occupancy)

	users, err := s.userRepo.ListActiveWithPhone()
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}

	result := &BroadcastResult{Total: len(users)}
	for i := range users {
		user := &users[i]
		message := &models.WhatsAppMessage{
			Phone:   utils.FormatPhone(*user.Phone),
			Content: content,
			Status:  models.MessagePending,
			UserID:  &user.ID,
		}
		if err := s.db.Create(message).Error; err != nil {
			result.Failed++
			continue
		}

		if err := s.sender.Send(message.Phone, content); err != nil {
			message.Status = models.MessageFailed
			message.ErrorMessage = err.Error()
			result.Failed++
			metrics.WhatsAppMessagesTotal.WithLabelValues("outbound", "failed").Inc()
		} else {
			message.Status = models.MessageSent
			result.Successful++
			metrics.WhatsAppMessagesTotal.WithLabelValues("outbound", "sent").Inc()
		}
		s.db.Save(message)
	}

	log.Printf("Broadcast of %s: %d/%d sent", list.DisplayName(), result.Successful, result.Total)
	return result, nil
}

// NotifyAssignment messages the affected player after a confirm. Callers
// run it in a goroutine; the engine result already carries everything it
// needs, so it never re-enters the engine.
func (s *WhatsAppService) NotifyAssignment(result *ConfirmResult) {
	user := result.Presence.User
	if user.Phone == nil {
		return
	}
	content := fmt.Sprintf("%s, your presence is confirmed for %s on %s",
		user.Nickname, result.Presence.Position, result.List.DisplayName())
	if result.ListAdvanced {
		content += fmt.Sprintf(". The list is now full; %s is open", result.NextList.DisplayName())
	}
	s.sendToUser(&user, content)
}

// NotifyCancellation messages the affected player after a cancel.
func (s *WhatsAppService) NotifyCancellation(result *CancelResult, user *models.User) {
	if user.Phone == nil {
		return
	}
	content := fmt.Sprintf("%s, your presence on %s was cancelled", user.Nickname, result.List.DisplayName())
	s.sendToUser(user, content)
}

func (s *WhatsAppService) sendToUser(user *models.User, content string) {
	message := &models.WhatsAppMessage{
		Phone:   utils.FormatPhone(*user.Phone),
		Content: content,
		Status:  models.MessagePending,
		UserID:  &user.ID,
	}
	if err := s.db.Create(message).Error; err != nil {
		log.Printf("failed to record notification for %s: %v", user.Nickname, err)
		return
	}

	if err := s.sender.Send(message.Phone, content); err != nil {
		message.Status = models.MessageFailed
		message.ErrorMessage = err.Error()
		metrics.WhatsAppMessagesTotal.WithLabelValues("outbound", "failed").Inc()
	} else {
		message.Status = models.MessageSent
		metrics.WhatsAppMessagesTotal.WithLabelValues("outbound", "sent").Inc()
	}
	s.db.Save(message)
}

func (s *WhatsAppService) formatListMessage(list *models.DailyList, occupancy []models.Presence) string {
	byPosition := make(map[models.Position]*models.Presence, len(occupancy))
	for i := range occupancy {
		byPosition[occupancy[i].Position] = &occupancy[i]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DOTA EVOLUTION - %s (%s)\n\n", list.Date.Format("02/01/2006"), list.DisplayName())
	b.WriteString("To confirm, reply: YourNickname/P1 (or P2..P5)\n\n")
	for _, position := range models.AllPositions {
		if p, ok := byPosition[position]; ok {
			fmt.Fprintf(&b, "%s: %s\n", position, p.User.Nickname)
		} else {
			fmt.Fprintf(&b, "%s: available\n", position)
		}
	}
	b.WriteString("\nTo cancel: YourNickname/cancel")
	b.WriteString("\nFor status: status")
	return b.String()
}
