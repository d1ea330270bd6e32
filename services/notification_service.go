package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"postpilot/config"
	"postpilot/models"
)

// Notifier is the outbound notification port consumed by the workflow
// engine. Both calls are fire-and-forget: they enqueue and return, and a
// delivery failure is never surfaced to the caller.
type Notifier interface {
	Notify(userID uint, message string)
	NotifyWebhook(teamID uint, message string)
}

type notifyEvent struct {
	userID  uint
	teamID  uint
	message string
	webhook bool
}

// NotificationService delivers notifications over every configured channel:
// persisted in-app rows, a per-user websocket stream, an optional Redis
// publish and optional team webhooks.
type NotificationService struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Redis  *redis.Client

	queue chan notifyEvent

	mu      sync.RWMutex
	streams map[uint][]*websocket.Conn
}

const notifyQueueSize = 256

func NewNotificationService(db *gorm.DB, logger *logrus.Logger) *NotificationService {
	ns := &NotificationService{
		DB:      db,
		Logger:  logger,
		queue:   make(chan notifyEvent, notifyQueueSize),
		streams: make(map[uint][]*websocket.Conn),
	}

	if config.AppConfig.Redis.Enabled {
		ns.Redis = redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.Redis.Address,
			Password: config.AppConfig.Redis.Password,
			DB:       config.AppConfig.Redis.DB,
		})
	}

	return ns
}

// Start runs the dispatcher loop until ctx is cancelled.
func (ns *NotificationService) Start(ctx context.Context) {
	ns.Logger.Info("notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			ns.Logger.Info("notification dispatcher shutting down")
			return
		case ev := <-ns.queue:
			if ev.webhook {
				ns.deliverWebhook(ev)
			} else {
				ns.deliverUser(ev)
			}
		}
	}
}

// Notify enqueues an in-app notification for a user. Never blocks; when the
// queue is full the event is dropped and logged.
func (ns *NotificationService) Notify(userID uint, message string) {
	ns.enqueue(notifyEvent{userID: userID, message: message})
}

// NotifyWebhook enqueues a team channel notification.
func (ns *NotificationService) NotifyWebhook(teamID uint, message string) {
	ns.enqueue(notifyEvent{teamID: teamID, message: message, webhook: true})
}

func (ns *NotificationService) enqueue(ev notifyEvent) {
	select {
	case ns.queue <- ev:
	default:
		ns.Logger.WithFields(logrus.Fields{
			"user_id": ev.userID,
			"team_id": ev.teamID,
		}).Warn("notification queue full, dropping event")
	}
}

func (ns *NotificationService) deliverUser(ev notifyEvent) {
	row := models.Notification{
		UserID:  ev.userID,
		Message: ev.message,
	}
	if err := ns.DB.Create(&row).Error; err != nil {
		ns.Logger.WithError(err).WithField("user_id", ev.userID).
			Warn("failed to persist notification")
	}

	ns.pushStream(ev.userID, &row)
	ns.publishRedis(ev.userID, ev.message)
}

func (ns *NotificationService) deliverWebhook(ev notifyEvent) {
	var team models.Team
	if err := ns.DB.First(&team, ev.teamID).Error; err != nil {
		ns.Logger.WithError(err).WithField("team_id", ev.teamID).
			Warn("webhook notification for unknown team")
		return
	}
	if team.WebhookURL == nil || *team.WebhookURL == "" {
		return
	}

	payload, _ := json.Marshal(map[string]string{"text": ev.message})

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(*team.WebhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := fasthttp.DoTimeout(req, resp, 5*time.Second); err != nil {
		ns.Logger.WithError(err).WithField("team_id", ev.teamID).
			Warn("webhook delivery failed")
		return
	}
	if resp.StatusCode() >= 300 {
		ns.Logger.WithFields(logrus.Fields{
			"team_id": ev.teamID,
			"status":  resp.StatusCode(),
		}).Warn("webhook delivery rejected")
	}
}

func (ns *NotificationService) publishRedis(userID uint, message string) {
	if ns.Redis == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id": userID,
		"message": message,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ns.Redis.Publish(ctx, config.AppConfig.Redis.Channel, payload).Err(); err != nil {
		ns.Logger.WithError(err).Warn("redis publish failed")
	}
}

// SendEmail delivers an email notification to the user over SMTP when
// configured, falling back to a log line otherwise. Best-effort.
func (ns *NotificationService) SendEmail(userID uint, subject, content string) {
	var user models.User
	if err := ns.DB.First(&user, userID).Error; err != nil {
		ns.Logger.WithError(err).WithField("user_id", userID).
			Warn("email notification for unknown user")
		return
	}

	smtp := config.AppConfig.SMTP
	if !smtp.Enabled {
		ns.Logger.WithFields(logrus.Fields{
			"user_id": userID,
			"subject": subject,
		}).Info("smtp disabled, skipping email notification")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtp.From)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		ns.Logger.WithError(err).WithField("user_id", userID).
			Warn("email delivery failed")
	}
}

// GetNotifications returns the user's notifications, newest first.
func (ns *NotificationService) GetNotifications(userID uint) ([]models.Notification, error) {
	var rows []models.Notification
	if err := ns.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	return rows, nil
}

// RegisterStream attaches a websocket connection to a user's live stream.
func (ns *NotificationService) RegisterStream(userID uint, conn *websocket.Conn) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.streams[userID] = append(ns.streams[userID], conn)
}

// UnregisterStream detaches a websocket connection.
func (ns *NotificationService) UnregisterStream(userID uint, conn *websocket.Conn) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	conns := ns.streams[userID]
	for i, c := range conns {
		if c == conn {
			ns.streams[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(ns.streams[userID]) == 0 {
		delete(ns.streams, userID)
	}
}

func (ns *NotificationService) pushStream(userID uint, row *models.Notification) {
	ns.mu.RLock()
	conns := append([]*websocket.Conn(nil), ns.streams[userID]...)
	ns.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(row); err != nil {
			ns.Logger.WithError(err).Debug("websocket push failed")
		}
	}
}
