package store

import (
	"time"

	"modvault/internal/models"
)

func (s *Store) ActiveWebhooks(t models.WebhookType) ([]models.Webhook, error) {
	var ws []models.Webhook
	err := s.DB.Select(&ws, `SELECT id, name, url, webhook_type, is_active, created_at FROM webhooks WHERE webhook_type = ? AND is_active = 1 ORDER BY id ASC`, t)
	return ws, err
}

func (s *Store) CreateWebhook(w *models.Webhook) (int64, error) {
	now := time.Now().UTC()
	res, err := s.DB.Exec(`INSERT INTO webhooks (name, url, webhook_type, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
		w.Name, w.URL, w.Type, w.IsActive, now)
	if err != nil {
		return 0, err
	}
	w.CreatedAt = now
	return res.LastInsertId()
}

func (s *Store) SetWebhookActive(id int64, active bool) error {
	_, err := s.DB.Exec(`UPDATE webhooks SET is_active = ? WHERE id = ?`, active, id)
	return err
}
