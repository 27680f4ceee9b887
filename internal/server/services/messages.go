package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
)

const (
	maxNameLength    = 100
	maxSubjectLength = 200
	maxMessageLength = 5000
)

type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *MessageService {
	return &MessageService{db: db, repomanager: m, logger: logger}
}

// Submit validates and stores a contact form message.
func (s *MessageService) Submit(ctx context.Context, msg *models.ContactMessage) (*models.ContactMessage, error) {
	if err := prepareMessage(msg); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Messages(s.db).Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "contact message received", "id", out.ID)
	return out, nil
}

func (s *MessageService) List(ctx context.Context) ([]*models.ContactMessage, error) {
	return s.repomanager.Messages(s.db).List(ctx)
}

func (s *MessageService) MarkRead(ctx context.Context, id int64) error {
	return s.repomanager.Messages(s.db).MarkRead(ctx, id)
}

func (s *MessageService) Delete(ctx context.Context, id int64) error {
	return s.repomanager.Messages(s.db).Delete(ctx, id)
}

func prepareMessage(m *models.ContactMessage) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)

	switch {
	case m.Name == "":
		return fmt.Errorf("%w: name is required", common.ErrorValidation)
	case utf8.RuneCountInString(m.Name) > maxNameLength:
		return fmt.Errorf("%w: name is too long", common.ErrorValidation)
	case !plausibleEmail(m.Email):
		return fmt.Errorf("%w: a valid email is required", common.ErrorValidation)
	case utf8.RuneCountInString(m.Subject) > maxSubjectLength:
		return fmt.Errorf("%w: subject is too long", common.ErrorValidation)
	case m.Message == "":
		return fmt.Errorf("%w: message is required", common.ErrorValidation)
	case utf8.RuneCountInString(m.Message) > maxMessageLength:
		return fmt.Errorf("%w: message is too long", common.ErrorValidation)
	}
	return nil
}

// plausibleEmail accepts a bare address with a dotted domain. Display-name
// forms such as "Bob <bob@example.com>" are rejected.
func plausibleEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
