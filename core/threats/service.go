package threats

import (
	"context"
	"fmt"
	"strings"

	"threatwatch/core/store"
	"threatwatch/core/utils"
)

const (
	ActionCreated = "Threat Creation"
	ActionUpdated = "Threat Updated"
)

// Service owns validation and the lifecycle rules around the threat table.
// Handlers never touch the stores directly for mutations.
type Service struct {
	threats  store.ThreatsStore
	activity store.ActivityStore
	messages store.MessagesStore
	logger   *utils.Logger
}

func NewService(threats store.ThreatsStore, activity store.ActivityStore, messages store.MessagesStore, logger *utils.Logger) *Service {
	return &Service{threats: threats, activity: activity, messages: messages, logger: logger}
}

// Input carries the mutable threat fields as submitted by a client.
type Input struct {
	Username    string
	Name        string
	Description string
	Status      string
	Categories  []string
	Level       int
	Resolution  *string
}

func (in *Input) validate() error {
	verr := newValidationError()
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "required")
	}
	if strings.TrimSpace(in.Description) == "" {
		verr.add("description", "required")
	}
	if !ValidStatus(in.Status) {
		verr.add("status", "must be one of Potential, Active, Resolved")
	}
	cats := store.NormalizeCategories(in.Categories)
	if len(cats) == 0 {
		verr.add("categories", "at least one category is required")
	}
	for _, c := range cats {
		if !ValidCategory(c) {
			verr.add("categories", "unknown category "+fmt.Sprintf("%q", c))
			break
		}
	}
	if !ValidLevel(in.Level) {
		verr.add("level", fmt.Sprintf("must be between %d and %d", MinLevel, MaxLevel))
	}
	if in.Status == StatusResolved {
		if in.Resolution == nil || strings.TrimSpace(*in.Resolution) == "" {
			verr.add("resolution", "required when status is Resolved")
		}
	}
	return verr.orNil()
}

// toThreat assumes a validated input. Resolution is forced to null unless the
// status is Resolved, regardless of what the client sent.
func (in *Input) toThreat() *store.Threat {
	t := &store.Threat{
		Username:    strings.TrimSpace(in.Username),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Categories:  store.NormalizeCategories(in.Categories),
		Level:       in.Level,
	}
	if in.Status == StatusResolved && in.Resolution != nil {
		res := strings.TrimSpace(*in.Resolution)
		t.Resolution = &res
	}
	return t
}

func (s *Service) Create(ctx context.Context, in Input) (*store.Threat, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := in.toThreat()
	if _, err := s.threats.CreateThreat(ctx, t); err != nil {
		return nil, fmt.Errorf("create threat: %w", err)
	}
	s.recordActivity(ctx, t.ID, ActionCreated, activityDetails(t), t.Username)
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*store.Threat, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	t := in.toThreat()
	t.ID = id
	affected, err := s.threats.UpdateThreat(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("update threat %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	updated, err := s.threats.GetThreat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload threat %d: %w", id, err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.recordActivity(ctx, id, ActionUpdated, activityDetails(updated), t.Username)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*store.Threat, error) {
	t, err := s.threats.GetThreat(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get threat %d: %w", id, err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, status string) ([]store.Threat, error) {
	filter := store.ThreatFilter{}
	if status != "" {
		if !ValidStatus(status) {
			verr := newValidationError()
			verr.add("status", "must be one of Potential, Active, Resolved")
			return nil, verr
		}
		filter.Status = status
	}
	return s.threats.ListThreats(ctx, filter)
}

// Unresolved lists threats whose status is Potential or Active.
func (s *Service) Unresolved(ctx context.Context) ([]store.Threat, error) {
	return s.threats.ListThreats(ctx, store.ThreatFilter{StatusIn: UnresolvedStatuses})
}

func (s *Service) PostMessage(ctx context.Context, threatID int64, sender, message string) (*store.Message, error) {
	verr := newValidationError()
	if strings.TrimSpace(sender) == "" {
		verr.add("sender", "required")
	}
	if strings.TrimSpace(message) == "" {
		verr.add("message", "required")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, threatID); err != nil {
		return nil, err
	}
	m := &store.Message{ThreatID: threatID, Sender: sender, Message: message}
	if _, err := s.messages.AppendMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return m, nil
}

func (s *Service) Messages(ctx context.Context, threatID int64) ([]store.Message, error) {
	if _, err := s.Get(ctx, threatID); err != nil {
		return nil, err
	}
	return s.messages.ListMessagesForThreat(ctx, threatID)
}

func (s *Service) Logs(ctx context.Context, threatID int64) ([]store.ActivityEntry, error) {
	if _, err := s.Get(ctx, threatID); err != nil {
		return nil, err
	}
	return s.activity.ListActivityForThreat(ctx, threatID)
}

// recordActivity is best-effort: the threat write already succeeded, so a
// failed audit append is logged and swallowed.
func (s *Service) recordActivity(ctx context.Context, threatID int64, action, details, username string) {
	user := strings.TrimSpace(username)
	if user == "" {
		user = "system"
	}
	entry := &store.ActivityEntry{
		ThreatID: threatID,
		Action:   action,
		Details:  details,
		Username: user,
	}
	if _, err := s.activity.AppendActivity(ctx, entry); err != nil {
		s.logger.Errorf("activity append for threat %d: %v", threatID, err)
	}
}

func activityDetails(t *store.Threat) string {
	return fmt.Sprintf("name=%q status=%s level=%d", t.Name, t.Status, t.Level)
}
