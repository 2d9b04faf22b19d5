package form

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"transmittal/internal/config"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/services"
)

// State is one coherent snapshot of the form session. Values handed out by
// the Controller are copies; changing them has no effect on the session.
type State struct {
	Details models.ProjectDetails
	Items   []models.TransmittalItem
	Columns []models.TableColumn
	Status  models.TransmittalStatus
	// RecordID is the cloud record the form was loaded from, "" for a new form.
	RecordID string
	History  []models.TransmittalLogEntry
}

func (s State) clone() State {
	s.Items = slices.Clone(s.Items)
	s.Columns = slices.Clone(s.Columns)
	s.History = slices.Clone(s.History)
	if s.Items == nil {
		s.Items = []models.TransmittalItem{}
	}
	if s.History == nil {
		s.History = []models.TransmittalLogEntry{}
	}
	return s
}

// Identity is the signed-in user the session allocates numbers for.
// Both fields empty means anonymous.
type Identity struct {
	UserID      string
	DisplayName string
}

// SignatureRole selects which signature image SetSignature replaces.
type SignatureRole string

const (
	PreparedBy SignatureRole = "preparedBy"
	NotedBy    SignatureRole = "notedBy"
)

type Config struct {
	Storage  *LocalStorage
	Numbers  services.NumberAllocator
	Identity Identity
	// DefaultLogo is used when the saved settings carry no logo.
	DefaultLogo string
	Logger      *slog.Logger
	Now         func() time.Time
}

// Controller owns the form session. Every change goes through Update, which
// builds a new State from a copy of the current one and swaps it in.
type Controller struct {
	storage  *LocalStorage
	numbers  services.NumberAllocator
	identity Identity
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
	saved models.SenderSettings
}

// New loads the saved sender settings and history and starts a fresh form
// with a newly allocated number.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := &Controller{
		storage:  cfg.Storage,
		numbers:  cfg.Numbers,
		identity: cfg.Identity,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}

	settings, err := c.storage.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	history, err := c.storage.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var details models.ProjectDetails
	if settings != nil {
		details = details.WithSenderSettings(*settings)
		c.saved = *settings
	}
	if details.LogoBase64 == "" {
		details.LogoBase64 = cfg.DefaultLogo
	}
	now := c.now()
	details.Date = now.Format(models.DateLayout)
	details.TimeGenerated = now.Format(models.TimeLayout)
	details.TransmittalNumber = c.nextNumber(ctx)

	c.state = State{
		Details: details,
		Items:   []models.TransmittalItem{},
		Columns: models.DefaultColumns(),
		Status:  models.StatusDraft,
		History: history,
	}
	c.persistSender(ctx)
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Update applies fn to a copy of the current state and makes the result
// current. The sender settings are saved when fn changed them.
func (c *Controller) Update(ctx context.Context, fn func(State) State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateLocked(ctx, fn)
}

func (c *Controller) updateLocked(ctx context.Context, fn func(State) State) State {
	c.state = fn(c.state.clone()).clone()
	c.persistSender(ctx)
	return c.state.clone()
}

// tryUpdate is Update for changes that can be rejected; on error the state is untouched.
func (c *Controller) tryUpdate(ctx context.Context, fn func(State) (State, error)) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(c.state.clone())
	if err != nil {
		return c.state.clone(), err
	}
	return c.updateLocked(ctx, func(State) State { return next }), nil
}

// persistSender must be called with mu held.
func (c *Controller) persistSender(ctx context.Context) {
	current := c.state.Details.SenderSettings()
	if current == c.saved {
		return
	}
	if err := c.storage.SaveSettings(ctx, current); err != nil {
		c.logger.Warn("failed to save sender settings", "error", err)
		return
	}
	c.saved = current
}

func (c *Controller) nextNumber(ctx context.Context) string {
	if c.numbers == nil {
		return ""
	}
	return c.numbers.NumberOrFallback(ctx, c.identity.UserID, c.identity.DisplayName)
}

// EditDetails changes header fields.
func (c *Controller) EditDetails(ctx context.Context, fn func(models.ProjectDetails) models.ProjectDetails) State {
	return c.Update(ctx, func(s State) State {
		s.Details = fn(s.Details)
		return s
	})
}

// AddItem appends an empty manual row with quantity 1.
func (c *Controller) AddItem(ctx context.Context) models.TransmittalItem {
	item := models.TransmittalItem{ID: "manual-" + uuid.NewString(), Qty: "1"}
	c.Update(ctx, func(s State) State {
		s.Items = append(s.Items, item)
		return s
	})
	return item
}

// AppendItems adds categorized rows after the existing ones.
func (c *Controller) AppendItems(ctx context.Context, items []models.TransmittalItem) State {
	return c.Update(ctx, func(s State) State {
		s.Items = append(s.Items, items...)
		return s
	})
}

// UpdateItem sets one field of one row.
func (c *Controller) UpdateItem(ctx context.Context, id, field, value string) error {
	_, err := c.tryUpdate(ctx, func(s State) (State, error) {
		i := slices.IndexFunc(s.Items, func(it models.TransmittalItem) bool { return it.ID == id })
		if i < 0 {
			return s, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		updated, err := s.Items[i].WithField(field, value)
		if err != nil {
			return s, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
		}
		s.Items[i] = updated
		return s, nil
	})
	return err
}

// DeleteItem removes a row.
func (c *Controller) DeleteItem(ctx context.Context, id string) error {
	_, err := c.tryUpdate(ctx, func(s State) (State, error) {
		n := len(s.Items)
		s.Items = slices.DeleteFunc(s.Items, func(it models.TransmittalItem) bool { return it.ID == id })
		if len(s.Items) == n {
			return s, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		}
		return s, nil
	})
	return err
}

// ReorderColumns replaces the column layout. Every column id must be known
// and appear at most once.
func (c *Controller) ReorderColumns(ctx context.Context, columns []models.TableColumn) error {
	_, err := c.tryUpdate(ctx, func(s State) (State, error) {
		if len(columns) == 0 {
			return s, fmt.Errorf("%w: at least one column is required", domain.ErrValidation)
		}
		seen := make(map[models.ColumnID]bool, len(columns))
		for _, col := range columns {
			if !col.ID.Valid() {
				return s, fmt.Errorf("%w: unknown column %q", domain.ErrValidation, col.ID)
			}
			if seen[col.ID] {
				return s, fmt.Errorf("%w: duplicate column %q", domain.ErrValidation, col.ID)
			}
			seen[col.ID] = true
		}
		s.Columns = slices.Clone(columns)
		return s, nil
	})
	return err
}

// SetSignature replaces a signature image. An empty image clears it.
func (c *Controller) SetSignature(ctx context.Context, role SignatureRole, image string) error {
	_, err := c.tryUpdate(ctx, func(s State) (State, error) {
		switch role {
		case PreparedBy:
			s.Details.PreparedBySignature = image
		case NotedBy:
			s.Details.NotedBySignature = image
		default:
			return s, fmt.Errorf("%w: unknown signature role %q", domain.ErrValidation, role)
		}
		return s, nil
	})
	return err
}

// LoadTemplate overlays a template. Number, date and time generated are kept.
func (c *Controller) LoadTemplate(ctx context.Context, t models.TemplateData) State {
	return c.Update(ctx, func(s State) State {
		s.Details = t.Apply(s.Details)
		return s
	})
}

// LoadTransmittal replaces the whole form with a cloud record.
func (c *Controller) LoadTransmittal(ctx context.Context, rec *models.Transmittal) State {
	today := c.now().Format(models.DateLayout)
	return c.Update(ctx, func(s State) State {
		s.Details = rec.Details
		s.Details.TransmittalNumber = rec.TransmittalNumber
		s.Details.TimeReleased = ""
		if s.Details.Date == "" {
			s.Details.Date = today
		}
		s.Items = slices.Clone(rec.Items)
		if len(rec.Columns) > 0 {
			s.Columns = slices.Clone(rec.Columns)
		}
		s.Status = rec.Status
		if s.Status == "" {
			s.Status = models.StatusDraft
		}
		s.RecordID = rec.ID
		return s
	})
}

// SelectCompany makes a saved company the sender. Missing contact details
// or logo keep the current values.
func (c *Controller) SelectCompany(ctx context.Context, company *models.Company) State {
	return c.Update(ctx, func(s State) State {
		s.Details.Sender = company.Name
		if company.ContactDetails != nil && *company.ContactDetails != "" {
			s.Details.SenderContactDetails = *company.ContactDetails
		}
		if company.LogoURL != nil && *company.LogoURL != "" {
			s.Details.LogoBase64 = *company.LogoURL
		}
		return s
	})
}

// SetStatus changes the status the form will be saved with.
func (c *Controller) SetStatus(ctx context.Context, status models.TransmittalStatus) error {
	_, err := c.tryUpdate(ctx, func(s State) (State, error) {
		if !status.Valid() {
			return s, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
		}
		s.Status = status
		return s, nil
	})
	return err
}

// MarkSaved records the cloud id the form was saved under.
func (c *Controller) MarkSaved(ctx context.Context, recordID string) State {
	return c.Update(ctx, func(s State) State {
		s.RecordID = recordID
		return s
	})
}

// Clear starts a new form: the sender settings and column layout survive,
// everything else is reset and a new number is allocated.
func (c *Controller) Clear(ctx context.Context) State {
	number := c.nextNumber(ctx)

	settings, err := c.storage.Settings(ctx)
	if err != nil {
		c.logger.Warn("failed to read saved settings, keeping current sender", "error", err)
		settings = nil
	}
	now := c.now()

	return c.Update(ctx, func(s State) State {
		sender := s.Details.SenderSettings()
		if settings != nil {
			sender = *settings
		}
		s.Details = models.ProjectDetails{}.WithSenderSettings(sender)
		s.Details.TransmittalNumber = number
		s.Details.Date = now.Format(models.DateLayout)
		s.Details.TimeGenerated = now.Format(models.TimeLayout)
		s.Items = []models.TransmittalItem{}
		s.Status = models.StatusDraft
		s.RecordID = ""
		return s
	})
}

// RefreshTime sets the generated time to now and returns it.
func (c *Controller) RefreshTime(ctx context.Context) string {
	now := c.now().Format(models.TimeLayout)
	c.Update(ctx, func(s State) State {
		s.Details.TimeGenerated = now
		return s
	})
	return now
}

// StartClock refreshes the generated time every interval until ctx is done.
// A non-positive interval uses the default of 30 seconds.
func (c *Controller) StartClock(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultClockInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RefreshTime(ctx)
			}
		}
	}()
}

// RecordHistory prepends the current form to the local history log and saves it.
func (c *Controller) RecordHistory(ctx context.Context) (models.TransmittalLogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	d := c.state.Details
	entry := models.TransmittalLogEntry{
		ID:                strconv.FormatInt(now.UnixMilli(), 10),
		TransmittalNumber: d.TransmittalNumber,
		Date:              d.Date,
		RecipientCompany:  d.RecipientCompany,
		ProjectName:       d.ProjectName,
		ItemCount:         len(c.state.Items),
		Timestamp:         now.UnixMilli(),
	}
	history := append([]models.TransmittalLogEntry{entry}, c.state.History...)
	if err := c.storage.SaveHistory(ctx, history); err != nil {
		return entry, fmt.Errorf("save history: %w", err)
	}
	c.state.History = history
	return entry, nil
}
