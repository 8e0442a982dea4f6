package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"cravesmart-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 72 * time.Hour

var (
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the per-login context handed to handlers that need the
// current user. Its result and selection are replaced on every analysis.
type Session struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	ExpiresAt time.Time

	mu        sync.Mutex
	result    *models.AnalysisResult
	selection *PlanSelection
}

// AnalysisView is the session's latest result with its selection applied
type AnalysisView struct {
	Result          *models.AnalysisResult `json:"result"`
	SelectedOptions []int                  `json:"selectedOptions,omitempty"`
	Totals          *DailyTotals           `json:"totals,omitempty"`
	TotalsDisplay   *TotalsDisplay         `json:"totalsDisplay,omitempty"`
	Display         AnalysisDisplay        `json:"display"`
}

// AnalysisDisplay holds the rendered single-meal figures and the selected options
type AnalysisDisplay struct {
	EstimatedCalories string          `json:"estimatedCalories"`
	Protein           string          `json:"protein"`
	Carbs             string          `json:"carbs"`
	Fats              string          `json:"fats"`
	SelectedOptions   []OptionDisplay `json:"selectedOptions,omitempty"`
}

// SetResult stores a new result and resets every slot to its first option
func (s *Session) SetResult(result *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.selection = nil
	if result != nil {
		s.selection = NewPlanSelection(result.DailyPlan)
	}
}

// ClearResult drops the stored result
func (s *Session) ClearResult() {
	s.SetResult(nil)
}

// Cycle moves the selected option of one slot of the stored plan
func (s *Session) Cycle(slot int, dir Direction) (*AnalysisView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.selection == nil {
		return nil, ErrNoPlan
	}
	if _, err := s.selection.Cycle(s.result.DailyPlan, slot, dir); err != nil {
		return nil, err
	}
	return s.viewLocked(), nil
}

// View returns the stored result, or nil when there is none
func (s *Session) View() *AnalysisView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	return s.viewLocked()
}

func (s *Session) viewLocked() *AnalysisView {
	r := s.result
	view := &AnalysisView{
		Result: r,
		Display: AnalysisDisplay{
			EstimatedCalories: models.FormatValue(r.EstimatedCalories, calorieSuffix),
			Protein:           models.FormatValue(r.Macros.Protein, gramSuffix),
			Carbs:             models.FormatValue(r.Macros.Carbs, gramSuffix),
			Fats:              models.FormatValue(r.Macros.Fats, gramSuffix),
		},
	}
	if len(r.DailyPlan) == 0 {
		return view
	}

	view.SelectedOptions = s.selection.Indices()
	view.Totals = s.selection.Totals(r.DailyPlan)
	display := view.Totals.Display()
	view.TotalsDisplay = &display
	for i := range r.DailyPlan {
		option, ok := s.selection.Selected(r.DailyPlan, i)
		if !ok {
			view.Display.SelectedOptions = append(view.Display.SelectedOptions, OptionDisplay{
				Calories: models.Placeholder, Protein: models.Placeholder,
				Carbs: models.Placeholder, Fats: models.Placeholder,
			})
			continue
		}
		view.Display.SelectedOptions = append(view.Display.SelectedOptions, DisplayOption(option))
	}
	return view
}

// SessionStore keeps live sessions in memory
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store with the given lifetime
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start opens a session for an account
func (s *SessionStore) Start(accountID uuid.UUID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	session := &Session{
		ID:        uuid.New(),
		AccountID: accountID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.sessions[session.ID] = session
	return session
}

// Get returns a live session
func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// End closes a session
func (s *SessionStore) End(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) pruneLocked() {
	now := s.now()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

// TokenIssuer signs and verifies session bearer tokens
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a token issuer with an HMAC secret
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issue signs a token for the session
func (t *TokenIssuer) Issue(session *Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.AccountID.String(),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its session and account IDs
func (t *TokenIssuer) Parse(tokenString string) (sessionID, accountID uuid.UUID, err error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}

	sessionID, err = uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}
	accountID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrInvalidToken
	}
	return sessionID, accountID, nil
}
