package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"brand-studio-api/internal/assets"
	"brand-studio-api/internal/campaign"
)

// A studio session owns everything the pipeline produces: the generated
// concept batch, the last submitted brief (kept so a failed run can be
// retried without retyping), and the per-campaign asset orchestrator.
// Sessions live in memory only.
type studioSession struct {
	ID           string
	Campaigns    []campaign.Campaign
	LastInput    *campaign.Input
	Orchestrator *assets.Orchestrator
	LastActivity time.Time
}

type sessionStore struct {
	mu              sync.Mutex
	sessions        map[string]*studioSession
	newOrchestrator func() *assets.Orchestrator
}

func newSessionStore(newOrchestrator func() *assets.Orchestrator) *sessionStore {
	return &sessionStore{
		sessions:        make(map[string]*studioSession),
		newOrchestrator: newOrchestrator,
	}
}

// getOrCreate resolves the session for an id, minting a fresh session when
// the id is empty or unknown.
func (s *sessionStore) getOrCreate(id string) *studioSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.LastActivity = time.Now()
		return sess
	}

	sess := &studioSession{
		ID:           uuid.NewString(),
		Orchestrator: s.newOrchestrator(),
		LastActivity: time.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *sessionStore) update(sess *studioSession, fn func(*studioSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(sess)
	sess.LastActivity = time.Now()
}

func (s *sessionStore) snapshotCampaigns(sess *studioSession) ([]campaign.Campaign, *campaign.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaigns := append([]campaign.Campaign(nil), sess.Campaigns...)
	var input *campaign.Input
	if sess.LastInput != nil {
		in := *sess.LastInput
		input = &in
	}
	return campaigns, input
}
