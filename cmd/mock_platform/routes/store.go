package routes

import (
	"sync"
	"time"
)

type StoredAttachment struct {
	UploadedAt time.Time `json:"uploaded_at"`
	ID         string    `json:"attachment_id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mime_type"`
	Size       int       `json:"size"`
}

type Claim struct {
	Blocks      map[string]string  `json:"blocks"`
	ClaimID     string             `json:"claim_id"`
	Attachments []StoredAttachment `json:"attachments"`
}

// In memory claims keyed by claim id, created on first touch
type Store struct {
	claims map[string]*Claim
	mu     sync.Mutex
}

func NewStore() *Store {
	return &Store{claims: map[string]*Claim{}}
}

func (s *Store) claim(claimID string) *Claim {
	c, ok := s.claims[claimID]
	if !ok {
		c = &Claim{ClaimID: claimID, Blocks: map[string]string{}, Attachments: []StoredAttachment{}}
		s.claims[claimID] = c
	}
	return c
}

func (s *Store) UpdateBlocks(claimID string, blocks map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.claim(claimID)
	for k, v := range blocks {
		c.Blocks[k] = v
	}
}

func (s *Store) AddAttachment(claimID string, attachment StoredAttachment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.claim(claimID)
	c.Attachments = append(c.Attachments, attachment)
}

// Copy of the claim, false when it was never touched
func (s *Store) Get(claimID string) (Claim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.claims[claimID]
	if !ok {
		return Claim{}, false
	}

	blocks := make(map[string]string, len(c.Blocks))
	for k, v := range c.Blocks {
		blocks[k] = v
	}
	return Claim{
		Blocks:      blocks,
		ClaimID:     c.ClaimID,
		Attachments: append([]StoredAttachment{}, c.Attachments...),
	}, true
}
