// Package simstate saves and loads session state as a JSON file.
package simstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tradecli/internal/domain"
)

const defaultStateFile = "./tradecli_state.json"

// Store persists session state so restarts keep positions and favourites.
type Store struct {
	path string
}

func getStatePath(path string) string {
	if path != "" {
		return path
	}
	if statePath := os.Getenv("TRADECLI_STATE_FILE"); statePath != "" {
		return statePath
	}
	return defaultStateFile
}

// NewStore creates a state store writing to path. An empty path falls back to
// $TRADECLI_STATE_FILE and then to ./tradecli_state.json.
func NewStore(path string) (*Store, error) {
	path = getStatePath(path)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create state dir")
		}
	}

	return &Store{path: path}, nil
}

// Path location of the state file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// State represents all persisted session data.
type State struct {
	SavedAt    time.Time                 `json:"saved_at"`
	Positions  map[string]StoredPosition `json:"positions"`
	Favourites []string                  `json:"favourites,omitempty"`
	Realized   string                    `json:"realized"`
}

// StoredPosition is a serializable snapshot of domain.Position.
type StoredPosition struct {
	Quantity  int64  `json:"quantity"`
	TotalCost string `json:"total_cost"`
}

// Load reads session state from disk. A missing file yields nil state.
func (s *Store) Load() (*State, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "read session state")
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "decode session state")
	}

	return &state, nil
}

// Save writes session state to disk atomically via temp file.
func (s *Store) Save(state State) error {
	if s == nil || s.path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode session state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write session state temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist session state")
	}

	return nil
}

// NewState converts domain.SessionState into its stored representation.
func NewState(in domain.SessionState, savedAt time.Time) State {
	state := State{
		SavedAt:   savedAt,
		Positions: make(map[string]StoredPosition, len(in.Positions)),
		Realized:  in.Realized.String(),
	}
	for ticker, view := range in.Positions {
		state.Positions[ticker.String()] = StoredPosition{
			Quantity:  view.Quantity,
			TotalCost: view.TotalCost.String(),
		}
	}
	for _, fav := range in.Favourites {
		state.Favourites = append(state.Favourites, fav.String())
	}
	sort.Strings(state.Favourites)

	return state
}

// ToSessionState reconstructs domain.SessionState from stored data.
func (st *State) ToSessionState() (domain.SessionState, error) {
	out := domain.SessionState{
		Positions: make(domain.Snapshot, len(st.Positions)),
		Realized:  decimal.Zero,
	}

	for raw, sp := range st.Positions {
		ticker, err := domain.NewTicker(raw)
		if err != nil {
			return domain.SessionState{}, errors.Wrapf(err, "decode position %q", raw)
		}
		totalCost, err := decimal.NewFromString(sp.TotalCost)
		if err != nil {
			return domain.SessionState{}, errors.Wrapf(err, "decode %s total cost", ticker)
		}
		pos := &domain.Position{Quantity: sp.Quantity, TotalCost: totalCost}
		out.Positions[ticker] = pos.View(ticker)
	}

	for _, raw := range st.Favourites {
		ticker, err := domain.NewTicker(raw)
		if err != nil {
			return domain.SessionState{}, errors.Wrapf(err, "decode favourite %q", raw)
		}
		out.Favourites = append(out.Favourites, ticker)
	}

	if st.Realized != "" {
		realized, err := decimal.NewFromString(st.Realized)
		if err != nil {
			return domain.SessionState{}, errors.Wrap(err, "decode realized profit")
		}
		out.Realized = realized
	}

	return out, nil
}
