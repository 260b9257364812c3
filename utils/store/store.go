package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"community-bot/model"

	"go.uber.org/zap"
)

// Document names one persisted document. The names double as file names and row keys.
type Document string

const (
	Warnings       Document = "warnings"
	StaffActions   Document = "staffActions"
	UserLevels     Document = "userLevels"
	MessageStats   Document = "messageStats"
	CustomCommands Document = "customCommands"
	Settings       Document = "config"
)

// AllDocuments lists every document in load order.
var AllDocuments = []Document{Warnings, StaffActions, UserLevels, MessageStats, CustomCommands, Settings}

var (
	ErrUnknownDocument = errors.New("unknown document")
	// ErrSkipSave may be returned from an Update callback that made no change.
	ErrSkipSave = errors.New("skip save")
)

// Backend reads and writes whole documents.
type Backend interface {
	// Load decodes the stored document into v. It reports false when nothing is stored yet.
	Load(doc Document, v interface{}) (bool, error)
	Save(doc Document, v interface{}) error
	Close() error
}

// Sizer is implemented by backends that can report their on-disk size in bytes.
type Sizer interface {
	Size() (int64, error)
}

// Store owns the in-memory state and writes documents back after every mutation.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	state   *model.State
	logger  *zap.Logger
}

// New creates a store with an empty state. Call Load to read persisted documents.
func New(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		state:   model.NewState(),
		logger:  logger.Named("store"),
	}
}

// Open builds the backend selected by cfg and loads every document.
// A document that fails to decode starts out empty; the returned error describes it
// but the store is still usable.
func Open(cfg *model.Config, logger *zap.Logger) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(cfg.StorageBackend) {
	case "", "json", "file":
		backend, err = NewFileBackend(cfg.DataDir)
	case "sqlite", "sqlite3":
		backend, err = NewSQLiteBackend(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}

	s := New(backend, logger)
	return s, s.Load()
}

func documentTarget(state *model.State, doc Document) (interface{}, error) {
	switch doc {
	case Warnings:
		return &state.Warnings, nil
	case StaffActions:
		return &state.StaffActions, nil
	case UserLevels:
		return &state.UserLevels, nil
	case MessageStats:
		return &state.MessageStats, nil
	case CustomCommands:
		return &state.CustomCommands, nil
	case Settings:
		return &state.Settings, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, doc)
}

// adoptDocument moves one decoded document from src into dst.
func adoptDocument(dst, src *model.State, doc Document) {
	switch doc {
	case Warnings:
		dst.Warnings = src.Warnings
	case StaffActions:
		dst.StaffActions = src.StaffActions
	case UserLevels:
		dst.UserLevels = src.UserLevels
	case MessageStats:
		dst.MessageStats = src.MessageStats
	case CustomCommands:
		dst.CustomCommands = src.CustomCommands
	case Settings:
		dst.Settings = src.Settings
	}
}

// Load replaces the in-memory state with the persisted documents.
func (s *Store) Load() error {
	state := &model.State{}
	var errs []error

	for _, doc := range AllDocuments {
		// 先解码到临时状态，失败时不留下解了一半的数据
		scratch := &model.State{}
		target, err := documentTarget(scratch, doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		found, err := s.backend.Load(doc, target)
		if err != nil {
			s.logger.Error("Failed to load document, starting empty", zap.String("document", string(doc)), zap.Error(err))
			errs = append(errs, fmt.Errorf("load %s: %w", doc, err))
			continue
		}
		if !found {
			s.logger.Debug("Document not found, using defaults", zap.String("document", string(doc)))
			continue
		}
		adoptDocument(state, scratch, doc)
	}
	state.Normalize()

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.logger.Info("Loaded documents",
		zap.Int("users_warned", len(state.Warnings)),
		zap.Int("guilds_leveled", len(state.UserLevels)),
		zap.Int("staff_tracked", len(state.Settings.TicketActivity)))
	return errors.Join(errs...)
}

// View runs fn with read access to the state. fn must not keep references past its return.
func (s *Store) View(fn func(state *model.State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Update runs fn with write access and then saves the given documents.
// Returning ErrSkipSave from fn skips the save and makes Update return nil; any other
// error is returned as is and nothing is saved. Save failures are logged only: the
// in-memory state stays authoritative for the rest of the process.
func (s *Store) Update(fn func(state *model.State) error, docs ...Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.state); err != nil {
		if errors.Is(err, ErrSkipSave) {
			return nil
		}
		return err
	}
	for _, doc := range docs {
		if err := s.save(doc); err != nil {
			s.logger.Error("Failed to persist document", zap.String("document", string(doc)), zap.Error(err))
		}
	}
	return nil
}

// Flush writes every document.
func (s *Store) Flush() error {
	return s.Save(AllDocuments...)
}

// Save writes the named documents only.
func (s *Store) Save(docs ...Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for _, doc := range docs {
		if err := s.save(doc); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", doc, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) save(doc Document) error {
	target, err := documentTarget(s.state, doc)
	if err != nil {
		return err
	}
	return s.backend.Save(doc, target)
}

// Size returns the backend's on-disk size, or 0 when unknown.
func (s *Store) Size() int64 {
	sizer, ok := s.backend.(Sizer)
	if !ok {
		return 0
	}
	size, err := sizer.Size()
	if err != nil {
		s.logger.Warn("Failed to read storage size", zap.Error(err))
		return 0
	}
	return size
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
