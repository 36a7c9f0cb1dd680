package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/responder"
)

var ErrInvalidSettings = errors.New("invalid settings")

// EditableSettings are the keys an admin may override. The AI mode is read at
// startup, so changing it takes effect on the next restart.
var EditableSettings = []string{"business_name", "business_timezone", "ai_mode", "response_tone", "greeting", "fallback"}

type ISettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
	// LoadOverrides applies the stored overrides on startup.
	LoadOverrides(ctx context.Context) error
}

type settingsService struct {
	mu         sync.Mutex
	base       *config.BusinessConfig
	current    map[string]string
	uowFactory unitofwork.RepositoryFactory
	synth      *responder.Synthesizer
	logger     logger.ILogger
}

func NewSettingsService(base *config.BusinessConfig, uowFactory unitofwork.RepositoryFactory, synth *responder.Synthesizer, log logger.ILogger) ISettingsService {
	return &settingsService{
		base:       base.Clone(),
		current:    map[string]string{},
		uowFactory: uowFactory,
		synth:      synth,
		logger:     log,
	}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &dto.SettingsResponse{Values: s.effective()}, nil
}

func (s *settingsService) LoadOverrides(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.SettingRepository().FindAll(ctx)
	if err != nil {
		return err
	}

	values := make(map[string]string, len(stored))
	for _, st := range stored {
		if isEditable(st.Key) {
			values[st.Key] = st.Value
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.apply(values)
	if err != nil {
		// Bad rows stay in the table; the file config keeps serving.
		s.logger.Warn("SettingsService", "Ignoring stored overrides", map[string]interface{}{"error": err.Error()})
		return nil
	}
	s.current = values
	s.synth.UpdateSettings(cfg.SynthesizerSettings())
	return nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	for key := range req.Values {
		if !isEditable(key) {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidSettings, key)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]string, len(s.current)+len(req.Values))
	for k, v := range s.current {
		merged[k] = v
	}
	for k, v := range req.Values {
		merged[k] = v
	}

	cfg, err := s.apply(merged)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err = unitofwork.Transact(ctx, uow, func() error {
		for key, value := range req.Values {
			if err := uow.SettingRepository().Upsert(ctx, &entity.Setting{Key: key, Value: value}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.current = merged
	s.synth.UpdateSettings(cfg.SynthesizerSettings())
	s.logger.Info("SettingsService", "Settings updated", map[string]interface{}{"keys": len(req.Values)})

	return &dto.SettingsResponse{Values: s.effective()}, nil
}

func (s *settingsService) apply(values map[string]string) (*config.BusinessConfig, error) {
	cfg := s.base.Clone()
	if err := cfg.ApplyOverrides(values); err != nil {
		return nil, err
	}
	return cfg, nil
}

// effective reports every editable key with its override or file value.
func (s *settingsService) effective() map[string]string {
	out := map[string]string{
		"business_name":     s.base.Business.Name,
		"business_timezone": s.base.Business.Timezone,
		"ai_mode":           s.base.AI.Mode,
		"response_tone":     s.base.Responses.Tone,
		"greeting":          s.base.Responses.Greeting,
		"fallback":          s.base.Responses.Fallback,
	}
	for k, v := range s.current {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func isEditable(key string) bool {
	for _, k := range EditableSettings {
		if k == key {
			return true
		}
	}
	return false
}
